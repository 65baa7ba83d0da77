package cmd

import (
	"fmt"
	"os"

	"nubes-server/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "nubes-server",
	Short: "Nubes Server",
	Long: `Nubes Server hosts a single process unit: it resolves the configuration,
instantiates the configured services and template engines, bootstraps the
router and serves it on host:port.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// configFile is an explicit configuration document. When empty, conf.json or
// conf.yaml is looked up in the working directory.
var configFile string

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Report with a console logger at debug level for readable timestamps
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration document (default: ./conf.json or ./conf.yaml)")
}
