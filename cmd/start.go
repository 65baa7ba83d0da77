package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nubes-server/core/config"
	"nubes-server/core/loader"
	"nubes-server/core/logger"
	"nubes-server/core/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the server",
	Long:  `Resolves the configuration, bootstraps the router and serves it until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStart(cmd.Context())
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.LoadConfig(".")
}

func runStart(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load Configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize Logger
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	// 3. Built-in services
	if err := registerServices(loader.Default(), cfg); err != nil {
		return err
	}

	// 4. Start Server
	lc := server.New(*cfg,
		server.WithLogger(logg),
		server.WithRegisterer(prometheus.DefaultRegisterer),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := lc.Start(ctx); err != nil {
		return err
	}

	// 5. Graceful Shutdown
	<-ctx.Done()
	logg.Info("Shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), lc.Config().StopTimeout)
	defer cancel()
	return lc.Stop(stopCtx)
}
