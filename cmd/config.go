package cmd

import (
	"encoding/json"
	"fmt"

	"nubes-server/core/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configFormat string

// configCmd prints the resolved configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Loads the configuration, fills absent keys and derived packages, and prints
the result. Secrets are never printed. Exits non-zero when the resolved
configuration is not valid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		resolved := config.Resolve(*cfg)

		var out []byte
		switch configFormat {
		case "yaml", "yml":
			out, err = yaml.Marshal(resolved)
		case "json":
			out, err = json.MarshalIndent(resolved, "", "  ")
			out = append(out, '\n')
		default:
			return fmt.Errorf("unknown format %q (want yaml or json)", configFormat)
		}
		if err != nil {
			return err
		}

		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return err
		}
		return config.Validate(resolved)
	},
}

func init() {
	configCmd.Flags().StringVarP(&configFormat, "format", "f", "yaml", "output format (yaml or json)")
	RootCmd.AddCommand(configCmd)
}
