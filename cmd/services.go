package cmd

import (
	"fmt"

	"nubes-server/core/config"
	"nubes-server/core/database"
	"nubes-server/core/loader"
	"nubes-server/core/storage"

	// Built-in controllers register under bootstrap.BuiltinPackage.
	_ "nubes-server/feature/assets"
	_ "nubes-server/feature/metrics"
	_ "nubes-server/feature/status"

	"github.com/spf13/cobra"
)

// Built-in service references usable in the services list.
const (
	StorageReference  = "storage.minio"
	DatabaseReference = "database.gorm"
)

// registerServices adds the built-in service factories to catalog. The
// factories read their settings from cfg when the service is instantiated.
func registerServices(catalog *loader.Catalog, cfg *config.Config) error {
	if err := catalog.Register(StorageReference, func() (any, error) {
		svc, err := storage.NewService(cfg.Storage)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}); err != nil {
		return err
	}

	return catalog.Register(DatabaseReference, func() (any, error) {
		svc, err := database.NewService(cfg.Database)
		if err != nil {
			return nil, err
		}
		return svc, nil
	})
}

// servicesCmd lists the service references the services list can use.
var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the available service references",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := loader.NewCatalog()
		if err := registerServices(catalog, &config.Config{}); err != nil {
			return err
		}
		for _, ref := range catalog.References() {
			fmt.Fprintln(cmd.OutOrStdout(), ref)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(servicesCmd)
}
