package cmd

import (
	"fmt"

	"map-manager/core/capability"
	"map-manager/core/config"
	"map-manager/core/database"
	"map-manager/core/env"
	"map-manager/core/keyring"
	"map-manager/core/logger"
	"map-manager/core/sdk"
	"map-manager/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadCmd performs a single load attempt and exits. Useful for warming the
// manifest cache from CI, or for verifying a credential before rollout.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the map capability once and exit",
	Long:  `Resolves the vendor credential, performs one SDK installation attempt and reports the outcome. Exits non-zero when the load fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}

		// Connect to Database (Optional)
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
		}

		provider, err := keyring.NewProvider(cfg.Keyring, db, logg)
		if err != nil {
			return err
		}

		key, err := provider.Key(ctx)
		if err != nil {
			return fmt.Errorf("credential fetch failed: %w", err)
		}
		if key == "" {
			return fmt.Errorf("no vendor credential provisioned; nothing to load")
		}

		environment := env.New()
		vendorClient := sdk.NewVendorClient(cfg.Vendor)
		installer := sdk.NewInstaller(environment, store, cfg.Storage.Bucket, vendorClient, cfg.Vendor, logg)
		core := capability.NewLoader(installer, installer.Readiness(), logg, nil)

		if err := <-core.EnsureLoaded(ctx, key); err != nil {
			return fmt.Errorf("capability load failed: %w", err)
		}

		st := core.State()
		fmt.Printf("Capability loaded (status=%s, modules=%v)\n", st.Status, environment.Modules())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(loadCmd)
}
