package cmd

import (
	"context"
	"fmt"
	"os"

	"map-manager/core/config"
	"map-manager/core/database"
	"map-manager/core/logger"
	"map-manager/core/storage"
	"map-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the loader's collaborators",
	Long:  `Checks the SDK cache bucket structure, the cached bundle manifests and the credential table.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd.Context(), false, false, false)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the bucket folder structure",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// cacheCmd represents the integrity cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Check the cached bundle manifests",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// databaseCmd represents the integrity database command
var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Check the integration_keys table",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, cacheCmd, databaseCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Fix missing folders")
}

func runIntegrityChecks(ctx context.Context, onlyStructure, onlyCache, onlyDatabase bool) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Fatal("Failed to create storage client", zap.Error(err))
	}

	// Connect to Database (Optional)
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
	}

	svc := integrity.NewService(store, cfg.Storage.Bucket, logg, db, cfg.Keyring.Vendor)
	runStructure := onlyStructure || (!onlyCache && !onlyDatabase)
	runCache := onlyCache || (!onlyStructure && !onlyDatabase)
	runDatabase := onlyDatabase || (!onlyStructure && !onlyCache)

	if runStructure {
		logg.Info("Checking folder structure...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			logg.Fatal("Structure check failed", zap.Error(err))
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))

			if onlyStructure && fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					logg.Fatal("Failed to fix structure", zap.Error(err))
				}
				logg.Info("Structure fixed successfully.")
			} else if onlyStructure {
				logg.Info("Run with --fix to create missing folders.")
			}
		}
	}

	if runCache {
		logg.Info("Checking cached bundle manifests...")
		issues, err := svc.CheckCache(ctx)
		if err != nil {
			logg.Fatal("Cache check failed", zap.Error(err))
		}

		if len(issues) == 0 {
			logg.Info("Cached manifests are valid.")
		} else {
			for _, issue := range issues {
				logg.Warn("Broken cache manifest",
					zap.String("object", issue.Object),
					zap.String("reason", issue.Reason))
			}
		}
	}

	if runDatabase {
		logg.Info("Checking integration keys...", zap.String("vendor", cfg.Keyring.Vendor))
		report, err := svc.CheckDatabase(ctx)
		if err != nil {
			logg.Error("Database check failed", zap.Error(err))
			return
		}

		switch report.Status {
		case "ok":
			logg.Info("Integration keys present.", zap.Int64("active_keys", report.ActiveKeys))
		case "no_keys":
			logg.Warn("No active integration key for vendor; the loader will wait for a credential.")
		case "missing_table":
			logg.Warn("integration_keys table missing; run the tenant migrations.")
		}
	}
}
