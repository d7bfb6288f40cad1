package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"map-manager/core/capability"
	"map-manager/core/config"
	"map-manager/core/database"
	"map-manager/core/env"
	"map-manager/core/keyring"
	"map-manager/core/loader"
	"map-manager/core/logger"
	"map-manager/core/middleware/auth"
	"map-manager/core/middleware/rayid"
	"map-manager/core/sdk"
	"map-manager/core/storage"

	"map-manager/feature/integrity"
	"map-manager/feature/maps"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "map-manager/docs/swagger"
)

// @title Map Manager API
// @version 1.0
// @description API for managing the vendor map capability.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the map manager server",
	Long:  `Starts the HTTP server, the capability loader and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (Optional)
		var db *gorm.DB
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to tenant database")
		}

		// 4. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		// 5. Assemble the capability loader: environment, installer, core.
		environment := env.New()
		vendorClient := sdk.NewVendorClient(cfg.Vendor)
		installer := sdk.NewInstaller(environment, store, cfg.Storage.Bucket, vendorClient, cfg.Vendor, logg)
		core := capability.NewLoader(installer, installer.Readiness(), logg, capability.NewMetrics())

		// 6. Credential source
		if !cfg.Keyring.IsValidSource() {
			logg.Fatal("Invalid keyring source", zap.String("source", cfg.Keyring.Source))
		}
		provider, err := keyring.NewProvider(cfg.Keyring, db, logg)
		if err != nil {
			logg.Fatal("Failed to create key provider", zap.Error(err))
		}

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 8. Initialize Feature Loader
		mgr := loader.NewManager()

		mapsFeature := maps.NewFeature(core, provider, environment, logg)
		mgr.Register(mapsFeature)
		mgr.Register(integrity.NewFeature(store, cfg.Storage.Bucket, logg, db, cfg.Keyring.Vendor))

		// Middleware Registration
		// RayID must be first to trace everything.
		app.Use(rayid.New())

		// Request logging with Zap + RayID.
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public endpoints: swagger and metrics.
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 9. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 10. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 11. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mapsFeature.Close()
		core.Close(ctx)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
