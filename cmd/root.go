package cmd

import (
	"fmt"
	"os"

	"map-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "map-manager",
	Short: "Map Capability Manager Service",
	Long: `Map Manager loads and supervises the vendor map SDK for the maintenance platform.
It guarantees a single installation per credential, verifies the capability is
complete and exposes status and retry to the front end.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// CLI users expect readable console output, so fall back to the
		// development logger configuration for error reporting.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
