package cmd

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"map-manager/core/config"
	"map-manager/core/middleware/auth"

	"github.com/spf13/cobra"
)

// statusCmd queries a running instance for the capability status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the capability status of a running instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		url := fmt.Sprintf("http://localhost:%s/maps/status", cfg.Server.Port)
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if cfg.Server.ApiKey != "" {
			req.Header.Set(auth.HeaderName, cfg.Server.ApiKey)
		}

		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("is the server running? %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
