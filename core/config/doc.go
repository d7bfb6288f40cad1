// Package config provides configuration management for the Map Manager.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file, with defaults sourced from struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details for the tenant database
//   - Storage: S3/MinIO credentials and the SDK cache bucket
//   - Vendor: map SDK vendor endpoint and timeout
//   - Keyring: where the vendor credential comes from (static, database, remote)
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
