// Package config provides configuration management for the stocktake manager.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: server-side database connection details
//   - Storage: S3/MinIO credentials and bucket settings for imports/exports
//   - Log: logging level and format
//   - Queue: device-local offline queue settings (local DB path, server URL)
//
// Defaults are declared as `default` struct tags next to each field and bound
// through reflection, so every key is also reachable via environment variable
// (SERVER_PORT, QUEUE_SERVER_URL, ...).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
