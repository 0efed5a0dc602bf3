package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/profilesync/internal/config"
	"github.com/Rrens/profilesync/internal/logger"
	"github.com/Rrens/profilesync/internal/repository/postgres"
	"github.com/Rrens/profilesync/internal/repository/sqlite"
)

// migrate applies the kv_entries schema for the configured SQL storage
// driver. The server also migrates on startup; this is for provisioning a
// database ahead of time.
func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	switch cfg.Storage.Driver {
	case "postgres":
		log.Info().Str("host", cfg.Database.Host).Int("port", cfg.Database.Port).Msg("Migrating postgres")
		err = postgres.RunMigrations(cfg.Database.DSN())
	case "sqlite":
		log.Info().Str("path", cfg.SQLite.Path).Msg("Migrating sqlite")
		err = sqlite.RunMigrations(cfg.SQLite.Path)
	default:
		log.Info().Str("driver", cfg.Storage.Driver).Msg("Storage driver has no schema; nothing to migrate")
		return
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
