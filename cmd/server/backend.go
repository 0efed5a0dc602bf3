package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/profilesync/internal/api/handler"
	"github.com/Rrens/profilesync/internal/config"
	"github.com/Rrens/profilesync/internal/repository/postgres"
	"github.com/Rrens/profilesync/internal/repository/redis"
	"github.com/Rrens/profilesync/internal/repository/sqlite"
	"github.com/Rrens/profilesync/internal/security"
	"github.com/Rrens/profilesync/internal/storage"
)

// backend is the opened credential storage plus whatever must be closed on
// shutdown.
type backend struct {
	storage.Backend
	pinger handler.Pinger
	close  func()
}

// openBackend opens the storage driver named in cfg.Storage.Driver and wraps
// it with encryption when a key is configured.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b, err := openDriver(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.EncryptionKey != "" {
		enc, err := security.NewEncryptorFromSecret(cfg.Storage.EncryptionKey)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("failed to create encryptor: %w", err)
		}
		b.Backend = storage.NewEncrypted(b.Backend, enc)
		log.Info().Msg("Credential storage encryption enabled")
	}

	return b, nil
}

func openDriver(ctx context.Context, cfg *config.Config) (*backend, error) {
	nop := func() {}

	switch cfg.Storage.Driver {
	case "memory":
		return &backend{Backend: storage.NewMemory(), close: nop}, nil

	case "file":
		f, err := storage.NewFile(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return &backend{Backend: f, close: nop}, nil

	case "sqlite":
		if err := sqlite.RunMigrations(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &backend{
			Backend: sqlite.NewKVStore(db),
			pinger:  db,
			close:   func() { db.Close() },
		}, nil

	case "postgres":
		if err := postgres.RunMigrations(cfg.Database.DSN()); err != nil {
			return nil, err
		}
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &backend{
			Backend: db.KVStore(),
			pinger:  db,
			close:   db.Close,
		}, nil

	case "redis":
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &backend{
			Backend: redis.NewKVStore(client, cfg.Redis.KeyPrefix, 0),
			pinger:  client,
			close:   func() { client.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// connectTimeout bounds opening a networked backend at startup.
const connectTimeout = 10 * time.Second
