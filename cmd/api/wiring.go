package main

import (
	"context"
	"fmt"

	"dosage-dashboard/internal/adapters/auth/identity"
	"dosage-dashboard/internal/adapters/feed/memfeed"
	"dosage-dashboard/internal/adapters/feed/redisfeed"
	"dosage-dashboard/internal/adapters/registry/remote"
	mem "dosage-dashboard/internal/adapters/storage/memory"
	pg "dosage-dashboard/internal/adapters/storage/postgres"
	"dosage-dashboard/internal/adapters/storage/seed"
	"dosage-dashboard/internal/adapters/storage/sqlite"
	"dosage-dashboard/internal/config"
	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/domain/profiles"
	"dosage-dashboard/internal/platform/logger"
	"dosage-dashboard/internal/ports/auth"
	"dosage-dashboard/internal/router"

	"github.com/jmoiron/sqlx"
)

type deviceStore interface {
	devices.Repository
	seed.DeviceWriter
}

type dosageStore interface {
	dosages.Repository
	seed.DosageWriter
}

type storage struct {
	devices  deviceStore
	dosages  dosageStore
	profiles profiles.Repository
	db       *sqlx.DB
}

func (s storage) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func openStorage(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (storage, error) {
	var s storage

	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return storage{}, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.InitSchema(ctx, db); err != nil {
			_ = db.Close()
			return storage{}, fmt.Errorf("postgres schema: %w", err)
		}
		s = storage{
			devices:  pg.NewDevicesRepo(db),
			dosages:  pg.NewDosagesRepo(db),
			profiles: pg.NewProfilesRepo(db),
			db:       db,
		}

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return storage{}, fmt.Errorf("sqlite: %w", err)
		}
		if err := sqlite.InitSchema(ctx, db); err != nil {
			_ = db.Close()
			return storage{}, fmt.Errorf("sqlite schema: %w", err)
		}
		s = storage{
			devices:  sqlite.NewDevicesRepo(db),
			dosages:  sqlite.NewDosagesRepo(db),
			profiles: sqlite.NewProfilesRepo(db),
			db:       db,
		}

	default:
		s = storage{devices: mem.NewDeviceRepo(), dosages: mem.NewDosageRepo(), profiles: mem.NewProfileRepo()}
	}

	if cfg.SeedFile != "" {
		fx, err := seed.Load(cfg.SeedFile)
		if err != nil {
			s.close()
			return storage{}, err
		}
		if err := fx.Apply(ctx, s.devices, s.dosages); err != nil {
			s.close()
			return storage{}, fmt.Errorf("seed %s: %w", cfg.SeedFile, err)
		}
		log.Info("seed applied", map[string]any{
			"file":    cfg.SeedFile,
			"devices": len(fx.Devices),
			"dosages": len(fx.Dosages),
		})
	}
	return s, nil
}

func openFeed(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (router.Feed, func(), error) {
	if !cfg.Enabled() {
		return memfeed.NewBroker(), func() {}, nil
	}
	f, err := redisfeed.Dial(ctx, redisfeed.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Channel:  cfg.Channel,
	}, log.With(map[string]any{"component": "redisfeed"}))
	if err != nil {
		return nil, nil, fmt.Errorf("redis feed: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newVerifier devuelve nil (modo dev) si auth no está configurado.
func newVerifier(cfg config.AuthConfig) (auth.AuthVerifier, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := identity.NewClient(identity.Config{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		APIKeyHeader: cfg.APIKeyHeader,
		Timeout:      cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("identity client: %w", err)
	}
	return identity.NewVerifier(client), nil
}

func newRegistry(cfg config.RegistryConfig) (devices.AssignmentLister, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := remote.NewClient(remote.Config{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		APIKeyHeader: cfg.APIKeyHeader,
		Timeout:      cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("registry client: %w", err)
	}
	return client, nil
}
