package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storypal-server/internal/catalog"
	"storypal-server/internal/config"
	"storypal-server/internal/logger"
	"storypal-server/internal/service"
	"storypal-server/internal/storage"
)

// app wires the core together for the CLI: config, logger, gateway backend,
// graph catalog and the three services.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	gateway  storage.Gateway
	catalog  *catalog.Catalog
	registry service.ProfileRegistry
	library  service.StoryLibrary
	engine   service.ProgressionEngine

	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log}

	if a.gateway, err = a.openGateway(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if a.catalog, err = catalog.Load(log); err != nil {
		a.Close()
		return nil, err
	}

	a.registry = service.NewProfileRegistry(a.gateway, log)
	a.library = service.NewStoryLibrary(a.gateway, a.registry, log)
	a.engine = service.NewProgressionEngine(a.catalog, log)

	return a, nil
}

func (a *app) openGateway(ctx context.Context) (storage.Gateway, error) {
	switch a.cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemoryGateway(), nil

	case config.BackendSQLite:
		gw, err := storage.OpenSQLiteGateway(a.cfg.SQLitePath, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, gw.Close)
		return gw, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return storage.NewRedisGateway(client, a.logger), nil

	case config.BackendPostgres:
		poolCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := pgxpool.New(poolCtx, a.cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		if err := pool.Ping(poolCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		return storage.NewPgGateway(poolCtx, pool, a.logger)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.StorageBackend)
	}
}

// Close releases the gateway resources and flushes the logger.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
