package main

import (
	"context"
	"time"

	"provider-directory/internal/catalog"
	"provider-directory/internal/common/config"
	"provider-directory/internal/common/database"
	"provider-directory/internal/common/logger"
)

// infrastructure is everything the server connects to before serving.
type infrastructure struct {
	store catalog.Store
	redis *database.RedisClient
	deps  []database.Dependency
}

// Close releases the dependencies in reverse order of opening.
func (i *infrastructure) Close() error {
	return database.CloseAll(i.deps...)
}

// readyFunc blocks until dep answers or gives up.
type readyFunc func(ctx context.Context, dep database.Dependency) error

// pingWithBackoff is the readyFunc used in production.
func pingWithBackoff(log logger.Logger) readyFunc {
	return func(ctx context.Context, dep database.Dependency) error {
		attempts := 15
		if dep.Name() == "redis" {
			attempts = 10
		}
		return retryWithBackoff(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return dep.Ping(pingCtx)
		}, attempts, 2*time.Second, log, dep.Name()+" connection")
	}
}

// connect brings up PostgreSQL, then Elasticsearch and Redis when enabled.
// If any step fails, everything opened so far is closed.
func connect(ctx context.Context, cfg *config.Config, ready readyFunc, log logger.Logger) (_ *infrastructure, err error) {
	opened := &infrastructure{}
	defer func() {
		if err == nil {
			return
		}
		if closeErr := opened.Close(); closeErr != nil {
			log.WithError(closeErr).Error("error closing connections", nil)
		}
	}()

	add := func(dep database.Dependency) error {
		opened.deps = append(opened.deps, dep)
		if err := ready(ctx, dep); err != nil {
			return err
		}
		log.Info("dependency connected", map[string]interface{}{"dependency": dep.Name()})
		return nil
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if err := add(pg); err != nil {
		return nil, err
	}
	opened.store = catalog.NewPostgresStore(pg.DB)

	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if err := add(es); err != nil {
			return nil, err
		}
		if cfg.Chat.SearchBackend == config.SearchBackendElasticsearch {
			opened.store = catalog.NewIndexedStore(opened.store, catalog.NewSearchIndex(es.Client, cfg.Chat.IndexName))
		}
	}

	if cfg.Database.Redis.Enabled {
		opened.redis = database.NewRedis(cfg.Database.Redis)
		if err := add(opened.redis); err != nil {
			return nil, err
		}
	}

	return opened, nil
}
