// Command directoryctl is the operator CLI for the provider directory.
//
//	directoryctl ask [--explain] <query...>
//	directoryctl reindex [--batch-size N]
//	directoryctl stats
//	directoryctl migrate
package main

import (
	"context"
	"fmt"
	"os"

	"provider-directory/internal/catalog"
	"provider-directory/internal/common/config"
	"provider-directory/internal/common/database"
	"provider-directory/internal/common/logger"
	"provider-directory/internal/models"
)

func main() {
	if err := newRootCmd(openBackends).Execute(); err != nil {
		os.Exit(1)
	}
}

// indexer receives organizations during reindex.
type indexer interface {
	IndexOrganizations(ctx context.Context, orgs []models.Organization) error
}

type migrator interface {
	Migrate(ctx context.Context) error
}

type backends struct {
	store     catalog.Store
	migrator  migrator
	index     indexer
	indexName string
	log       logger.Logger
	closers   []database.Dependency
}

func (b *backends) Close() error {
	return database.CloseAll(b.closers...)
}

type opener func(ctx context.Context, configPath string) (*backends, error)

// openBackends connects to PostgreSQL and, when enabled, Elasticsearch.
func openBackends(ctx context.Context, configPath string) (*backends, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewStructured(cfg.Logging.Level, "console")
	b := &backends{indexName: cfg.Chat.IndexName, log: log}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, pg)
	if err := pg.Ping(ctx); err != nil {
		b.Close()
		return nil, err
	}
	pgStore := catalog.NewPostgresStore(pg.DB)
	b.store, b.migrator = pgStore, pgStore

	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, es)

		index := catalog.NewSearchIndex(es.Client, cfg.Chat.IndexName)
		b.index = index
		if cfg.Chat.SearchBackend == config.SearchBackendElasticsearch {
			b.store = catalog.NewIndexedStore(b.store, index)
		}
	}
	return b, nil
}
