package database

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"provider-directory/internal/common/config"
	apperrors "provider-directory/internal/common/errors"
)

// ElasticsearchClient wraps the client used for the organization index.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.GetAddresses(),
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

// Ping verifies the cluster answers.
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(fmt.Errorf("elasticsearch ping: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewElasticsearchConnectionFailedError(fmt.Errorf("elasticsearch ping: %s", res.Status()))
	}
	return nil
}

func (c *ElasticsearchClient) Close() error { return nil }

func (c *ElasticsearchClient) Name() string { return "elasticsearch" }
