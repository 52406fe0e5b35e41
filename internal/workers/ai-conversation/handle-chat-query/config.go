// internal/workers/ai-conversation/handle-chat-query/config.go
package handlechatquery

import (
	"time"

	"provider-directory/internal/common/config"
	parseuserintent "provider-directory/internal/workers/ai-conversation/parse-user-intent"
	queryinternaldata "provider-directory/internal/workers/ai-conversation/query-internal-data"
	buildresponse "provider-directory/internal/workers/infrastructure/build-response"
)

type Config struct {
	// CatalogTimeout bounds the four catalog reads together.
	CatalogTimeout time.Duration
	JobTimeout     time.Duration

	Parser     *parseuserintent.Config
	Dispatcher *queryinternaldata.Config
	Composer   *buildresponse.Config
}

func LoadConfig() *Config {
	return &Config{
		CatalogTimeout: 5 * time.Second,
		JobTimeout:     15 * time.Second,
		Parser:         parseuserintent.LoadConfig(),
		Dispatcher:     queryinternaldata.LoadConfig(),
		Composer:       buildresponse.LoadConfig(),
	}
}

// LoadConfigFrom applies the chat section of the service configuration.
func LoadConfigFrom(chat config.ChatConfig, jobTimeout time.Duration) *Config {
	cfg := LoadConfig()
	if chat.CatalogTimeout > 0 {
		cfg.CatalogTimeout = config.GetDuration(chat.CatalogTimeout)
	}
	if jobTimeout > 0 {
		cfg.JobTimeout = jobTimeout
	}
	if chat.QueryTimeout > 0 {
		cfg.Dispatcher.Timeout = config.GetDuration(chat.QueryTimeout)
	}
	if chat.MaxResults > 0 {
		cfg.Dispatcher.MaxResults = chat.MaxResults
		cfg.Composer.MaxResults = chat.MaxResults
	}
	if chat.MaxQueryLength > 0 {
		cfg.Parser.MaxQueryLength = chat.MaxQueryLength
	}
	return cfg
}
