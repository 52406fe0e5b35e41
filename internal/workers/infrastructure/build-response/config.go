// internal/workers/infrastructure/build-response/config.go
package buildresponse

type Config struct {
	// MaxResults is the page size the dispatcher was given. A result set of
	// exactly this size is reported as truncated.
	MaxResults int
	// EmailPreviewCount is how many leading results show an email line.
	EmailPreviewCount int
	MaxSuggestions    int
}

func LoadConfig() *Config {
	return &Config{
		MaxResults:        20,
		EmailPreviewCount: 3,
		MaxSuggestions:    3,
	}
}
