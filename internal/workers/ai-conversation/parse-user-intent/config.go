// internal/workers/ai-conversation/parse-user-intent/config.go
package parseuserintent

type Config struct {
	// MaxQueryLength is the number of runes of a query that are inspected.
	MaxQueryLength int
}

func LoadConfig() *Config {
	return &Config{
		MaxQueryLength: 500,
	}
}
