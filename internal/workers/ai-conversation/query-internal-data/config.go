// internal/workers/ai-conversation/query-internal-data/config.go
package queryinternaldata

import "time"

type Config struct {
	Timeout       time.Duration
	MaxResults    int
	MaxCandidates int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		MaxResults:    20,
		MaxCandidates: 3,
	}
}
