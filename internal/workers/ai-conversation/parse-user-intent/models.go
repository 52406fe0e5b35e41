// internal/workers/ai-conversation/parse-user-intent/models.go
package parseuserintent

import "provider-directory/internal/models"

type Input struct {
	Query    string          `json:"query"`
	Catalogs models.Catalogs `json:"catalogs"`
}

type Output struct {
	Understanding models.Understanding `json:"understanding"`
}
