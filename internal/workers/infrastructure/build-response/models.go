// internal/workers/infrastructure/build-response/models.go
package buildresponse

import (
	"provider-directory/internal/models"
	queryinternaldata "provider-directory/internal/workers/ai-conversation/query-internal-data"
)

// Input carries the catalogs alongside the dispatch result so follow-up
// suggestions can name real districts and service types.
type Input struct {
	Understanding models.Understanding      `json:"understanding"`
	Result        *queryinternaldata.Output `json:"result"`
	Catalogs      models.Catalogs           `json:"catalogs"`
}

type Output struct {
	Reply models.Reply `json:"reply"`
}
