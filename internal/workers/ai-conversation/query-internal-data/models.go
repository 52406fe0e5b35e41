// internal/workers/ai-conversation/query-internal-data/models.go
package queryinternaldata

import "provider-directory/internal/models"

// Kind tells the response builder which branch produced the Output.
type Kind string

const (
	KindResults          Kind = "results"
	KindNeedSpecificity  Kind = "need_specificity"
	KindProvider         Kind = "provider"
	KindProviderNotFound Kind = "provider_not_found"
	KindCounts           Kind = "counts"
	KindCanned           Kind = "canned"
)

type Input struct {
	Understanding models.Understanding `json:"understanding"`
	Catalogs      models.Catalogs      `json:"catalogs"`
}

type Output struct {
	Kind          Kind                    `json:"kind"`
	Filter        models.SearchFilter     `json:"filter"`
	Organizations []models.Organization   `json:"organizations,omitempty"`
	Provider      *models.Organization    `json:"provider,omitempty"`
	Candidates    []models.Organization   `json:"candidates,omitempty"`
	Counts        *models.DirectoryCounts `json:"counts,omitempty"`
}
