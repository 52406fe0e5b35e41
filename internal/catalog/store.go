// Package catalog reads the provider directory: organizations and the
// district, service-type and beneficiary-type reference lists.
package catalog

import (
	"context"
	"errors"

	"provider-directory/internal/models"
)

// MaxSearchResults caps every SearchOrganizations call.
const MaxSearchResults = 20

var (
	ErrCatalogReadFailed = errors.New("CATALOG_READ_FAILED")
	ErrSearchFailed      = errors.New("SEARCH_FAILED")
)

// Store is the read side of the directory used by the chat pipeline.
type Store interface {
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	ListDistricts(ctx context.Context) ([]models.Ref, error)
	ListServiceTypes(ctx context.Context) ([]models.Ref, error)
	ListBeneficiaryTypes(ctx context.Context) ([]models.Ref, error)

	// SearchOrganizations returns organizations matching every non-empty
	// filter field, at most MaxSearchResults of them.
	SearchOrganizations(ctx context.Context, filter models.SearchFilter) ([]models.Organization, error)

	CountOrganizations(ctx context.Context) (int, error)
	CountServiceTypes(ctx context.Context) (int, error)
	CountDistricts(ctx context.Context) (int, error)
}

// ClampLimit maps a requested limit onto (0, MaxSearchResults].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxSearchResults {
		return MaxSearchResults
	}
	return limit
}
