// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"provider-directory/internal/models"

	"github.com/lib/pq"
)

// PostgresStore reads the directory tables through database/sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates any missing directory tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	orgs, err := s.queryOrganizations(ctx, listOrganizationsQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: organizations: %v", ErrCatalogReadFailed, err)
	}
	return orgs, nil
}

func (s *PostgresStore) ListDistricts(ctx context.Context) ([]models.Ref, error) {
	return s.listRefs(ctx, refDistricts)
}

func (s *PostgresStore) ListServiceTypes(ctx context.Context) ([]models.Ref, error) {
	return s.listRefs(ctx, refServiceTypes)
}

func (s *PostgresStore) ListBeneficiaryTypes(ctx context.Context) ([]models.Ref, error) {
	return s.listRefs(ctx, refBeneficiaryTypes)
}

func (s *PostgresStore) SearchOrganizations(ctx context.Context, filter models.SearchFilter) ([]models.Organization, error) {
	orgs, err := s.queryOrganizations(ctx, searchOrganizationsQuery,
		escapeLike(filter.District),
		escapeLike(filter.ServiceType),
		escapeLike(filter.BeneficiaryType),
		escapeLike(filter.NameContains),
		ClampLimit(filter.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	return orgs, nil
}

func (s *PostgresStore) CountOrganizations(ctx context.Context) (int, error) {
	return s.count(ctx, "organizations")
}

func (s *PostgresStore) CountServiceTypes(ctx context.Context) (int, error) {
	return s.count(ctx, "service_types")
}

func (s *PostgresStore) CountDistricts(ctx context.Context) (int, error) {
	return s.count(ctx, "districts")
}

func (s *PostgresStore) listRefs(ctx context.Context, kind refKind) ([]models.Ref, error) {
	rows, err := s.db.QueryContext(ctx, listRefQueries[kind])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogReadFailed, kind, err)
	}
	defer rows.Close()

	refs := make([]models.Ref, 0)
	for rows.Next() {
		var ref models.Ref
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCatalogReadFailed, kind, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogReadFailed, kind, err)
	}
	return refs, nil
}

func (s *PostgresStore) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countQueries[table]).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", ErrCatalogReadFailed, table, err)
	}
	return n, nil
}

// queryOrganizations runs an organizationColumns query and then fills in
// services, beneficiaries and locations with one query each.
func (s *PostgresStore) queryOrganizations(ctx context.Context, query string, args ...interface{}) ([]models.Organization, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := make([]models.Organization, 0)
	index := make(map[string]int)
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Phone, &o.Email, &o.Website, &o.OtherServices, &o.Paid); err != nil {
			return nil, err
		}
		index[o.ID] = len(orgs)
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return orgs, nil
	}

	ids := make([]string, len(orgs))
	for i, o := range orgs {
		ids[i] = o.ID
	}

	if err := s.attachRefs(ctx, organizationServicesQuery, ids, index, func(i int, ref models.Ref) {
		orgs[i].Services = append(orgs[i].Services, ref)
	}); err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}

	if err := s.attachRefs(ctx, organizationBeneficiariesQuery, ids, index, func(i int, ref models.Ref) {
		orgs[i].Beneficiaries = append(orgs[i].Beneficiaries, ref)
	}); err != nil {
		return nil, fmt.Errorf("beneficiaries: %w", err)
	}

	if err := s.attachLocations(ctx, ids, orgs, index); err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}

	return orgs, nil
}

func (s *PostgresStore) attachRefs(ctx context.Context, query string, ids []string, index map[string]int, attach func(int, models.Ref)) error {
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orgID string
		var ref models.Ref
		if err := rows.Scan(&orgID, &ref.ID, &ref.Name); err != nil {
			return err
		}
		if i, ok := index[orgID]; ok {
			attach(i, ref)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) attachLocations(ctx context.Context, ids []string, orgs []models.Organization, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, organizationLocationsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orgID string
		var loc models.Location
		if err := rows.Scan(&orgID, &loc.DistrictName, &loc.SectorName, &loc.CellName, &loc.VillageName); err != nil {
			return err
		}
		if i, ok := index[orgID]; ok {
			orgs[i].Locations = append(orgs[i].Locations, loc)
		}
	}
	return rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s safe to embed in an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(strings.TrimSpace(s))
}
