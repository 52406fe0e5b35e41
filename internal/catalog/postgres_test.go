// internal/catalog/postgres_test.go
package catalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"provider-directory/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var organizationRowColumns = []string{"id", "name", "phone", "email", "website", "other_services", "paid"}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func expectHydration(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM organization_services os`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"organization_id", "id", "name"}).
			AddRow("o1", "s2", "Alternative Care").
			AddRow("o1", "s3", "Psychosocial Support").
			AddRow("o2", "s3", "Psychosocial Support"))

	mock.ExpectQuery(`FROM organization_beneficiaries ob`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"organization_id", "id", "name"}).
			AddRow("o1", "b1", "Orphans"))

	mock.ExpectQuery(`FROM organization_locations ol`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"organization_id", "district", "sector", "cell", "village"}).
			AddRow("o1", "Kicukiro", "Gatenga", "Karambo", "").
			AddRow("o2", "Gasabo", "Remera", "", "").
			AddRow("o9", "Musanze", "Muhoza", "", ""))
}

// ==========================
// Reference Catalog Tests
// ==========================

func TestPostgresStore_ListRefs(t *testing.T) {
	tests := []struct {
		name  string
		query string
		call  func(*PostgresStore, context.Context) ([]models.Ref, error)
	}{
		{"districts", "SELECT id, name FROM districts ORDER BY name", (*PostgresStore).ListDistricts},
		{"service types", "SELECT id, name FROM service_types ORDER BY name", (*PostgresStore).ListServiceTypes},
		{"beneficiary types", "SELECT id, name FROM beneficiary_types ORDER BY name", (*PostgresStore).ListBeneficiaryTypes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			store := NewPostgresStore(db)

			mock.ExpectQuery(regexp.QuoteMeta(tt.query)).
				WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
					AddRow("1", "First").
					AddRow("2", "Second"))

			refs, err := tt.call(store, context.Background())

			require.NoError(t, err)
			assert.Equal(t, []models.Ref{{ID: "1", Name: "First"}, {ID: "2", Name: "Second"}}, refs)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_ListDistricts_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`FROM districts`).WillReturnError(errors.New("connection refused"))

	refs, err := store.ListDistricts(context.Background())

	assert.Nil(t, refs)
	assert.ErrorIs(t, err, ErrCatalogReadFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

// ==========================
// Organization Tests
// ==========================

func TestPostgresStore_ListOrganizations(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`FROM organizations o ORDER BY o.name`).
		WillReturnRows(sqlmock.NewRows(organizationRowColumns).
			AddRow("o1", "Kicukiro Family Center", "+250 788 000 111", "", "", "", false).
			AddRow("o2", "Central Family Support Center", "+250 788 123 456", "info@cfsc.rw", "https://cfsc.rw", "Home visits", true))
	expectHydration(mock)

	orgs, err := store.ListOrganizations(context.Background())

	require.NoError(t, err)
	require.Len(t, orgs, 2)

	assert.Equal(t, "Kicukiro Family Center", orgs[0].Name)
	assert.Equal(t, []models.Ref{{ID: "s2", Name: "Alternative Care"}, {ID: "s3", Name: "Psychosocial Support"}}, orgs[0].Services)
	assert.Equal(t, []models.Ref{{ID: "b1", Name: "Orphans"}}, orgs[0].Beneficiaries)
	assert.Equal(t, []models.Location{{DistrictName: "Kicukiro", SectorName: "Gatenga", CellName: "Karambo"}}, orgs[0].Locations)

	assert.Equal(t, "Home visits", orgs[1].OtherServices)
	assert.True(t, orgs[1].Paid)
	assert.Empty(t, orgs[1].Beneficiaries)
	assert.Equal(t, []string{"Gasabo"}, orgs[1].DistrictNames())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListOrganizations_EmptySkipsHydration(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`FROM organizations o ORDER BY o.name`).
		WillReturnRows(sqlmock.NewRows(organizationRowColumns))

	orgs, err := store.ListOrganizations(context.Background())

	require.NoError(t, err)
	assert.Empty(t, orgs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListOrganizations_HydrationError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`FROM organizations o ORDER BY o.name`).
		WillReturnRows(sqlmock.NewRows(organizationRowColumns).
			AddRow("o1", "Kicukiro Family Center", "", "", "", "", false))
	mock.ExpectQuery(`FROM organization_services os`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("relation does not exist"))

	_, err := store.ListOrganizations(context.Background())

	assert.ErrorIs(t, err, ErrCatalogReadFailed)
	assert.Contains(t, err.Error(), "services")
}

func TestPostgresStore_SearchOrganizations(t *testing.T) {
	tests := []struct {
		name         string
		filter       models.SearchFilter
		expectedArgs []driver.Value
	}{
		{
			name:         "district and service type",
			filter:       models.SearchFilter{District: "Kicukiro", ServiceType: "Alternative Care", Limit: 20},
			expectedArgs: []driver.Value{"Kicukiro", "Alternative Care", "", "", 20},
		},
		{
			name:         "limit is clamped",
			filter:       models.SearchFilter{BeneficiaryType: "Orphans", Limit: 500},
			expectedArgs: []driver.Value{"", "", "Orphans", "", 20},
		},
		{
			name:         "name pattern characters are escaped",
			filter:       models.SearchFilter{NameContains: " 100%_Kids ", Limit: 5},
			expectedArgs: []driver.Value{"", "", "", `100\%\_Kids`, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			store := NewPostgresStore(db)

			mock.ExpectQuery(`FROM organizations o WHERE`).
				WithArgs(tt.expectedArgs...).
				WillReturnRows(sqlmock.NewRows(organizationRowColumns).
					AddRow("o1", "Kicukiro Family Center", "", "", "", "", false))
			expectHydration(mock)

			orgs, err := store.SearchOrganizations(context.Background(), tt.filter)

			require.NoError(t, err)
			require.Len(t, orgs, 1)
			assert.Equal(t, "o1", orgs[0].ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_SearchOrganizations_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`FROM organizations o WHERE`).WillReturnError(errors.New("timeout"))

	orgs, err := store.SearchOrganizations(context.Background(), models.SearchFilter{District: "Gasabo"})

	assert.Nil(t, orgs)
	assert.ErrorIs(t, err, ErrSearchFailed)
}

// ==========================
// Count Tests
// ==========================

func TestPostgresStore_Counts(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM organizations")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM service_types")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM districts")).
		WillReturnError(sql.ErrConnDone)

	orgs, err := store.CountOrganizations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, orgs)

	services, err := store.CountServiceTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, services)

	_, err = store.CountDistricts(ctx)
	assert.ErrorIs(t, err, ErrCatalogReadFailed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, MaxSearchResults, ClampLimit(0))
	assert.Equal(t, MaxSearchResults, ClampLimit(-3))
	assert.Equal(t, MaxSearchResults, ClampLimit(21))
	assert.Equal(t, 7, ClampLimit(7))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b\%c\_d`, escapeLike(` a\b%c_d `))
	assert.Equal(t, "", escapeLike("   "))
}

func TestPostgresStore_Migrate(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS districts")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.Migrate(context.Background()))

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS districts")).
		WillReturnError(errors.New("permission denied"))
	err := store.Migrate(context.Background())
	assert.ErrorContains(t, err, "apply schema")

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS organization_locations")
}
