// internal/workers/ai-conversation/handle-chat-query/handler_test.go
package handlechatquery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"provider-directory/internal/catalog"
	"provider-directory/internal/common/config"
	"provider-directory/internal/common/logger"
	"provider-directory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Test Helper Functions
// ==========================

// memoryStore serves a fixed catalog snapshot with the same AND and
// containment semantics as the PostgreSQL store.
type memoryStore struct {
	catalogs models.Catalogs
	failOn   string
	err      error
	calls    atomic.Int32
}

func (s *memoryStore) fail(method string) error {
	s.calls.Add(1)
	if s.failOn == method {
		return s.err
	}
	return nil
}

func (s *memoryStore) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	if err := s.fail("ListOrganizations"); err != nil {
		return nil, err
	}
	return s.catalogs.Organizations, nil
}

func (s *memoryStore) ListDistricts(ctx context.Context) ([]models.Ref, error) {
	if err := s.fail("ListDistricts"); err != nil {
		return nil, err
	}
	return s.catalogs.Districts, nil
}

func (s *memoryStore) ListServiceTypes(ctx context.Context) ([]models.Ref, error) {
	if err := s.fail("ListServiceTypes"); err != nil {
		return nil, err
	}
	return s.catalogs.ServiceTypes, nil
}

func (s *memoryStore) ListBeneficiaryTypes(ctx context.Context) ([]models.Ref, error) {
	if err := s.fail("ListBeneficiaryTypes"); err != nil {
		return nil, err
	}
	return s.catalogs.BeneficiaryTypes, nil
}

func (s *memoryStore) SearchOrganizations(ctx context.Context, f models.SearchFilter) ([]models.Organization, error) {
	if err := s.fail("SearchOrganizations"); err != nil {
		return nil, err
	}

	var out []models.Organization
	for _, o := range s.catalogs.Organizations {
		if anyContains(o.DistrictNames(), f.District) &&
			anyContains(o.ServiceNames(), f.ServiceType) &&
			anyContains(o.BeneficiaryNames(), f.BeneficiaryType) &&
			anyContains([]string{o.Name}, f.NameContains) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit := catalog.ClampLimit(f.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) CountOrganizations(ctx context.Context) (int, error) {
	return len(s.catalogs.Organizations), s.fail("CountOrganizations")
}

func (s *memoryStore) CountServiceTypes(ctx context.Context) (int, error) {
	return len(s.catalogs.ServiceTypes), s.fail("CountServiceTypes")
}

func (s *memoryStore) CountDistricts(ctx context.Context) (int, error) {
	return len(s.catalogs.Districts), s.fail("CountDistricts")
}

func anyContains(values []string, want string) bool {
	if want == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), strings.ToLower(want)) {
			return true
		}
	}
	return false
}

func createTestCatalogs() models.Catalogs {
	return models.Catalogs{
		Districts: []models.Ref{
			{ID: "d1", Name: "Gasabo"},
			{ID: "d2", Name: "Kicukiro"},
			{ID: "d4", Name: "Musanze"},
			{ID: "d3", Name: "Nyarugenge"},
		},
		ServiceTypes: []models.Ref{
			{ID: "s2", Name: "Alternative Care"},
			{ID: "s1", Name: "Education"},
			{ID: "s4", Name: "Legal Aid"},
			{ID: "s3", Name: "Psychosocial Support"},
		},
		BeneficiaryTypes: []models.Ref{
			{ID: "b2", Name: "Disabled"},
			{ID: "b1", Name: "Orphans"},
		},
		Organizations: []models.Organization{
			{
				ID:            "o2",
				Name:          "Central Family Support Center",
				Phone:         "+250 788 123 456",
				Email:         "info@cfsc.rw",
				Services:      []models.Ref{{ID: "s3", Name: "Psychosocial Support"}},
				Beneficiaries: []models.Ref{{ID: "b1", Name: "Orphans"}},
				Locations:     []models.Location{{DistrictName: "Gasabo", SectorName: "Remera"}},
			},
			{
				ID:        "o3",
				Name:      "Hope Haven",
				Services:  []models.Ref{{ID: "s1", Name: "Education"}},
				Locations: []models.Location{{DistrictName: "Musanze", SectorName: "Muhoza"}},
			},
			{
				ID:            "o1",
				Name:          "Kicukiro Family Center",
				Phone:         "+250 788 000 111",
				Services:      []models.Ref{{ID: "s2", Name: "Alternative Care"}},
				Beneficiaries: []models.Ref{{ID: "b1", Name: "Orphans"}},
				Locations:     []models.Location{{DistrictName: "Kicukiro", SectorName: "Gatenga"}},
			},
			{
				ID:        "o4",
				Name:      "Ubuntu Legal Clinic",
				Services:  []models.Ref{{ID: "s4", Name: "Legal Aid"}},
				Locations: []models.Location{{DistrictName: "Nyarugenge", SectorName: "Nyamirambo"}},
			},
		},
	}
}

func createTestHandler(t *testing.T, store catalog.Store) *Handler {
	return NewHandler(LoadConfig(), store, logger.NewTestLogger(t))
}

func ask(t *testing.T, h *Handler, query string) *Output {
	t.Helper()
	output, err := h.Execute(context.Background(), &Input{Query: query})
	require.NoError(t, err)
	require.LessOrEqual(t, len(output.Suggestions), models.MaxSuggestions)
	return output
}

// ==========================
// Scenario Tests
// ==========================

func TestHandler_Execute_ServiceAndDistrictSearch(t *testing.T) {
	h := createTestHandler(t, &memoryStore{catalogs: createTestCatalogs()})

	output := ask(t, h, "Find alternative care providers in Kicukiro")

	assert.Equal(t, models.IntentSearch, output.Intent)
	assert.False(t, output.Degraded)
	require.Len(t, output.Results, 1)
	assert.Equal(t, "Kicukiro Family Center", output.Results[0].Name)
	assert.Contains(t, output.Response, "I found 1 provider offering Alternative Care in Kicukiro:")
	assert.Equal(t, "Tell me about Kicukiro Family Center", output.Suggestions[0])
}

func TestHandler_Execute_ProviderPhone(t *testing.T) {
	h := createTestHandler(t, &memoryStore{catalogs: createTestCatalogs()})

	output := ask(t, h, "What's the phone number of Central Family Support Center")

	assert.Equal(t, models.IntentProviderDetails, output.Intent)
	assert.Contains(t, output.Response, "Phone: +250 788 123 456")
	for _, section := range []string{"Services:", "Locations:", "Email:", "Website:"} {
		assert.NotContains(t, output.Response, section)
	}
	require.NotNil(t, output.Provider)
	assert.Equal(t, "o2", output.Provider.ID)
}

func TestHandler_Execute_Greeting(t *testing.T) {
	store := &memoryStore{catalogs: createTestCatalogs()}
	h := createTestHandler(t, store)

	output := ask(t, h, "hello")

	assert.Equal(t, models.IntentGreeting, output.Intent)
	assert.True(t, strings.HasPrefix(output.Response, "Hello!"))
	assert.Len(t, output.Suggestions, 3)
}

func TestHandler_Execute_UnknownDistrictAsksForMore(t *testing.T) {
	store := &memoryStore{catalogs: createTestCatalogs()}
	h := createTestHandler(t, store)

	output := ask(t, h, "Find services in Atlantis")

	assert.Equal(t, models.IntentSearch, output.Intent)
	assert.True(t, strings.HasPrefix(output.Response, "Could you be more specific?"))
	assert.Empty(t, output.Results)
	assert.Equal(t, []string{
		"Find Alternative Care providers",
		"Find services in Gasabo",
		"Find services for Disabled",
	}, output.Suggestions)
	assert.EqualValues(t, 4, store.calls.Load(), "only the catalogs are read")
}

func TestHandler_Execute_EmptyQueryShortCircuits(t *testing.T) {
	store := &memoryStore{catalogs: createTestCatalogs()}
	h := createTestHandler(t, store)

	for _, q := range []string{"", "   ", "\t\n"} {
		output := ask(t, h, q)

		assert.True(t, strings.HasPrefix(output.Response, "I didn't understand that"))
		assert.False(t, output.Degraded)
	}
	assert.Zero(t, store.calls.Load())
}

func TestHandler_Execute_Info(t *testing.T) {
	h := createTestHandler(t, &memoryStore{catalogs: createTestCatalogs()})

	output := ask(t, h, "What is in this directory?")

	assert.Equal(t, models.IntentInfo, output.Intent)
	assert.Equal(t, "Our directory currently lists 4 organizations offering 4 service types across 4 districts.", output.Response)
}

func TestHandler_Execute_ProviderNotFoundOffersCandidates(t *testing.T) {
	h := createTestHandler(t, &memoryStore{catalogs: createTestCatalogs()})

	output := ask(t, h, `Tell me about "Centrl Family Suport"`)

	assert.Equal(t, models.IntentProviderDetails, output.Intent)
	assert.Contains(t, output.Response, "Did you mean:\n1. Central Family Support Center")
	assert.Equal(t, "Tell me about Central Family Support Center", output.Suggestions[0])
}

// ==========================
// Property Tests
// ==========================

func TestHandler_Execute_ResultCap(t *testing.T) {
	catalogs := createTestCatalogs()
	catalogs.Organizations = nil
	for i := 0; i < 30; i++ {
		catalogs.Organizations = append(catalogs.Organizations, models.Organization{
			ID:        fmt.Sprintf("x%02d", i),
			Name:      fmt.Sprintf("Learning Hub %02d", i),
			Services:  []models.Ref{{ID: "s1", Name: "Education"}},
			Locations: []models.Location{{DistrictName: "Gasabo"}},
		})
	}
	h := createTestHandler(t, &memoryStore{catalogs: catalogs})

	output := ask(t, h, "Find education services in Gasabo")

	assert.Len(t, output.Results, 20)
	assert.Contains(t, output.Response, "Showing the first 20 results.")
}

func TestHandler_Execute_DeterministicAndCapped(t *testing.T) {
	h := createTestHandler(t, &memoryStore{catalogs: createTestCatalogs()})
	queries := []string{
		"hello there, find care in Gasabo",
		"help",
		"Find alternative care providers in Kicukiro",
		"services for orphans",
		"Tell me about Hope Haven",
		"where is ubuntu legal clinic",
		"Ubuntu Legal Clinic website",
		"What is in this directory?",
		"banana",
	}

	for _, q := range queries {
		first := ask(t, h, q)
		second := ask(t, h, q)
		assert.Equal(t, first, second, q)
	}
}

func TestHandler_Execute_GreetingBeatsSearch(t *testing.T) {
	h := createTestHandler(t, &memoryStore{catalogs: createTestCatalogs()})

	output := ask(t, h, "hello, find alternative care providers in Kicukiro")

	assert.Equal(t, models.IntentGreeting, output.Intent)
	assert.Empty(t, output.Results)
}

// ==========================
// Failure Tests
// ==========================

func TestHandler_Execute_StoreFailuresBecomeApologies(t *testing.T) {
	tests := []struct {
		name           string
		failOn         string
		query          string
		expectedCode   string
		expectedIntent models.Intent
	}{
		{"organizations", "ListOrganizations", "Tell me about Hope Haven", "CATALOG_READ_FAILED", models.IntentUnknown},
		{"districts", "ListDistricts", "Find care in Gasabo", "CATALOG_READ_FAILED", models.IntentUnknown},
		{"search", "SearchOrganizations", "Find care in Gasabo", "SEARCH_FAILED", models.IntentSearch},
		{"counts", "CountDistricts", "What is in this directory?", "SEARCH_FAILED", models.IntentInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{
				catalogs: createTestCatalogs(),
				failOn:   tt.failOn,
				err:      errors.New("pq: password authentication failed"),
			}
			h := createTestHandler(t, store)

			output := ask(t, h, tt.query)

			assert.True(t, output.Degraded)
			assert.Equal(t, tt.expectedCode, output.ErrorCode)
			assert.Equal(t, tt.expectedIntent, output.Intent)
			assert.True(t, strings.HasPrefix(output.Response, "Sorry, something went wrong"))
			assert.NotContains(t, output.Response, "password")
			assert.Len(t, output.Suggestions, 3)
			assert.Error(t, output.failure)
		})
	}
}

func TestHandler_Execute_CannedRepliesSurviveStoreFailure(t *testing.T) {
	tests := []struct {
		query          string
		expectedIntent models.Intent
		expectedPrefix string
	}{
		{"hello", models.IntentGreeting, "Hello!"},
		{"Good morning", models.IntentGreeting, "Hello!"},
		{"help", models.IntentHelp, "Here are some things you can ask me:"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			store := &memoryStore{
				catalogs: createTestCatalogs(),
				failOn:   "ListOrganizations",
				err:      errors.New("dial tcp: connection refused"),
			}
			h := createTestHandler(t, store)

			output := ask(t, h, tt.query)

			assert.Equal(t, tt.expectedIntent, output.Intent)
			assert.False(t, output.Degraded)
			assert.Empty(t, output.ErrorCode)
			assert.True(t, strings.HasPrefix(output.Response, tt.expectedPrefix), output.Response)
			assert.Zero(t, store.calls.Load(), "canned replies never read the store")
		})
	}
}

func TestHandler_HandleChatQuery(t *testing.T) {
	h := createTestHandler(t, &memoryStore{catalogs: createTestCatalogs()})

	reply := h.HandleChatQuery(context.Background(), "Find alternative care providers in Kicukiro")
	assert.Len(t, reply.Results, 1)

	failing := createTestHandler(t, &memoryStore{
		catalogs: createTestCatalogs(),
		failOn:   "ListServiceTypes",
		err:      context.DeadlineExceeded,
	})
	reply = failing.HandleChatQuery(context.Background(), "Find alternative care providers in Kicukiro")
	assert.True(t, strings.HasPrefix(reply.Response, "Sorry"))
	assert.Nil(t, reply.Results)
}

func TestHandler_LoadCatalogs(t *testing.T) {
	store := &memoryStore{catalogs: createTestCatalogs(), failOn: "ListBeneficiaryTypes", err: errors.New("boom")}
	h := createTestHandler(t, store)

	_, err := h.loadCatalogs(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	store.failOn = ""
	catalogs, err := h.loadCatalogs(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalogs.Organizations, 4)
	assert.Len(t, catalogs.BeneficiaryTypes, 2)
}

func TestHandler_Explain(t *testing.T) {
	h := createTestHandler(t, &memoryStore{catalogs: createTestCatalogs()})

	u, err := h.Explain(context.Background(), "Find services for orphans in Gasabo")
	require.NoError(t, err)
	assert.Equal(t, "Gasabo", u.Entities.District)
	assert.Equal(t, "Orphans", u.Entities.BeneficiaryType)
}

func TestLoadConfigFrom(t *testing.T) {
	cfg := LoadConfigFrom(config.ChatConfig{
		MaxResults:     10,
		MaxQueryLength: 200,
		CatalogTimeout: 2000,
		QueryTimeout:   3000,
	}, 9*time.Second)

	assert.Equal(t, 2*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, 9*time.Second, cfg.JobTimeout)
	assert.Equal(t, 3*time.Second, cfg.Dispatcher.Timeout)
	assert.Equal(t, 10, cfg.Dispatcher.MaxResults)
	assert.Equal(t, 10, cfg.Composer.MaxResults)
	assert.Equal(t, 200, cfg.Parser.MaxQueryLength)

	defaults := LoadConfigFrom(config.ChatConfig{}, 0)
	assert.Equal(t, LoadConfig().JobTimeout, defaults.JobTimeout)
	assert.Equal(t, 20, defaults.Dispatcher.MaxResults)
}
