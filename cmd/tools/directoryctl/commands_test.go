package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provider-directory/internal/common/logger"
	"provider-directory/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeStore struct {
	orgs     []models.Organization
	countErr error
}

func (s *fakeStore) ListOrganizations(context.Context) ([]models.Organization, error) {
	return s.orgs, nil
}

func (s *fakeStore) ListDistricts(context.Context) ([]models.Ref, error) {
	return []models.Ref{{ID: "d1", Name: "Gasabo"}}, nil
}

func (s *fakeStore) ListServiceTypes(context.Context) ([]models.Ref, error) {
	return []models.Ref{{ID: "s1", Name: "Legal Aid"}}, nil
}

func (s *fakeStore) ListBeneficiaryTypes(context.Context) ([]models.Ref, error) {
	return []models.Ref{{ID: "b1", Name: "Orphans"}}, nil
}

func (s *fakeStore) SearchOrganizations(context.Context, models.SearchFilter) ([]models.Organization, error) {
	return s.orgs, nil
}

func (s *fakeStore) CountOrganizations(context.Context) (int, error) { return len(s.orgs), s.countErr }
func (s *fakeStore) CountServiceTypes(context.Context) (int, error)  { return 1, nil }
func (s *fakeStore) CountDistricts(context.Context) (int, error)     { return 1, nil }

type fakeIndex struct {
	batches [][]models.Organization
	err     error
}

func (f *fakeIndex) IndexOrganizations(_ context.Context, orgs []models.Organization) error {
	f.batches = append(f.batches, orgs)
	return f.err
}

func createTestOrganizations(n int) []models.Organization {
	orgs := make([]models.Organization, n)
	for i := range orgs {
		orgs[i] = models.Organization{ID: string(rune('a' + i)), Name: "Org " + string(rune('A'+i))}
	}
	return orgs
}

func execute(t *testing.T, b *backends, args ...string) (string, error) {
	t.Helper()
	if b.log == nil {
		b.log = logger.NewTestLogger(t)
	}
	open := func(context.Context, string) (*backends, error) { return b, nil }

	var out bytes.Buffer
	root := newRootCmd(open)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return out.String(), err
}

// ==========================
// Commands
// ==========================

func TestStats(t *testing.T) {
	out, err := execute(t, &backends{store: &fakeStore{orgs: createTestOrganizations(3)}}, "stats")
	require.NoError(t, err)
	assert.Equal(t, "organizations: 3\nservice types: 1\ndistricts:     1\n", out)
}

func TestStats_StoreError(t *testing.T) {
	_, err := execute(t, &backends{store: &fakeStore{countErr: errors.New("db down")}}, "stats")
	assert.EqualError(t, err, "db down")
}

func TestReindex_Batches(t *testing.T) {
	index := &fakeIndex{}
	b := &backends{store: &fakeStore{orgs: createTestOrganizations(5)}, index: index, indexName: "organizations"}

	out, err := execute(t, b, "reindex", "--batch-size", "2")
	require.NoError(t, err)

	assert.Equal(t, "indexed 5 organizations into organizations\n", out)
	require.Len(t, index.batches, 3)
	assert.Len(t, index.batches[0], 2)
	assert.Len(t, index.batches[2], 1)
	assert.Equal(t, "Org E", index.batches[2][0].Name)
}

func TestReindex_Errors(t *testing.T) {
	tests := []struct {
		name     string
		backends *backends
		args     []string
		expected string
	}{
		{
			name:     "index disabled",
			backends: &backends{store: &fakeStore{}},
			args:     []string{"reindex"},
			expected: errIndexDisabled.Error(),
		},
		{
			name:     "bulk failure",
			backends: &backends{store: &fakeStore{orgs: createTestOrganizations(1)}, index: &fakeIndex{err: errors.New("rejected")}},
			args:     []string{"reindex"},
			expected: "batch 0-1: rejected",
		},
		{
			name:     "bad batch size",
			backends: &backends{store: &fakeStore{}},
			args:     []string{"reindex", "--batch-size", "0"},
			expected: "--batch-size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.backends, tt.args...)
			assert.EqualError(t, err, tt.expected)
		})
	}
}

func TestAsk(t *testing.T) {
	out, err := execute(t, &backends{store: &fakeStore{}}, "ask", "hello", "there")
	require.NoError(t, err)

	var decoded struct {
		Reply         models.Reply          `json:"reply"`
		Understanding *models.Understanding `json:"understanding"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded.Reply.Response, "Hello!")
	assert.Nil(t, decoded.Understanding)
}

func TestAsk_Explain(t *testing.T) {
	out, err := execute(t, &backends{store: &fakeStore{}}, "ask", "--explain", "hello")
	require.NoError(t, err)

	var decoded struct {
		Understanding models.Understanding `json:"understanding"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, models.IntentGreeting, decoded.Understanding.Intent)
}

func TestAsk_RequiresQuery(t *testing.T) {
	_, err := execute(t, &backends{store: &fakeStore{}}, "ask")
	assert.Error(t, err)
}

type fakeMigrator struct{ calls int }

func (f *fakeMigrator) Migrate(context.Context) error {
	f.calls++
	return nil
}

func TestMigrate(t *testing.T) {
	m := &fakeMigrator{}
	out, err := execute(t, &backends{store: &fakeStore{}, migrator: m}, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema is up to date\n", out)
	assert.Equal(t, 1, m.calls)
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(openBackends)
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"ask", "migrate", "reindex", "stats"})
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
