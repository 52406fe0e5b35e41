// internal/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"provider-directory/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultIndexName = "organizations"

var ErrIndexingFailed = errors.New("INDEXING_FAILED")

// organizationDocument is the indexed form of an Organization. The flat
// name lists carry keyword sub-fields used by the wildcard filters.
type organizationDocument struct {
	models.Organization
	DistrictNames    []string `json:"districtNames"`
	ServiceNames     []string `json:"serviceNames"`
	BeneficiaryNames []string `json:"beneficiaryNames"`
}

func newOrganizationDocument(o models.Organization) organizationDocument {
	return organizationDocument{
		Organization:     o,
		DistrictNames:    o.DistrictNames(),
		ServiceNames:     o.ServiceNames(),
		BeneficiaryNames: o.BeneficiaryNames(),
	}
}

// SearchIndex serves SearchOrganizations from an Elasticsearch index that
// mirrors the organizations table.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client, index string) *SearchIndex {
	if index == "" {
		index = DefaultIndexName
	}
	return &SearchIndex{client: client, index: index}
}

func (s *SearchIndex) SearchOrganizations(ctx context.Context, filter models.SearchFilter) ([]models.Organization, error) {
	body, err := json.Marshal(buildSearchQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source organizationDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSearchFailed, err)
	}

	limit := ClampLimit(filter.Limit)
	orgs := make([]models.Organization, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if len(orgs) == limit {
			break
		}
		orgs = append(orgs, hit.Source.Organization)
	}
	return orgs, nil
}

// IndexOrganizations upserts orgs with a single bulk request keyed by ID.
func (s *SearchIndex) IndexOrganizations(ctx context.Context, orgs []models.Organization) error {
	if len(orgs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, o := range orgs {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_id": o.ID},
		}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
		}
		if err := enc.Encode(newOrganizationDocument(o)); err != nil {
			return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
		}
	}

	req := esapi.BulkRequest{
		Index:   s.index,
		Body:    &buf,
		Refresh: "true",
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexingFailed, res.String())
	}

	var r struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrIndexingFailed, err)
	}
	if r.Errors {
		var failed []string
		for _, item := range r.Items {
			for _, result := range item {
				if result.Status >= 300 {
					failed = append(failed, result.ID)
				}
			}
		}
		return fmt.Errorf("%w: %d documents rejected: %s", ErrIndexingFailed, len(failed), strings.Join(failed, ","))
	}
	return nil
}

func buildSearchQuery(filter models.SearchFilter) map[string]interface{} {
	var filters []interface{}
	add := func(field, value string) {
		if value = strings.TrimSpace(value); value == "" {
			return
		}
		filters = append(filters, map[string]interface{}{
			"wildcard": map[string]interface{}{
				field: map[string]interface{}{
					"value":            "*" + escapeWildcard(value) + "*",
					"case_insensitive": true,
				},
			},
		})
	}
	add("districtNames.keyword", filter.District)
	add("serviceNames.keyword", filter.ServiceType)
	add("beneficiaryNames.keyword", filter.BeneficiaryType)
	add("name.keyword", filter.NameContains)

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filters) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		}
	}

	return map[string]interface{}{
		"query": query,
		"size":  ClampLimit(filter.Limit),
		"sort":  []interface{}{map[string]interface{}{"name.keyword": "asc"}},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

// IndexedStore reads catalogs from a primary Store and answers searches
// from a SearchIndex.
type IndexedStore struct {
	Store
	index *SearchIndex
}

func NewIndexedStore(primary Store, index *SearchIndex) *IndexedStore {
	return &IndexedStore{Store: primary, index: index}
}

func (s *IndexedStore) SearchOrganizations(ctx context.Context, filter models.SearchFilter) ([]models.Organization, error) {
	return s.index.SearchOrganizations(ctx, filter)
}
