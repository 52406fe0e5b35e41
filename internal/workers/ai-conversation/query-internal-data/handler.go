package queryinternaldata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"provider-directory/internal/catalog"
	"provider-directory/internal/common/textmatch"
	"provider-directory/internal/models"
)

const (
	TaskType = "query-internal-data"
)

var (
	ErrInternalDataQueryFailed = errors.New("INTERNAL_DATA_QUERY_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	store  catalog.Store
	logger Logger
}

func NewHandler(config *Config, store catalog.Store, log Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	u := input.Understanding
	switch u.Intent {
	case models.IntentSearch:
		return h.search(ctx, u.Entities)
	case models.IntentProviderDetails:
		return h.providerDetails(u.Entities, input.Catalogs.Organizations), nil
	case models.IntentInfo:
		return h.counts(ctx)
	default:
		return &Output{Kind: KindCanned}, nil
	}
}

// search ANDs every extracted entity. With nothing to filter on it refuses
// to list the whole directory.
func (h *Handler) search(ctx context.Context, e models.Entities) (*Output, error) {
	filter := models.SearchFilter{
		District:        e.District,
		ServiceType:     e.ServiceType,
		BeneficiaryType: e.BeneficiaryType,
		NameContains:    e.ProviderName,
		Limit:           catalog.ClampLimit(h.config.MaxResults),
	}
	if filter.IsEmpty() {
		return &Output{Kind: KindNeedSpecificity, Filter: filter}, nil
	}

	orgs, err := h.store.SearchOrganizations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalDataQueryFailed, err)
	}
	if len(orgs) > filter.Limit {
		orgs = orgs[:filter.Limit]
	}

	h.logger.Info("directory searched", map[string]interface{}{
		"district":        filter.District,
		"serviceType":     filter.ServiceType,
		"beneficiaryType": filter.BeneficiaryType,
		"nameContains":    filter.NameContains,
		"resultCount":     len(orgs),
	})

	return &Output{Kind: KindResults, Filter: filter, Organizations: orgs}, nil
}

// providerDetails looks the name up in the catalog snapshot and falls back
// to did-you-mean candidates ranked by word overlap.
func (h *Handler) providerDetails(e models.Entities, orgs []models.Organization) *Output {
	filter := models.SearchFilter{NameContains: e.ProviderName}
	wanted := textmatch.Normalize(e.ProviderName)

	for i := range orgs {
		if wanted != "" && strings.Contains(textmatch.Normalize(orgs[i].Name), wanted) {
			org := orgs[i]
			return &Output{Kind: KindProvider, Filter: filter, Provider: &org}
		}
	}

	candidates := SimilarOrganizations(e.ProviderName, orgs, h.config.MaxCandidates)
	h.logger.Info("provider not found", map[string]interface{}{
		"providerName":   e.ProviderName,
		"candidateCount": len(candidates),
	})
	return &Output{Kind: KindProviderNotFound, Filter: filter, Candidates: candidates}
}

func (h *Handler) counts(ctx context.Context) (*Output, error) {
	var counts models.DirectoryCounts
	var err error

	if counts.Organizations, err = h.store.CountOrganizations(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalDataQueryFailed, err)
	}
	if counts.ServiceTypes, err = h.store.CountServiceTypes(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalDataQueryFailed, err)
	}
	if counts.Districts, err = h.store.CountDistricts(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalDataQueryFailed, err)
	}

	return &Output{Kind: KindCounts, Counts: &counts}, nil
}

// SimilarOrganizations scores every organization by how many significant
// words of name it shares and returns the best max with a positive score.
// Equal scores keep catalog order.
func SimilarOrganizations(name string, orgs []models.Organization, max int) []models.Organization {
	type scored struct {
		org   models.Organization
		score int
	}

	var ranked []scored
	for _, o := range orgs {
		if score := textmatch.OverlapScore(o.Name, name); score > 0 {
			ranked = append(ranked, scored{org: o, score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]models.Organization, len(ranked))
	for i, r := range ranked {
		out[i] = r.org
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
