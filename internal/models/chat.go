// internal/models/chat.go
package models

type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentHelp            Intent = "help"
	IntentSearch          Intent = "search"
	IntentInfo            Intent = "info"
	IntentProviderDetails Intent = "provider_details"
	IntentUnknown         Intent = "unknown"
)

// InformationRequest lists which provider fields the user asked for.
type InformationRequest struct {
	WantsPhone    bool `json:"wantsPhone"`
	WantsEmail    bool `json:"wantsEmail"`
	WantsLocation bool `json:"wantsLocation"`
	WantsServices bool `json:"wantsServices"`
	WantsWebsite  bool `json:"wantsWebsite"`
	WantsAll      bool `json:"wantsAll"`
}

// Any reports whether at least one flag is set.
func (r InformationRequest) Any() bool {
	return r.WantsPhone || r.WantsEmail || r.WantsLocation || r.WantsServices || r.WantsWebsite || r.WantsAll
}

// Entities holds everything pulled out of a query. Empty strings mean
// "not found". ProviderResolved is false when ProviderName came from the
// query text rather than the organization catalog.
type Entities struct {
	District           string             `json:"district,omitempty"`
	ServiceType        string             `json:"serviceType,omitempty"`
	BeneficiaryType    string             `json:"beneficiaryType,omitempty"`
	ProviderName       string             `json:"providerName,omitempty"`
	ProviderResolved   bool               `json:"providerResolved"`
	InformationRequest InformationRequest `json:"informationRequest"`
}

// HasSearchTerms reports whether any entity usable as a search filter is set.
func (e Entities) HasSearchTerms() bool {
	return e.District != "" || e.ServiceType != "" || e.BeneficiaryType != "" || e.ProviderName != ""
}

type Understanding struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
}

// OrganizationSummary is the projection of an Organization returned to clients.
type OrganizationSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Phone         string   `json:"phone,omitempty"`
	Email         string   `json:"email,omitempty"`
	Website       string   `json:"website,omitempty"`
	Paid          bool     `json:"paid"`
	Services      []string `json:"services"`
	Beneficiaries []string `json:"beneficiaries"`
	Districts     []string `json:"districts"`
}

func Summarize(o Organization) OrganizationSummary {
	return OrganizationSummary{
		ID:            o.ID,
		Name:          o.Name,
		Phone:         o.Phone,
		Email:         o.Email,
		Website:       o.Website,
		Paid:          o.Paid,
		Services:      o.ServiceNames(),
		Beneficiaries: o.BeneficiaryNames(),
		Districts:     o.DistrictNames(),
	}
}

// MaxSuggestions bounds Reply.Suggestions.
const MaxSuggestions = 3

type Reply struct {
	Response    string                `json:"response"`
	Suggestions []string              `json:"suggestions"`
	Results     []OrganizationSummary `json:"results,omitempty"`
	Provider    *OrganizationSummary  `json:"provider,omitempty"`
}
