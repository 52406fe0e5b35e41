// internal/models/organization.go
package models

// Ref is an entry of one of the small reference catalogs (districts,
// service types, beneficiary types).
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Location struct {
	DistrictName string `json:"districtName"`
	SectorName   string `json:"sectorName"`
	CellName     string `json:"cellName,omitempty"`
	VillageName  string `json:"villageName,omitempty"`
}

// Organization is a registered service provider. Name is never empty.
type Organization struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email,omitempty"`
	Website       string     `json:"website,omitempty"`
	OtherServices string     `json:"otherServices,omitempty"`
	Paid          bool       `json:"paid"`
	Services      []Ref      `json:"services"`
	Beneficiaries []Ref      `json:"beneficiaries"`
	Locations     []Location `json:"locations"`
}

// Catalogs is the per-request snapshot the chat pipeline matches against.
type Catalogs struct {
	Organizations    []Organization `json:"organizations"`
	Districts        []Ref          `json:"districts"`
	ServiceTypes     []Ref          `json:"serviceTypes"`
	BeneficiaryTypes []Ref          `json:"beneficiaryTypes"`
}

// SearchFilter is ANDed: every non-empty field must match by
// case-insensitive containment.
type SearchFilter struct {
	District        string `json:"district,omitempty"`
	ServiceType     string `json:"serviceType,omitempty"`
	BeneficiaryType string `json:"beneficiaryType,omitempty"`
	NameContains    string `json:"nameContains,omitempty"`
	Limit           int    `json:"limit"`
}

func (f SearchFilter) IsEmpty() bool {
	return f.District == "" && f.ServiceType == "" && f.BeneficiaryType == "" && f.NameContains == ""
}

// DirectoryCounts backs the info intent.
type DirectoryCounts struct {
	Organizations int `json:"organizations"`
	ServiceTypes  int `json:"serviceTypes"`
	Districts     int `json:"districts"`
}

// ServiceNames returns the distinct service names in catalog order.
func (o Organization) ServiceNames() []string {
	names := make([]string, 0, len(o.Services))
	for _, s := range o.Services {
		names = appendUnique(names, s.Name)
	}
	return names
}

func (o Organization) BeneficiaryNames() []string {
	names := make([]string, 0, len(o.Beneficiaries))
	for _, b := range o.Beneficiaries {
		names = appendUnique(names, b.Name)
	}
	return names
}

// DistrictNames returns the distinct district names of the organization's locations.
func (o Organization) DistrictNames() []string {
	names := make([]string, 0, len(o.Locations))
	for _, l := range o.Locations {
		names = appendUnique(names, l.DistrictName)
	}
	return names
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
