// internal/workers/infrastructure/build-response/compose.go
package buildresponse

import (
	"fmt"
	"strings"

	"provider-directory/internal/common/textmatch"
	"provider-directory/internal/models"
)

func (h *Handler) composeResults(orgs []models.Organization, f models.SearchFilter, cat *models.Catalogs) models.Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s%s:", len(orgs), plural(len(orgs), "provider", "providers"), describeFilter(f))

	summaries := make([]models.OrganizationSummary, 0, len(orgs))
	for i, o := range orgs {
		fmt.Fprintf(&b, "\n\n%d. %s", i+1, o.Name)
		if services := o.ServiceNames(); len(services) > 0 {
			b.WriteString("\n   Services: " + strings.Join(services, ", "))
		}
		if districts := districtsFor(o, f.District); len(districts) > 0 {
			b.WriteString("\n   Location: " + strings.Join(districts, ", "))
		}
		if o.Phone != "" {
			b.WriteString("\n   Phone: " + o.Phone)
		}
		if o.Email != "" && i < h.config.EmailPreviewCount {
			b.WriteString("\n   Email: " + o.Email)
		}
		summaries = append(summaries, models.Summarize(o))
	}

	if h.config.MaxResults > 0 && len(orgs) == h.config.MaxResults {
		fmt.Fprintf(&b, "\n\nShowing the first %d results. Add a district or service type to narrow your search.", len(orgs))
	}

	var follow []string
	follow = append(follow, "Tell me about "+orgs[0].Name)
	if f.District == "" {
		follow = append(follow, findIn(f, firstName(cat.Districts)))
	}
	if f.ServiceType == "" {
		follow = append(follow, findProviders(firstName(cat.ServiceTypes), f.District))
	}
	if f.BeneficiaryType == "" {
		follow = append(follow, findServicesFor(firstName(cat.BeneficiaryTypes), f.District))
	}

	return models.Reply{
		Response:    b.String(),
		Suggestions: h.suggestions(follow...),
		Results:     summaries,
	}
}

func (h *Handler) composeEmpty(f models.SearchFilter, cat *models.Catalogs) models.Reply {
	var follow []string
	if f.District != "" {
		if f.ServiceType != "" || f.BeneficiaryType != "" {
			follow = append(follow, "Find "+subject(f)+" in any district")
		}
		for _, d := range cat.Districts {
			if !strings.EqualFold(d.Name, f.District) {
				follow = append(follow, findIn(f, d.Name))
				break
			}
		}
	}
	if f.ServiceType != "" && f.BeneficiaryType != "" {
		follow = append(follow, findProviders(f.ServiceType, f.District))
	}

	return models.Reply{
		Response:    fmt.Sprintf("I couldn't find any providers%s.", describeFilter(f)),
		Suggestions: h.suggestions(follow...),
	}
}

// composeProvider shows the sections the user asked for. A field that was
// asked for by name but is missing is reported as not available; with no
// flags at all the main sections are shown.
func (h *Handler) composeProvider(org models.Organization, ir models.InformationRequest) models.Reply {
	fallback := !ir.Any()
	show := func(flag bool) bool { return fallback || ir.WantsAll || flag }

	var lines []string
	contact := func(label, value string, requested bool) bool {
		switch {
		case value != "":
			lines = append(lines, label+": "+value)
		case requested:
			lines = append(lines, label+": Not available")
		default:
			return false
		}
		return true
	}

	shownServices, shownLocation, shownPhone, shownEmail := false, false, false, false
	if show(ir.WantsServices) {
		if services := org.ServiceNames(); len(services) > 0 {
			lines = append(lines, "Services: "+strings.Join(services, ", "))
			shownServices = true
		}
	}
	if show(ir.WantsLocation) {
		if locations := locationNames(org); len(locations) > 0 {
			lines = append(lines, "Locations: "+strings.Join(locations, "; "))
			shownLocation = true
		}
	}
	if show(ir.WantsPhone) {
		shownPhone = contact("Phone", org.Phone, ir.WantsPhone)
	}
	if show(ir.WantsEmail) {
		shownEmail = contact("Email", org.Email, ir.WantsEmail)
	}
	if show(ir.WantsWebsite) {
		contact("Website", org.Website, ir.WantsWebsite)
	}
	if ir.WantsAll {
		if beneficiaries := org.BeneficiaryNames(); len(beneficiaries) > 0 {
			lines = append(lines, "Serves: "+strings.Join(beneficiaries, ", "))
		}
		if other := strings.TrimSpace(org.OtherServices); other != "" {
			lines = append(lines, "Other services: "+other)
		}
		if org.Paid {
			lines = append(lines, "Cost: Paid services")
		} else {
			lines = append(lines, "Cost: Free of charge")
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No further details are listed for this organization yet.")
	}

	var follow []string
	if !shownServices && len(org.Services) > 0 {
		follow = append(follow, "What services does "+org.Name+" offer?")
	}
	if !shownPhone && org.Phone != "" {
		follow = append(follow, "What's the phone number of "+org.Name+"?")
	}
	if !shownLocation && len(org.Locations) > 0 {
		follow = append(follow, "Where is "+org.Name+" located?")
	}
	if !shownEmail && org.Email != "" {
		follow = append(follow, "What's the email of "+org.Name+"?")
	}
	if services := org.ServiceNames(); len(services) > 0 {
		follow = append(follow, findProviders(services[0], ""))
	}

	summary := models.Summarize(org)
	return models.Reply{
		Response:    fmt.Sprintf("Here is the information for %s:\n%s", org.Name, strings.Join(lines, "\n")),
		Suggestions: h.suggestions(follow...),
		Provider:    &summary,
	}
}

func (h *Handler) composeNotFound(name string, candidates []models.Organization) models.Reply {
	if len(candidates) == 0 {
		return models.Reply{
			Response: fmt.Sprintf("I couldn't find an organization called %q. "+
				"Please check the spelling, or search by service type or district instead.", name),
			Suggestions: h.suggestions(),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I couldn't find an organization called %q. Did you mean:", name)
	follow := make([]string, 0, len(candidates))
	for i, c := range candidates {
		if i == models.MaxSuggestions {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, c.Name)
		follow = append(follow, "Tell me about "+c.Name)
	}

	return models.Reply{
		Response:    b.String(),
		Suggestions: h.suggestions(follow...),
	}
}

func (h *Handler) composeCounts(c models.DirectoryCounts, cat *models.Catalogs) models.Reply {
	return models.Reply{
		Response: fmt.Sprintf("Our directory currently lists %d %s offering %d %s across %d %s.",
			c.Organizations, plural(c.Organizations, "organization", "organizations"),
			c.ServiceTypes, plural(c.ServiceTypes, "service type", "service types"),
			c.Districts, plural(c.Districts, "district", "districts")),
		Suggestions: h.suggestions(
			findProviders(firstName(cat.ServiceTypes), ""),
			findServicesIn(firstName(cat.Districts)),
		),
	}
}

func describeFilter(f models.SearchFilter) string {
	var parts []string
	if f.ServiceType != "" {
		parts = append(parts, "offering "+f.ServiceType)
	}
	if f.BeneficiaryType != "" {
		parts = append(parts, "for "+f.BeneficiaryType)
	}
	if f.District != "" {
		parts = append(parts, "in "+f.District)
	}
	if f.NameContains != "" {
		parts = append(parts, fmt.Sprintf("matching %q", f.NameContains))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// districtsFor narrows an organization's districts to the queried one,
// using the same containment rule as the search.
func districtsFor(o models.Organization, district string) []string {
	names := o.DistrictNames()
	if district == "" {
		return names
	}
	wanted := textmatch.Normalize(district)
	var filtered []string
	for _, n := range names {
		if strings.Contains(textmatch.Normalize(n), wanted) {
			filtered = append(filtered, n)
		}
	}
	if len(filtered) == 0 {
		return names
	}
	return filtered
}

func locationNames(o models.Organization) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range o.Locations {
		name := l.DistrictName
		if l.SectorName != "" {
			name = l.SectorName + ", " + l.DistrictName
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func subject(f models.SearchFilter) string {
	s := "services"
	if f.ServiceType != "" {
		s = f.ServiceType + " providers"
	}
	if f.BeneficiaryType != "" {
		s += " for " + f.BeneficiaryType
	}
	return s
}

func findIn(f models.SearchFilter, district string) string {
	if district == "" {
		return ""
	}
	return "Find " + subject(f) + " in " + district
}

func findProviders(serviceType, district string) string {
	if serviceType == "" {
		return ""
	}
	return "Find " + serviceType + " providers" + inDistrict(district)
}

func findServicesIn(district string) string {
	if district == "" {
		return ""
	}
	return "Find services in " + district
}

func findServicesFor(beneficiaryType, district string) string {
	if beneficiaryType == "" {
		return ""
	}
	return "Find services for " + beneficiaryType + inDistrict(district)
}

func inDistrict(district string) string {
	if district == "" {
		return ""
	}
	return " in " + district
}

func firstName(refs []models.Ref) string {
	if len(refs) == 0 {
		return ""
	}
	return refs[0].Name
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}
