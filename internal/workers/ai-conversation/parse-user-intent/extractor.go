// internal/workers/ai-conversation/parse-user-intent/extractor.go
package parseuserintent

import (
	"sort"
	"strings"
	"unicode/utf8"

	"provider-directory/internal/common/textmatch"
	"provider-directory/internal/models"

	"golang.org/x/text/unicode/norm"
)

func organizationName(o models.Organization) string { return o.Name }

// orgSource records how extractOrganization found its match.
type orgSource int

const (
	orgNone orgSource = iota
	orgQuoted
	orgQuestion
	orgContained
	orgOverlap
)

// Extract pulls district, service type, beneficiary type, organization name
// and the information request out of query. At most one value is kept per
// entity kind. ProviderName is the raw organization match; the search-time
// conflict rule is applied by Classify.
func Extract(query string, catalogs *models.Catalogs) models.Entities {
	if catalogs == nil {
		catalogs = &models.Catalogs{}
	}
	text := compact(query)
	lowered := textmatch.Normalize(text)

	entities := models.Entities{
		District:           matchRef(lowered, catalogs.Districts, districtVariantTable, false),
		ServiceType:        matchRef(lowered, catalogs.ServiceTypes, serviceTypeVariantTable, true),
		BeneficiaryType:    matchRef(lowered, catalogs.BeneficiaryTypes, beneficiaryTypeVariantTable, false),
		InformationRequest: DetectInformationRequest(lowered),
	}

	org, source, capture := extractOrganization(text, lowered, catalogs.Organizations)
	switch {
	case source == orgOverlap && (entities.District != "" || entities.ServiceType != ""):
		// a word-overlap guess never displaces a service or location search
	case source != orgNone:
		entities.ProviderName = org.Name
		entities.ProviderResolved = true
	case acceptUnresolved(capture, entities):
		entities.ProviderName = capture
	}

	return entities
}

// DetectInformationRequest runs the six keyword groups against query.
// WantsAll is only set when none of the specific groups matched.
func DetectInformationRequest(query string) models.InformationRequest {
	q := textmatch.Normalize(query)
	req := models.InformationRequest{
		WantsPhone:    wantsPhonePattern.MatchString(q),
		WantsEmail:    wantsEmailPattern.MatchString(q),
		WantsLocation: wantsLocationPattern.MatchString(q),
		WantsServices: wantsServicesPattern.MatchString(q),
		WantsWebsite:  wantsWebsitePattern.MatchString(q),
	}
	specific := req.WantsPhone || req.WantsEmail || req.WantsLocation || req.WantsServices || req.WantsWebsite
	req.WantsAll = !specific && wantsAllPattern.MatchString(q)
	return req
}

// extractOrganization tries quoted spans, then question patterns, then a
// sweep of the whole catalog: names contained in the query first, word
// overlap last. The first question-pattern capture is returned even when
// nothing resolved, for the did-you-mean path.
func extractOrganization(text, lowered string, orgs []models.Organization) (models.Organization, orgSource, string) {
	for _, m := range quotedNamePattern.FindAllStringSubmatch(text, -1) {
		if org, ok := textmatch.BestMatch(cleanCapture(m[1]), orgs, organizationName); ok {
			return org, orgQuoted, ""
		}
	}

	firstCapture := ""
	for _, p := range providerQuestionPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := cleanCapture(p.capture(m))
		if candidate == "" {
			continue
		}
		if org, ok := textmatch.BestMatch(candidate, orgs, organizationName); ok {
			return org, orgQuestion, ""
		}
		if firstCapture == "" {
			firstCapture = candidate
		}
	}

	if org, ok := textmatch.LongestContained(lowered, orgs, organizationName); ok {
		return org, orgContained, ""
	}
	if org, ok := textmatch.BestContained(lowered, orgs, organizationName); ok {
		return org, orgOverlap, ""
	}

	return models.Organization{}, orgNone, firstCapture
}

// acceptUnresolved keeps a capture that named no catalog organization only
// when the user clearly asked about one provider's fields.
func acceptUnresolved(capture string, e models.Entities) bool {
	if capture == "" || !e.InformationRequest.Any() {
		return false
	}
	if e.District != "" || e.ServiceType != "" || e.BeneficiaryType != "" {
		return false
	}
	for _, w := range textmatch.SignificantWords(capture) {
		if !textmatch.IsStopWord(w) && !genericQueryWords[w] {
			return true
		}
	}
	return false
}

var genericQueryWords = map[string]bool{
	"you": true, "them": true, "they": true, "all": true, "any": true,
	"providers": true, "organizations": true, "organisations": true,
	"everything": true, "directory": true, "list": true,
}

// matchRef returns the first catalog entry whose name occurs in query or
// whose variant group matches.
func matchRef(query string, refs []models.Ref, variants variantTable, longestFirst bool) string {
	ordered := refs
	if longestFirst {
		ordered = make([]models.Ref, len(refs))
		copy(ordered, refs)
		sort.SliceStable(ordered, func(i, j int) bool {
			return utf8.RuneCountInString(ordered[i].Name) > utf8.RuneCountInString(ordered[j].Name)
		})
	}

	for _, ref := range ordered {
		name := textmatch.Normalize(ref.Name)
		if name == "" {
			continue
		}
		if strings.Contains(query, name) || variants.matches(name, query) {
			return ref.Name
		}
	}
	return ""
}

// compact normalizes Unicode and whitespace but keeps the user's casing.
func compact(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
