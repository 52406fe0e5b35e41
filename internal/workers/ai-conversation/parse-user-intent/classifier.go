// internal/workers/ai-conversation/parse-user-intent/classifier.go
package parseuserintent

import (
	"provider-directory/internal/common/textmatch"
	"provider-directory/internal/models"
)

// Classify assigns exactly one intent. Rules are tried in a fixed order and
// the first that fires wins: greeting, help, provider_details, search,
// info, unknown.
func Classify(query string, e models.Entities) models.Understanding {
	if intent, ok := ClassifyCanned(query); ok {
		return models.Understanding{Intent: intent}
	}
	q := textmatch.Normalize(query)

	switch {
	case e.ProviderName != "" && (e.InformationRequest.Any() || detailsCue.MatchString(q)):
		return models.Understanding{Intent: models.IntentProviderDetails, Entities: e}

	case isSearch(q):
		return models.Understanding{Intent: models.IntentSearch, Entities: searchEntities(e)}

	case infoPattern.MatchString(q):
		return models.Understanding{Intent: models.IntentInfo}

	default:
		return models.Understanding{Intent: models.IntentUnknown}
	}
}

// ClassifyCanned recognises greeting and help, the first two rules of
// Classify. Neither needs catalog data, so callers may answer them before
// reading the store.
func ClassifyCanned(query string) (models.Intent, bool) {
	q := textmatch.Normalize(query)
	switch {
	case greetingPattern.MatchString(q):
		return models.IntentGreeting, true
	case helpPattern.MatchString(q):
		return models.IntentHelp, true
	}
	return "", false
}

func isSearch(q string) bool {
	if searchVerbs.MatchString(q) || searchNouns.MatchString(q) {
		return true
	}
	for _, re := range searchCompoundPatterns {
		if re.MatchString(q) {
			return true
		}
	}
	return false
}

// searchEntities applies the conflict rule: a district or service type
// suppresses the organization name. Unresolved names never become filters.
func searchEntities(e models.Entities) models.Entities {
	out := models.Entities{
		District:           e.District,
		ServiceType:        e.ServiceType,
		BeneficiaryType:    e.BeneficiaryType,
		InformationRequest: e.InformationRequest,
	}
	if e.ProviderResolved && e.District == "" && e.ServiceType == "" {
		out.ProviderName = e.ProviderName
		out.ProviderResolved = true
	}
	return out
}
