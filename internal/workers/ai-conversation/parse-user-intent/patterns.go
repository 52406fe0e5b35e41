// internal/workers/ai-conversation/parse-user-intent/patterns.go
package parseuserintent

import (
	"regexp"
	"strings"
)

// questionPattern pulls a candidate organization name out of a phrasing
// such as "what is the phone of X".
type questionPattern struct {
	name    string
	re      *regexp.Regexp
	capture func(match []string) string
}

func group(n int) func([]string) string {
	return func(match []string) string {
		if n < len(match) {
			return match[n]
		}
		return ""
	}
}

// quotedNamePattern only accepts a quote that opens a word, so the
// apostrophe in "what's" never starts a capture.
var quotedNamePattern = regexp.MustCompile(`(?:^|[\s(])["“']([^"“”']{3,})["”']`)

// providerQuestionPatterns are evaluated top to bottom; the first capture
// that resolves against the catalog wins.
var providerQuestionPatterns = []questionPattern{
	{
		name:    "field-of",
		re:      regexp.MustCompile(`(?i)\b(?:phone|telephone|mobile|contact|e-?mail|website|web site|address|location|services?)(?:\s+(?:number|details|address|info|information))?\s+(?:of|for|at)\s+(.+)`),
		capture: group(1),
	},
	{
		name:    "about",
		re:      regexp.MustCompile(`(?i)\b(?:tell me (?:more )?about|information (?:about|on)|info (?:about|on)|details (?:about|of|on|for)|more about|know about)\s+(.+)`),
		capture: group(1),
	},
	{
		name:    "where-contact",
		re:      regexp.MustCompile(`(?i)\b(?:where is|where are|where can i find|how (?:do|can) i (?:contact|reach|call|email))\s+(.+)`),
		capture: group(1),
	},
	{
		name:    "what-does",
		re:      regexp.MustCompile(`(?i)\bwhat (?:does|do)\s+(.+?)\s+(?:do|offer|provide)\b`),
		capture: group(1),
	},
	{
		name:    "trailing-field",
		re:      regexp.MustCompile(`(?i)^(.+?)(?:'s)?\s+(?:phone|telephone|contact|e-?mail|website|address|location|services)(?:\s+(?:number|details|address))?\s*[?.!]*$`),
		capture: group(1),
	},
}

var (
	leadingArticle  = regexp.MustCompile(`(?i)^(?:the|a|an)\s+`)
	trailingFillers = regexp.MustCompile(`(?i)\s+(?:please|pls|thanks|thank you)$`)
)

// cleanCapture trims punctuation, fillers and a leading article off a captured name.
func cleanCapture(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `?.!,;:"'“” `)
	s = trailingFillers.ReplaceAllString(s, "")
	s = leadingArticle.ReplaceAllString(s, "")
	return strings.Trim(strings.TrimSpace(s), `?.!,;:"'“” `)
}

// Information-request keyword groups.
var (
	wantsPhonePattern    = regexp.MustCompile(`\b(?:phone|telephone|tel|mobile|call|number|contact)\b`)
	wantsEmailPattern    = regexp.MustCompile(`\b(?:e-?mail|mail|contact)\b`)
	wantsLocationPattern = regexp.MustCompile(`\b(?:where|location|located|address|district|sector|directions?)\b`)
	wantsServicesPattern = regexp.MustCompile(`\b(?:services?|offer|offers|offering|provide|provides|programs?)\b`)
	wantsWebsitePattern  = regexp.MustCompile(`\b(?:website|web site|url|webpage|web page|homepage|online)\b`)
	wantsAllPattern      = regexp.MustCompile(`\b(?:all|everything|details?|information|info|tell me about|more about|anything)\b`)
)

// Intent patterns, in classification order.
var (
	greetingPattern = regexp.MustCompile(`^\s*(?:hi|hello|hey|hiya|howdy|greetings|good\s+(?:morning|afternoon|evening|day)|muraho|mwaramutse|mwiriwe|bonjour)\b`)
	helpPattern     = regexp.MustCompile(`^\s*(?:help(?:\s+me)?\s*[!?.]*$|can you help|what can you do|what do you do|how (?:do|can) i use|how does (?:this|it) work|(?:show )?(?:the )?(?:menu|commands|options)\s*[!?.]*$)`)
	detailsCue      = regexp.MustCompile(`\b(?:about|tell me|details?)\b`)
	searchVerbs     = regexp.MustCompile(`\b(?:find|search|show me|show|list|looking for|look for|locate|where can i (?:find|get)|need|want|recommend|any)\b`)
	searchNouns     = regexp.MustCompile(`\b(?:services?|providers?|care)\b`)
	infoPattern     = regexp.MustCompile(`^\s*(?:what|tell me|explain|describe)\b`)
)

// searchCompoundPatterns recognise "services of type X in district Y" phrasings.
var searchCompoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[\w-]+(?:\s+[\w-]+)*\s+services?\s+in\s+\w+`),
	regexp.MustCompile(`\bservices?\s+(?:for|of type|like)\s+[\w\s-]+?\s+in\s+\w+`),
	regexp.MustCompile(`\b(?:who|which\s+\w+)\s+(?:offers?|provides?|does)\s+[\w\s-]+?\s+in\s+\w+`),
}

// Variant keyword groups keyed by normalized canonical catalog name. A group
// matches when one of its phrases occurs in the query as whole words.
var (
	serviceTypeVariants = map[string][]string{
		"alternative care":            {"alternative care", "foster care", "foster", "adoption", "kinship care"},
		"psychosocial support":        {"psychosocial", "counseling", "counselling", "mental health", "trauma"},
		"legal aid":                   {"legal", "lawyer", "legal assistance", "legal advice"},
		"health services":             {"health", "medical", "clinic", "hospital"},
		"education":                   {"education", "school", "schooling", "scholarship"},
		"family strengthening":        {"family strengthening", "parenting", "positive parenting"},
		"case management":             {"case management", "case worker", "social worker"},
		"economic empowerment":        {"economic empowerment", "livelihood", "livelihoods", "vocational", "income generation"},
		"shelter":                     {"shelter", "safe house", "housing"},
		"family reintegration":        {"reintegration", "reunification", "family tracing"},
		"nutrition":                   {"nutrition", "food", "feeding"},
		"early childhood development": {"early childhood", "ecd", "daycare", "day care"},
	}

	beneficiaryTypeVariants = map[string][]string{
		"disabled":                   {"disability", "disabilities", "disabled", "special needs"},
		"children with disabilities": {"disability", "disabilities", "disabled", "special needs"},
		"orphans":                    {"orphan", "orphans", "orphaned"},
		"street children":            {"street children", "street kids", "homeless children"},
		"refugees":                   {"refugee", "refugees", "displaced"},
		"teen mothers":               {"teen mother", "teen mothers", "teenage mothers", "young mothers", "adolescent mothers"},
		"abuse survivors":            {"abuse", "abused", "survivor", "survivors", "violence"},
		"youth":                      {"youth", "young people", "adolescents", "teenagers"},
	}

	districtVariants = map[string][]string{}
)

type variantTable map[string]*regexp.Regexp

func compileVariants(groups map[string][]string) variantTable {
	table := make(variantTable, len(groups))
	for canonical, phrases := range groups {
		quoted := make([]string, len(phrases))
		for i, p := range phrases {
			quoted[i] = regexp.QuoteMeta(p)
		}
		table[canonical] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return table
}

var (
	serviceTypeVariantTable     = compileVariants(serviceTypeVariants)
	beneficiaryTypeVariantTable = compileVariants(beneficiaryTypeVariants)
	districtVariantTable        = compileVariants(districtVariants)
)

func (t variantTable) matches(canonical, query string) bool {
	re, ok := t[canonical]
	return ok && re.MatchString(query)
}
