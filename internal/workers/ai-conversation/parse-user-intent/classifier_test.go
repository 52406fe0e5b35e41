package parseuserintent

import (
	"testing"

	"provider-directory/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	resolved := models.Entities{
		ProviderName:     "Kicukiro Family Center",
		ProviderResolved: true,
	}

	tests := []struct {
		name             string
		query            string
		entities         models.Entities
		expectedIntent   models.Intent
		expectedEntities models.Entities
	}{
		{
			name:           "greeting beats search",
			query:          "Hello, find services in Gasabo",
			entities:       models.Entities{District: "Gasabo"},
			expectedIntent: models.IntentGreeting,
		},
		{
			name:           "kinyarwanda greeting",
			query:          "Muraho",
			expectedIntent: models.IntentGreeting,
		},
		{
			name:           "bare help",
			query:          "help",
			expectedIntent: models.IntentHelp,
		},
		{
			name:           "what can you do",
			query:          "What can you do?",
			expectedIntent: models.IntentHelp,
		},
		{
			name:             "details cue without information flags",
			query:            "details on kicukiro family center",
			entities:         resolved,
			expectedIntent:   models.IntentProviderDetails,
			expectedEntities: resolved,
		},
		{
			name:  "provider details wins over district search",
			query: "find the phone of kicukiro family center in gasabo",
			entities: models.Entities{
				District:           "Gasabo",
				ProviderName:       "Kicukiro Family Center",
				ProviderResolved:   true,
				InformationRequest: models.InformationRequest{WantsPhone: true},
			},
			expectedIntent: models.IntentProviderDetails,
			expectedEntities: models.Entities{
				District:           "Gasabo",
				ProviderName:       "Kicukiro Family Center",
				ProviderResolved:   true,
				InformationRequest: models.InformationRequest{WantsPhone: true},
			},
		},
		{
			name:  "district suppresses organization name in search",
			query: "find kicukiro family center in gasabo",
			entities: models.Entities{
				District:         "Gasabo",
				ProviderName:     "Kicukiro Family Center",
				ProviderResolved: true,
			},
			expectedIntent:   models.IntentSearch,
			expectedEntities: models.Entities{District: "Gasabo"},
		},
		{
			name:  "organization name kept when only a beneficiary type matched",
			query: "list kicukiro family center for orphans",
			entities: models.Entities{
				BeneficiaryType:  "Orphans",
				ProviderName:     "Kicukiro Family Center",
				ProviderResolved: true,
			},
			expectedIntent: models.IntentSearch,
			expectedEntities: models.Entities{
				BeneficiaryType:  "Orphans",
				ProviderName:     "Kicukiro Family Center",
				ProviderResolved: true,
			},
		},
		{
			name:           "search noun alone",
			query:          "foster care",
			entities:       models.Entities{ServiceType: "Alternative Care"},
			expectedIntent: models.IntentSearch,
			expectedEntities: models.Entities{
				ServiceType: "Alternative Care",
			},
		},
		{
			name:           "compound who-offers pattern",
			query:          "who offers counseling in gasabo",
			entities:       models.Entities{District: "Gasabo"},
			expectedIntent: models.IntentSearch,
			expectedEntities: models.Entities{
				District: "Gasabo",
			},
		},
		{
			name:           "information seeking question",
			query:          "what is this",
			expectedIntent: models.IntentInfo,
		},
		{
			name:           "describe",
			query:          "Describe the directory",
			expectedIntent: models.IntentInfo,
		},
		{
			name:           "fallback",
			query:          "banana",
			entities:       models.Entities{District: "Gasabo"},
			expectedIntent: models.IntentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			understanding := Classify(tt.query, tt.entities)

			assert.Equal(t, tt.expectedIntent, understanding.Intent)
			assert.Equal(t, tt.expectedEntities, understanding.Entities)
		})
	}
}

func TestClassify_GreetingAlwaysWinsOverSearchKeywords(t *testing.T) {
	for _, q := range []string{"hi find care", "hey list providers", "good morning, search services in Kicukiro"} {
		assert.Equal(t, models.IntentGreeting, Classify(q, models.Entities{}).Intent, q)
	}
}

func TestClassify_WordOverlapOrganizationDoesNotDisplaceSearch(t *testing.T) {
	catalogs := createTestCatalogs()
	catalogs.Organizations = append(catalogs.Organizations, models.Organization{
		ID:        "o9",
		Name:      "Alternative Care Initiatives",
		Services:  []models.Ref{{ID: "s2", Name: "Alternative Care"}},
		Locations: []models.Location{{DistrictName: "Gasabo"}},
	})

	tests := []struct {
		name             string
		query            string
		expectedIntent   models.Intent
		expectedProvider string
	}{
		{
			name:           "service and district search",
			query:          "Find alternative care services in Kicukiro",
			expectedIntent: models.IntentSearch,
		},
		{
			name:           "service search with providers wording",
			query:          "Find alternative care providers in Kicukiro",
			expectedIntent: models.IntentSearch,
		},
		{
			name:             "full name in the query still resolves",
			query:            "What services does Alternative Care Initiatives offer in Kicukiro",
			expectedIntent:   models.IntentProviderDetails,
			expectedProvider: "Alternative Care Initiatives",
		},
		{
			name:             "quoted name still resolves",
			query:            `phone of "Alternative Care Initiativs" in Kicukiro`,
			expectedIntent:   models.IntentProviderDetails,
			expectedProvider: "Alternative Care Initiatives",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := Extract(tt.query, &catalogs)
			understanding := Classify(tt.query, entities)

			assert.Equal(t, tt.expectedIntent, understanding.Intent)
			assert.Equal(t, tt.expectedProvider, understanding.Entities.ProviderName)
			if tt.expectedIntent == models.IntentSearch {
				assert.Equal(t, "Kicukiro", understanding.Entities.District)
				assert.Equal(t, "Alternative Care", understanding.Entities.ServiceType)
			}
		})
	}
}
