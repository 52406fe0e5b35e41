package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ChatRequestValidator checks POST /api/chat bodies against a compiled
// JSON schema.
type ChatRequestValidator struct {
	schema *gojsonschema.Schema
}

// ChatRequestSchema describes a chat request. Query length is not bounded
// here; the parser truncates long queries and the body size is capped by
// the HTTP layer.
func ChatRequestSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"query"},
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type": "string",
			},
			"conversationId": map[string]interface{}{
				"type":      "string",
				"maxLength": 64,
				"pattern":   "^[A-Za-z0-9_-]*$",
			},
		},
	}
}

func NewChatRequestValidator() (*ChatRequestValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ChatRequestSchema()))
	if err != nil {
		return nil, fmt.Errorf("compile chat request schema: %w", err)
	}
	return &ChatRequestValidator{schema: schema}, nil
}

// Validate checks a raw JSON body. Malformed JSON is an error; a
// well-formed body that breaks the schema yields an invalid result.
func (v *ChatRequestValidator) Validate(body []byte) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("malformed chat request: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldName(e),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out, nil
}

// fieldName reports the offending property; "required" errors are raised
// on the parent so the missing property comes from the details.
func fieldName(e gojsonschema.ResultError) string {
	if e.Type() == "required" {
		if p, ok := e.Details()["property"].(string); ok {
			return p
		}
	}
	return e.Field()
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
