// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// answerRequestSchema constrains the /api/answer request body.
var answerRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"question": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 2000,
		},
		"history": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"question": map[string]interface{}{"type": "string"},
					"answer":   map[string]interface{}{"type": "string"},
				},
				"required": []string{"question"},
			},
			"maxItems": 20,
		},
	},
	"required":             []string{"question"},
	"additionalProperties": false,
}

// ValidateAnswerRequest checks a decoded request body against the schema and
// returns a descriptive error when it does not conform.
func ValidateAnswerRequest(body map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(answerRequestSchema)
	documentLoader := gojsonschema.NewGoLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %v", errs)
	}

	return nil
}
