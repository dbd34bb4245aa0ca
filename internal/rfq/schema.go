// internal/rfq/schema.go
package rfq

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// candidateSchema describes the shape a model-produced candidate must have
// before coercion. Nulls are allowed everywhere the prompt permits them;
// type mismatches surface as issues, not hard failures.
const candidateSchema = `{
  "type": "object",
  "properties": {
    "material": {"type": ["string", "null"]},
    "material_confidence": {"type": ["number", "null"]},
    "quantity": {"type": ["number", "string", "null"]},
    "dimensions": {
      "type": ["object", "null"],
      "properties": {
        "length": {"type": ["number", "string", "null"]},
        "width": {"type": ["number", "string", "null"]},
        "height": {"type": ["number", "string", "null"]}
      }
    },
    "complexity": {"type": ["string", "null"]},
    "deadline": {"type": ["string", "null"]},
    "industry": {"type": ["string", "null"]},
    "industry_confidence": {"type": ["number", "null"]},
    "finish": {"type": ["string", "null"]},
    "tolerance": {"type": ["string", "null"]}
  }
}`

var candidateSchemaLoader = gojsonschema.NewStringLoader(candidateSchema)

// ValidateCandidateJSON checks a raw candidate document against the expected
// schema. The returned issues are advisory and feed into the same degradation
// path as coercion failures.
func ValidateCandidateJSON(document string) ([]FieldIssue, error) {
	result, err := gojsonschema.Validate(candidateSchemaLoader, gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]FieldIssue, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, FieldIssue{
			Field:  desc.Field(),
			Reason: desc.Description(),
		})
	}
	return issues, nil
}
