// internal/rfq/coerce.go
package rfq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var deadlinePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// FieldIssue records a single field that could not be taken as-is.
// Issues are advisory; the record is still usable after coercion.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// coerceString returns the value as a string when it is one.
func coerceString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// coerceInt accepts JSON numbers and numeric strings.
func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// coerceFloat accepts JSON numbers and numeric strings.
func coerceFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// Normalize coerces a raw candidate object into a StructuredRFQ. Every field
// degrades independently: a bad value falls back to its default and records a
// FieldIssue instead of discarding the candidate.
func Normalize(candidate map[string]interface{}) (StructuredRFQ, []FieldIssue) {
	rec := DefaultRFQ()
	var issues []FieldIssue

	if candidate == nil {
		return rec, []FieldIssue{{Field: "candidate", Reason: "empty candidate object"}}
	}

	// Some models emit a truncated "ity" key in place of "complexity".
	if v, ok := candidate["ity"]; ok {
		if _, has := candidate["complexity"]; !has {
			candidate["complexity"] = v
		}
	}

	if v, ok := candidate["material"]; ok && v != nil {
		if s, ok := coerceString(v); ok {
			rec.Material = s
		} else {
			issues = append(issues, FieldIssue{Field: "material", Reason: "not a string"})
		}
	}

	if v, ok := candidate["quantity"]; ok && v != nil {
		if n, ok := coerceInt(v); ok {
			rec.Quantity = n
		} else {
			issues = append(issues, FieldIssue{Field: "quantity", Reason: "not numeric"})
		}
	}

	if dims, ok := candidate["dimensions"].(map[string]interface{}); ok {
		rec.Dimensions.Length = coerceDimension(dims, "length", &issues)
		rec.Dimensions.Width = coerceDimension(dims, "width", &issues)
		rec.Dimensions.Height = coerceDimension(dims, "height", &issues)
	} else if v, ok := candidate["dimensions"]; ok && v != nil {
		issues = append(issues, FieldIssue{Field: "dimensions", Reason: "not an object"})
	}

	if v, ok := candidate["complexity"]; ok && v != nil {
		s, _ := coerceString(v)
		if IsValidComplexity(s) {
			rec.Complexity = strings.ToLower(strings.TrimSpace(s))
		} else {
			rec.Complexity = ComplexityMedium
			issues = append(issues, FieldIssue{
				Field:  "complexity",
				Reason: fmt.Sprintf("unrecognized level %q, defaulting to medium", v),
			})
		}
	}

	if v, ok := candidate["deadline"]; ok && v != nil {
		if s, ok := coerceString(v); ok && deadlinePattern.MatchString(s) {
			rec.Deadline = s
		} else if ok && s != "" {
			issues = append(issues, FieldIssue{Field: "deadline", Reason: "not an ISO date"})
		}
	}

	if v, ok := candidate["industry"]; ok && v != nil {
		s, _ := coerceString(v)
		normalized := strings.ToLower(strings.TrimSpace(s))
		if IsValidIndustry(normalized) {
			rec.Industry = normalized
		} else if normalized != "" {
			issues = append(issues, FieldIssue{
				Field:  "industry",
				Reason: fmt.Sprintf("%q is not a recognized industry", s),
			})
		}
	}

	if s, ok := coerceString(candidate["finish"]); ok {
		rec.Finish = s
	} else if s, ok := coerceString(candidate["surface_finish"]); ok {
		rec.Finish = s
	}

	if s, ok := coerceString(candidate["tolerance"]); ok {
		rec.Tolerance = s
	}

	rec.MaterialConfidence = coerceConfidence(candidate, "material_confidence", &issues)
	rec.IndustryConfidence = coerceConfidence(candidate, "industry_confidence", &issues)

	return rec, issues
}

func coerceDimension(dims map[string]interface{}, key string, issues *[]FieldIssue) float64 {
	v, ok := dims[key]
	if !ok || v == nil {
		return 0
	}
	n, ok := coerceFloat(v)
	if !ok {
		*issues = append(*issues, FieldIssue{Field: "dimensions." + key, Reason: "not numeric"})
		return 0
	}
	return n
}

// coerceConfidence clamps to the valid range; out-of-range or missing scores
// become 0.5 so they neither pass nor fail the gate on their own.
func coerceConfidence(candidate map[string]interface{}, key string, issues *[]FieldIssue) float64 {
	v, ok := candidate[key]
	if !ok || v == nil {
		return 0.5
	}
	n, ok := coerceFloat(v)
	if !ok || n < 0 || n > 1 {
		*issues = append(*issues, FieldIssue{Field: key, Reason: "confidence outside [0,1]"})
		return 0.5
	}
	return n
}
