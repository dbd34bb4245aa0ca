// Package rfq defines the structured RFQ record, field coercion, schema
// validation, and the confidence gate applied to extraction results.
package rfq

import "strings"

// ParsingVersion identifies the extraction logic revision stamped on records.
const ParsingVersion = "1.2.0"

// Complexity levels accepted on a structured RFQ.
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

// ValidIndustries lists the manufacturing industry categories the extraction
// prompt is allowed to classify into.
var ValidIndustries = []string{
	"metal fabrication",
	"injection molding",
	"cnc machining",
	"sheet metal",
	"electronics assembly",
}

// Dimensions holds part measurements in millimeters.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// StructuredRFQ is the normalized record produced by the extraction pipeline.
type StructuredRFQ struct {
	Material   string     `json:"material"`
	Quantity   int        `json:"quantity"`
	Dimensions Dimensions `json:"dimensions"`
	Complexity string     `json:"complexity"`
	Deadline   string     `json:"deadline"`
	Industry   string     `json:"industry"`
	Finish     string     `json:"finish,omitempty"`
	Tolerance  string     `json:"tolerance,omitempty"`

	MaterialConfidence float64 `json:"material_confidence"`
	IndustryConfidence float64 `json:"industry_confidence"`

	ModelUsed      string `json:"modelUsed,omitempty"`
	ParsingVersion string `json:"parsing_version,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	IsReviewed     bool   `json:"is_reviewed"`
}

// DefaultRFQ returns the all-empty sentinel record emitted when extraction
// produced nothing usable.
func DefaultRFQ() StructuredRFQ {
	return StructuredRFQ{
		Complexity: ComplexityLow,
	}
}

// IsSentinel reports whether the record carries only default values.
// Metadata fields (ModelUsed, Timestamp, ParsingVersion) are ignored so a
// stamped failure record still counts as the sentinel.
func (r *StructuredRFQ) IsSentinel() bool {
	return r.Material == "" &&
		r.Quantity == 0 &&
		r.Dimensions.Length == 0 &&
		r.Dimensions.Width == 0 &&
		r.Dimensions.Height == 0 &&
		r.Industry == ""
}

// IsValidIndustry reports whether s (case-insensitive) is a known industry.
func IsValidIndustry(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range ValidIndustries {
		if s == v {
			return true
		}
	}
	return false
}

// IsValidComplexity reports whether s (case-insensitive) is a known level.
func IsValidComplexity(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}
