// internal/pricing/models.go
package pricing

import "gendra-backend/internal/rfq"

// Quote provenance values.
const (
	CalculatedByBackend  = "backend"
	CalculatedByFallback = "fallback"
)

// FallbackWarning is attached to every locally estimated quote so callers can
// surface the degraded provenance.
const FallbackWarning = "Backend calculation service unavailable. Using fallback calculation."

// QuoteRequest is the input to quote resolution. It doubles as the wire body
// sent to the remote calculation backend.
type QuoteRequest struct {
	IndustryID string          `json:"industryId"`
	Material   string          `json:"material"`
	Quantity   int             `json:"quantity"`
	Complexity string          `json:"complexity"`
	Dimensions *rfq.Dimensions `json:"dimensions,omitempty"`
}

// QuoteResult is a resolved quote with its cost breakdown and provenance.
type QuoteResult struct {
	Quote            float64 `json:"quote"`
	BasePrice        float64 `json:"basePrice"`
	MaterialCost     float64 `json:"materialCost"`
	ComplexityFactor float64 `json:"complexityFactor"`
	QuantityDiscount float64 `json:"quantityDiscount"`
	LeadTime         string  `json:"leadTime"`
	Complexity       string  `json:"complexity"`
	CalculatedBy     string  `json:"calculatedBy"`
	Warning          string  `json:"warning,omitempty"`
}
