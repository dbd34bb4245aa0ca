// Package pricing resolves quotes: a bounded attempt against the remote
// calculation backend, with a deterministic local estimate as the fallback.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"gendra-backend/internal/industry"
)

const defaultRateKey = "default"

// materialRates are per-unit material costs. Unknown materials use the
// default entry rather than failing the estimate.
var materialRates = map[string]float64{
	"aluminum":        3.2,
	"steel":           2.5,
	"plastic":         1.8,
	"titanium":        15.0,
	"brass":           6.0,
	"copper":          7.2,
	"stainless-steel": 5.5,
	"carbon-fiber":    25.0,
	"pla":             1.5,
	"abs":             2.0,
	defaultRateKey:    5.0,
}

var complexityFactors = map[string]float64{
	"low":          0.8,
	"medium":       1.0,
	"high":         1.5,
	defaultRateKey: 1.0,
}

// quantityDiscount returns the volume discount tier for a normalized
// quantity. Tiers are cumulative thresholds, not marginal rates.
func quantityDiscount(quantity int) float64 {
	switch {
	case quantity >= 1000:
		return 0.25
	case quantity >= 500:
		return 0.2
	case quantity >= 100:
		return 0.15
	case quantity >= 50:
		return 0.1
	case quantity >= 10:
		return 0.05
	default:
		return 0
	}
}

func materialRate(material string) float64 {
	if rate, ok := materialRates[material]; ok {
		return rate
	}
	return materialRates[defaultRateKey]
}

func complexityFactor(complexity string) float64 {
	if factor, ok := complexityFactors[complexity]; ok {
		return factor
	}
	return complexityFactors[defaultRateKey]
}

func leadTime(complexity string) string {
	days := 7
	switch complexity {
	case "high":
		days = 21
	case "medium":
		days = 14
	}
	return fmt.Sprintf("%d business days", days)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Estimate computes a quote locally. It never fails: invalid quantities
// normalize to 1 and unknown materials, complexities, and industries take
// their default table entries, so any request yields a finite quote.
func Estimate(req QuoteRequest) QuoteResult {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	material := strings.ToLower(strings.TrimSpace(req.Material))
	complexity := strings.ToLower(strings.TrimSpace(req.Complexity))
	if complexity == "" {
		complexity = "medium"
	}

	basePrice := industry.BasePrice(req.IndustryID)
	materialCost := materialRate(material) * float64(quantity)
	factor := complexityFactor(complexity)
	discount := quantityDiscount(quantity)

	quote := math.Round((basePrice + materialCost) * factor * (1 - discount))

	return QuoteResult{
		Quote:            quote,
		BasePrice:        basePrice,
		MaterialCost:     materialCost,
		ComplexityFactor: factor,
		QuantityDiscount: discount,
		LeadTime:         leadTime(complexity),
		Complexity:       capitalize(complexity),
		CalculatedBy:     CalculatedByFallback,
		Warning:          FallbackWarning,
	}
}
