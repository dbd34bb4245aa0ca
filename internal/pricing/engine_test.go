// internal/pricing/engine_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Estimate
// ==========================

func TestEstimate_KnownIndustryAndMaterial(t *testing.T) {
	result := Estimate(QuoteRequest{
		IndustryID: "cnc-machining",
		Material:   "aluminum",
		Quantity:   100,
		Complexity: "medium",
	})

	// base 550 + material 3.2*100, factor 1.0, 15% volume discount
	assert.Equal(t, 550.0, result.BasePrice)
	assert.Equal(t, 320.0, result.MaterialCost)
	assert.Equal(t, 1.0, result.ComplexityFactor)
	assert.Equal(t, 0.15, result.QuantityDiscount)
	assert.Equal(t, 740.0, result.Quote)
	assert.Equal(t, "14 business days", result.LeadTime)
	assert.Equal(t, "Medium", result.Complexity)
	assert.Equal(t, CalculatedByFallback, result.CalculatedBy)
	assert.Equal(t, FallbackWarning, result.Warning)
}

func TestEstimate_DefaultsForUnknownInputs(t *testing.T) {
	result := Estimate(QuoteRequest{
		IndustryID: "underwater-basket-weaving",
		Material:   "unobtainium",
		Quantity:   1,
		Complexity: "extreme",
	})

	// default base 400, default rate 5.0, unknown complexity factor 1.0
	assert.Equal(t, 400.0, result.BasePrice)
	assert.Equal(t, 5.0, result.MaterialCost)
	assert.Equal(t, 1.0, result.ComplexityFactor)
	assert.Equal(t, 0.0, result.QuantityDiscount)
	assert.Equal(t, 405.0, result.Quote)
	assert.Equal(t, "Extreme", result.Complexity)
}

func TestEstimate_QuantityNormalization(t *testing.T) {
	zero := Estimate(QuoteRequest{IndustryID: "cnc-machining", Material: "steel", Quantity: 0})
	one := Estimate(QuoteRequest{IndustryID: "cnc-machining", Material: "steel", Quantity: 1})
	negative := Estimate(QuoteRequest{IndustryID: "cnc-machining", Material: "steel", Quantity: -5})

	assert.Equal(t, one.Quote, zero.Quote)
	assert.Equal(t, one.Quote, negative.Quote)
	assert.Greater(t, one.Quote, 0.0)
}

func TestEstimate_EmptyComplexityDefaultsToMedium(t *testing.T) {
	result := Estimate(QuoteRequest{IndustryID: "sheet-metal", Material: "steel", Quantity: 5})

	assert.Equal(t, "Medium", result.Complexity)
	assert.Equal(t, 1.0, result.ComplexityFactor)
	assert.Equal(t, "14 business days", result.LeadTime)
}

func TestEstimate_CaseInsensitiveInputs(t *testing.T) {
	upper := Estimate(QuoteRequest{IndustryID: "CNC-Machining", Material: "ALUMINUM", Quantity: 10, Complexity: "HIGH"})
	lower := Estimate(QuoteRequest{IndustryID: "cnc-machining", Material: "aluminum", Quantity: 10, Complexity: "high"})

	assert.Equal(t, lower, upper)
}

// ==========================
// Discount tiers
// ==========================

func TestQuantityDiscount_Tiers(t *testing.T) {
	tests := []struct {
		quantity int
		discount float64
	}{
		{1, 0},
		{9, 0},
		{10, 0.05},
		{49, 0.05},
		{50, 0.1},
		{99, 0.1},
		{100, 0.15},
		{499, 0.15},
		{500, 0.2},
		{999, 0.2},
		{1000, 0.25},
		{50000, 0.25},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.discount, quantityDiscount(tt.quantity), "quantity %d", tt.quantity)
	}
}

func TestQuantityDiscount_MonotonicInQuantity(t *testing.T) {
	prev := -1.0
	for quantity := 1; quantity <= 2000; quantity++ {
		discount := quantityDiscount(quantity)
		assert.GreaterOrEqual(t, discount, prev, "quantity %d", quantity)
		assert.GreaterOrEqual(t, discount, 0.0)
		assert.Less(t, discount, 1.0)
		prev = discount
	}
}

// ==========================
// Lead time
// ==========================

func TestLeadTime_ByComplexity(t *testing.T) {
	assert.Equal(t, "21 business days", leadTime("high"))
	assert.Equal(t, "14 business days", leadTime("medium"))
	assert.Equal(t, "7 business days", leadTime("low"))
	assert.Equal(t, "7 business days", leadTime("unknown"))
}
