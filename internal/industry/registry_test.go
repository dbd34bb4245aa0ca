// internal/industry/registry_test.go
package industry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Lookup
// ==========================

func TestGet(t *testing.T) {
	cfg, ok := Get("cnc-machining")
	require.True(t, ok)
	assert.Equal(t, "CNC Machining", cfg.Name)
	assert.Equal(t, 550.0, cfg.BasePrice)
	assert.NotEmpty(t, cfg.Materials)
	assert.NotEmpty(t, cfg.FormFields)

	_, ok = Get("underwater-basket-weaving")
	assert.False(t, ok)
}

func TestGet_NormalizesID(t *testing.T) {
	upper, ok := Get("  CNC-Machining ")
	require.True(t, ok)
	assert.Equal(t, "cnc-machining", upper.ID)
}

func TestList_SortedAndActive(t *testing.T) {
	configs := List()
	require.NotEmpty(t, configs)

	for i, cfg := range configs {
		assert.True(t, cfg.IsActive)
		if i > 0 {
			assert.Less(t, configs[i-1].ID, cfg.ID)
		}
	}
}

// ==========================
// Base prices
// ==========================

func TestBasePrice(t *testing.T) {
	tests := []struct {
		industryID string
		expected   float64
	}{
		{"aerospace", 1200},
		{"medical", 900},
		{"cnc-machining", 550},
		{"3d-printing", 250},
		{"CNC-MACHINING", 550},
		{"unknown-industry", 400},
		{"", 400},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, BasePrice(tt.industryID), "industry %q", tt.industryID)
	}
}

// ==========================
// Invariants
// ==========================

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate())
}

func TestRegistryMaterialRatesArePositive(t *testing.T) {
	for _, cfg := range List() {
		for _, m := range cfg.Materials {
			assert.Greater(t, m.Rate, 0.0, "%s/%s", cfg.ID, m.ID)
		}
	}
}
