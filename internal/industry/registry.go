// Package industry is the static registry of manufacturing industries:
// quote form configuration, material rates, complexity levels, and the
// per-industry base prices used by quote estimation.
package industry

import (
	"fmt"
	"sort"
	"strings"
)

// FieldType enumerates the quote form field kinds.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldTextarea FieldType = "textarea"
)

// SelectOption is one choice of a select field.
type SelectOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FormField describes one input of an industry quote form.
type FormField struct {
	ID           string         `json:"id"`
	Label        string         `json:"label"`
	Type         FieldType      `json:"type"`
	Required     bool           `json:"required,omitempty"`
	DefaultValue interface{}    `json:"defaultValue,omitempty"`
	Min          float64        `json:"min,omitempty"`
	Step         float64        `json:"step,omitempty"`
	Unit         string         `json:"unit,omitempty"`
	Options      []SelectOption `json:"options,omitempty"`
}

// Material is a priceable material with its per-unit rate.
type Material struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// ComplexityLevel is a manufacturing complexity tier.
type ComplexityLevel struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Factor      float64 `json:"factor"`
	Description string  `json:"description,omitempty"`
}

// Config is the full configuration of one industry.
type Config struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	BasePrice        float64           `json:"basePrice"`
	UnitLabel        string            `json:"unitLabel,omitempty"`
	FormFields       []FormField       `json:"formFields"`
	Materials        []Material        `json:"materials"`
	ComplexityLevels []ComplexityLevel `json:"complexityLevels"`
	IsActive         bool              `json:"isActive"`
}

// DefaultBasePriceKey is the catch-all entry for unknown industry IDs.
const DefaultBasePriceKey = "default"

// basePrices maps industry IDs to quote base prices. IDs beyond the
// registered form industries are kept so estimation still covers them.
var basePrices = map[string]float64{
	"aerospace":            1200,
	"medical":              900,
	"automotive":           500,
	"consumer-electronics": 300,
	"metal-fabrication":    450,
	"injection-molding":    350,
	"cnc-machining":        550,
	"sheet-metal":          400,
	"3d-printing":          250,
	"electronics-assembly": 600,
	DefaultBasePriceKey:    400,
}

// BasePrice returns the quote base price for an industry ID, falling back to
// the default entry for unknown IDs.
func BasePrice(industryID string) float64 {
	if price, ok := basePrices[strings.ToLower(strings.TrimSpace(industryID))]; ok {
		return price
	}
	return basePrices[DefaultBasePriceKey]
}

var standardComplexityLevels = []ComplexityLevel{
	{ID: "low", Name: "Low", Factor: 0.8, Description: "Simple geometry, few features"},
	{ID: "medium", Name: "Medium", Factor: 1.0, Description: "Multiple features, moderate complexity"},
	{ID: "high", Name: "High", Factor: 1.5, Description: "Complex features, difficult manufacturing"},
}

func standardFormFields(materials []Material, defaultMaterial string) []FormField {
	options := make([]SelectOption, 0, len(materials))
	for _, m := range materials {
		options = append(options, SelectOption{ID: m.ID, Label: m.Name})
	}

	return []FormField{
		{ID: "material", Label: "Material", Type: FieldSelect, Required: true, DefaultValue: defaultMaterial, Options: options},
		{ID: "quantity", Label: "Quantity", Type: FieldNumber, Required: true, DefaultValue: 1, Min: 1},
		{ID: "length", Label: "Length (mm)", Type: FieldNumber, Required: true, Min: 0, Step: 0.1, Unit: "mm"},
		{ID: "width", Label: "Width (mm)", Type: FieldNumber, Required: true, Min: 0, Step: 0.1, Unit: "mm"},
		{ID: "height", Label: "Height (mm)", Type: FieldNumber, Required: true, Min: 0, Step: 0.1, Unit: "mm"},
		{ID: "complexity", Label: "Complexity", Type: FieldSelect, Required: true, DefaultValue: "medium",
			Options: []SelectOption{
				{ID: "low", Label: "Low - Simple geometry, few features"},
				{ID: "medium", Label: "Medium - Multiple features, moderate complexity"},
				{ID: "high", Label: "High - Complex geometry, many features"},
			}},
		{ID: "deadline", Label: "Deadline", Type: FieldDate},
	}
}

var cncMaterials = []Material{
	{ID: "aluminum", Name: "Aluminum", Rate: 3.2},
	{ID: "steel", Name: "Steel", Rate: 2.5},
	{ID: "stainless-steel", Name: "Stainless Steel", Rate: 5.5},
	{ID: "titanium", Name: "Titanium", Rate: 15.0},
	{ID: "brass", Name: "Brass", Rate: 6.0},
}

var sheetMetalMaterials = []Material{
	{ID: "steel", Name: "Steel", Rate: 2.5},
	{ID: "stainless-steel", Name: "Stainless Steel", Rate: 5.5},
	{ID: "aluminum", Name: "Aluminum", Rate: 3.2},
	{ID: "copper", Name: "Copper", Rate: 7.2},
}

var moldingMaterials = []Material{
	{ID: "abs", Name: "ABS", Rate: 2.0},
	{ID: "pla", Name: "PLA", Rate: 1.5},
	{ID: "plastic", Name: "Generic Plastic", Rate: 1.8},
}

var fabricationMaterials = []Material{
	{ID: "steel", Name: "Steel", Rate: 2.5},
	{ID: "aluminum", Name: "Aluminum", Rate: 3.2},
	{ID: "brass", Name: "Brass", Rate: 6.0},
	{ID: "carbon-fiber", Name: "Carbon Fiber", Rate: 25.0},
}

var assemblyMaterials = []Material{
	{ID: "copper", Name: "Copper", Rate: 7.2},
	{ID: "plastic", Name: "Generic Plastic", Rate: 1.8},
}

var registry = map[string]Config{
	"cnc-machining": {
		ID:               "cnc-machining",
		Name:             "CNC Machining",
		Description:      "Computer-controlled precision machining",
		BasePrice:        basePrices["cnc-machining"],
		UnitLabel:        "parts",
		FormFields:       standardFormFields(cncMaterials, "aluminum"),
		Materials:        cncMaterials,
		ComplexityLevels: standardComplexityLevels,
		IsActive:         true,
	},
	"injection-molding": {
		ID:               "injection-molding",
		Name:             "Injection Molding",
		Description:      "High-precision plastic parts and components",
		BasePrice:        basePrices["injection-molding"],
		UnitLabel:        "parts",
		FormFields:       standardFormFields(moldingMaterials, "abs"),
		Materials:        moldingMaterials,
		ComplexityLevels: standardComplexityLevels,
		IsActive:         true,
	},
	"metal-fabrication": {
		ID:               "metal-fabrication",
		Name:             "Metal Fabrication",
		Description:      "Cutting, bending, and assembling metal structures",
		BasePrice:        basePrices["metal-fabrication"],
		UnitLabel:        "assemblies",
		FormFields:       standardFormFields(fabricationMaterials, "steel"),
		Materials:        fabricationMaterials,
		ComplexityLevels: standardComplexityLevels,
		IsActive:         true,
	},
	"sheet-metal": {
		ID:               "sheet-metal",
		Name:             "Sheet Metal",
		Description:      "Thin metal sheet forming, punching, and enclosures",
		BasePrice:        basePrices["sheet-metal"],
		UnitLabel:        "parts",
		FormFields:       standardFormFields(sheetMetalMaterials, "steel"),
		Materials:        sheetMetalMaterials,
		ComplexityLevels: standardComplexityLevels,
		IsActive:         true,
	},
	"electronics-assembly": {
		ID:               "electronics-assembly",
		Name:             "Electronics Assembly",
		Description:      "PCB population, soldering, and device assembly",
		BasePrice:        basePrices["electronics-assembly"],
		UnitLabel:        "units",
		FormFields:       standardFormFields(assemblyMaterials, "copper"),
		Materials:        assemblyMaterials,
		ComplexityLevels: standardComplexityLevels,
		IsActive:         true,
	},
}

// Get looks up an industry configuration by ID.
func Get(industryID string) (Config, bool) {
	cfg, ok := registry[strings.ToLower(strings.TrimSpace(industryID))]
	return cfg, ok
}

// List returns all active industry configurations ordered by ID.
func List() []Config {
	out := make([]Config, 0, len(registry))
	for _, cfg := range registry {
		if cfg.IsActive {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks registry invariants. Called once at startup so a broken
// entry fails the process instead of a request.
func Validate() error {
	if _, ok := basePrices[DefaultBasePriceKey]; !ok {
		return fmt.Errorf("base price table is missing the %q entry", DefaultBasePriceKey)
	}

	for id, cfg := range registry {
		if id != cfg.ID {
			return fmt.Errorf("industry %q: registry key does not match config ID %q", id, cfg.ID)
		}
		if cfg.BasePrice <= 0 {
			return fmt.Errorf("industry %q: base price must be positive", id)
		}
		if len(cfg.Materials) == 0 {
			return fmt.Errorf("industry %q: no materials configured", id)
		}
		if len(cfg.FormFields) == 0 {
			return fmt.Errorf("industry %q: no form fields configured", id)
		}
		for _, level := range cfg.ComplexityLevels {
			if level.Factor <= 0 {
				return fmt.Errorf("industry %q: complexity %q has non-positive factor", id, level.ID)
			}
		}
	}
	return nil
}
