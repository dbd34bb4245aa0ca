// internal/rfq/extract/config.go
package extract

import (
	"time"

	appconfig "gendra-backend/internal/common/config"
)

// Config holds settings for the extraction cascade.
type Config struct {
	BaseURL       string
	APIKey        string
	PrimaryModel  string
	FallbackModel string
	// Timeout bounds each model attempt, not the whole cascade.
	Timeout             time.Duration
	MinTextLength       int
	MaxTextBytes        int
	ConfidenceThreshold float64
}

// NewConfig maps the application extraction section onto the cascade config.
func NewConfig(cfg appconfig.ExtractionConfig) *Config {
	return &Config{
		BaseURL:             cfg.BaseURL,
		APIKey:              cfg.APIKey,
		PrimaryModel:        cfg.PrimaryModel,
		FallbackModel:       cfg.FallbackModel,
		Timeout:             appconfig.GetDuration(cfg.Timeout),
		MinTextLength:       cfg.MinTextLength,
		MaxTextBytes:        cfg.MaxTextBytes,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	}
}
