// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_extraction_attempts_total",
			Help: "Total number of model extraction attempts",
		},
		[]string{"model", "outcome"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rfq_extraction_duration_seconds",
			Help: "Duration of extraction cascade runs in seconds",
		},
		[]string{"strategy"},
	)

	ExtractionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_extraction_fallbacks_total",
			Help: "Total number of degradations to default RFQ values",
		},
		[]string{"reason"},
	)

	QuoteResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_quote_resolutions_total",
			Help: "Total number of quote resolutions by source",
		},
		[]string{"source"},
	)

	QuoteResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rfq_quote_resolution_duration_seconds",
			Help: "Duration of quote resolution in seconds",
		},
		[]string{"source"},
	)

	RequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rfq_requests_in_flight",
			Help: "Number of pipeline requests currently being processed",
		},
		[]string{"endpoint"},
	)
)
