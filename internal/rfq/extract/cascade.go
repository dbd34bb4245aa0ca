// internal/rfq/extract/cascade.go
package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	stderrors "gendra-backend/internal/common/errors"
	"gendra-backend/internal/common/logger"
	"gendra-backend/internal/common/metrics"
	"gendra-backend/internal/rfq"
	"gendra-backend/internal/telemetry"
)

// truncationMarker is appended when input text exceeds the size budget.
const truncationMarker = "\n... [truncated]"

// Handler runs the extraction cascade: an ordered list of strategies tried
// with one shared prompt until one produces a usable record. Exhausting the
// list yields the sentinel record, not an error.
type Handler struct {
	config     *Config
	strategies []Strategy
	sink       telemetry.Sink
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler wires the default primary-then-fallback strategy order.
func NewHandler(cfg *Config, log logger.Logger, sink telemetry.Sink) *Handler {
	strategies := []Strategy{
		NewChatCompletionStrategy(cfg.PrimaryModel, cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		NewChatCompletionStrategy(cfg.FallbackModel, cfg.BaseURL, cfg.APIKey, cfg.Timeout),
	}
	return NewHandlerWithStrategies(cfg, log, sink, strategies)
}

// NewHandlerWithStrategies accepts an explicit strategy order.
func NewHandlerWithStrategies(cfg *Config, log logger.Logger, sink telemetry.Sink, strategies []Strategy) *Handler {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Handler{
		config:     cfg,
		strategies: strategies,
		sink:       sink,
		logger: log.WithFields(map[string]interface{}{
			"component": "extraction-cascade",
		}),
		now: time.Now,
	}
}

// Extract parses raw text into a structured RFQ. It returns an error only for
// boundary conditions (missing API key, too-short input); upstream failures
// degrade to the sentinel record.
func (h *Handler) Extract(ctx context.Context, input *Input) (*Result, error) {
	if h.config.APIKey == "" {
		return nil, stderrors.NewMissingAPIKeyError()
	}

	text := strings.TrimSpace(input.Text)
	if len(text) < h.config.MinTextLength {
		return nil, stderrors.NewTextTooShortError(len(text), h.config.MinTextLength)
	}

	if h.config.MaxTextBytes > 0 && len(text) > h.config.MaxTextBytes {
		h.logger.Warn("input text truncated", map[string]interface{}{
			"originalBytes": len(text),
			"maxBytes":      h.config.MaxTextBytes,
		})
		text = text[:h.config.MaxTextBytes] + truncationMarker
	}

	normalized := *input
	normalized.Text = text
	prompt := BuildPrompt(&normalized)

	started := h.now()
	for _, strategy := range h.strategies {
		result, ok := h.attempt(ctx, strategy, prompt, &normalized)
		if ok {
			metrics.ExtractionDuration.WithLabelValues(strategy.Name()).
				Observe(h.now().Sub(started).Seconds())
			return result, nil
		}
	}

	metrics.ExtractionFallbacks.WithLabelValues("all_strategies_exhausted").Inc()
	h.logger.Error("all extraction strategies exhausted", map[string]interface{}{
		"strategies": len(h.strategies),
		"textLength": len(text),
	})

	rec := rfq.DefaultRFQ()
	h.stamp(&rec, "none")
	return &Result{
		Record:         rec,
		Classification: rfq.ClassificationReject,
		ModelUsed:      "none",
	}, nil
}

// attempt runs one strategy and normalizes its output. A false return means
// the cascade should move on to the next strategy.
func (h *Handler) attempt(ctx context.Context, strategy Strategy, prompt string, input *Input) (*Result, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	content, err := strategy.Attempt(attemptCtx, prompt)
	if err != nil {
		h.recordFailure(ctx, strategy, input, err)
		return nil, false
	}

	schemaIssues := h.checkSchema(content)

	candidate, err := parseCandidate(content)
	if err != nil {
		h.recordFailure(ctx, strategy, input, stderrors.NewMalformedModelOutputError(err.Error()))
		return nil, false
	}

	rec, issues := rfq.Normalize(candidate)
	issues = append(schemaIssues, issues...)

	if rec.IsSentinel() {
		h.recordFailure(ctx, strategy, input,
			stderrors.NewMalformedModelOutputError("candidate contains only default values"))
		return nil, false
	}

	h.stamp(&rec, strategy.Name())
	classification := rfq.Classify(&rec, h.config.ConfidenceThreshold)

	metrics.ExtractionAttempts.WithLabelValues(strategy.Name(), "success").Inc()
	h.logger.Info("extraction succeeded", map[string]interface{}{
		"model":              strategy.Name(),
		"classification":     string(classification),
		"materialConfidence": rec.MaterialConfidence,
		"industryConfidence": rec.IndustryConfidence,
		"fieldIssues":        len(issues),
	})

	return &Result{
		Record:         rec,
		Classification: classification,
		Issues:         issues,
		ModelUsed:      strategy.Name(),
	}, true
}

func (h *Handler) checkSchema(content string) []rfq.FieldIssue {
	jsonStr, ok := extractJSONObject(content)
	if !ok {
		return nil
	}
	issues, err := rfq.ValidateCandidateJSON(jsonStr)
	if err != nil {
		// Unparseable documents are handled by parseCandidate.
		return nil
	}
	return issues
}

func (h *Handler) stamp(rec *rfq.StructuredRFQ, model string) {
	rec.ModelUsed = model
	rec.ParsingVersion = rfq.ParsingVersion
	rec.Timestamp = h.now().UTC().Format(time.RFC3339)
	rec.IsReviewed = false
}

func (h *Handler) recordFailure(ctx context.Context, strategy Strategy, input *Input, err error) {
	errorType := "EXTRACTION_FAILED"
	switch {
	case errors.Is(err, ErrModelNotFound):
		errorType = "MODEL_NOT_FOUND"
	case errors.Is(err, ErrExtractionTimeout):
		errorType = "EXTRACTION_TIMEOUT"
	default:
		var stdErr *stderrors.StandardError
		if errors.As(err, &stdErr) {
			errorType = string(stdErr.Code)
		}
	}

	metrics.ExtractionAttempts.WithLabelValues(strategy.Name(), "failure").Inc()
	h.logger.Warn("extraction attempt failed", map[string]interface{}{
		"model":     strategy.Name(),
		"errorType": errorType,
		"error":     err.Error(),
	})

	userID := ""
	if input.UserContext != nil {
		userID = input.UserContext.UserID
	}
	rec := telemetry.NewRecord(errorType, err.Error(), userID, input.Text, map[string]interface{}{
		"model": strategy.Name(),
	})
	if werr := h.sink.Write(ctx, rec); werr != nil {
		h.logger.Warn("failed to write telemetry record", map[string]interface{}{
			"error": werr.Error(),
		})
	}
}
