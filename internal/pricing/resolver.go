// internal/pricing/resolver.go
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	stderrors "gendra-backend/internal/common/errors"
	commonhttp "gendra-backend/internal/common/http"
	"gendra-backend/internal/common/logger"
	"gendra-backend/internal/common/metrics"
	"gendra-backend/internal/telemetry"
)

// Resolver produces a quote for a request. The remote backend gets one
// timeout-bounded attempt with no retries; any failure degrades to the local
// estimate so resolution itself never fails.
type Resolver struct {
	backendURL string
	timeout    time.Duration
	client     *commonhttp.Client
	sink       telemetry.Sink
	logger     logger.Logger
}

// NewResolver builds a resolver. An empty backendURL disables the remote
// attempt entirely and every quote is estimated locally.
func NewResolver(backendURL string, timeout time.Duration, log logger.Logger, sink telemetry.Sink) *Resolver {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Resolver{
		backendURL: backendURL,
		timeout:    timeout,
		client:     commonhttp.NewClient(timeout),
		sink:       sink,
		logger: log.WithFields(map[string]interface{}{
			"component": "quote-resolver",
		}),
	}
}

// Resolve returns a quote for the request, tagged with its provenance.
func (r *Resolver) Resolve(ctx context.Context, req QuoteRequest) QuoteResult {
	started := time.Now()

	if r.backendURL != "" {
		result, err := r.tryBackend(ctx, req)
		if err == nil {
			metrics.QuoteResolutions.WithLabelValues(CalculatedByBackend).Inc()
			metrics.QuoteResolutionDuration.WithLabelValues(CalculatedByBackend).
				Observe(time.Since(started).Seconds())
			return *result
		}
		r.recordFallback(ctx, req, err, time.Since(started))
	}

	result := Estimate(req)
	metrics.QuoteResolutions.WithLabelValues(CalculatedByFallback).Inc()
	metrics.QuoteResolutionDuration.WithLabelValues(CalculatedByFallback).
		Observe(time.Since(started).Seconds())
	return result
}

func (r *Resolver) tryBackend(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.PostJSON(attemptCtx, r.backendURL, req)
	if attemptCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return nil, stderrors.NewPricingTimeoutError()
	}
	if err != nil {
		return nil, stderrors.NewPricingUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, stderrors.NewPricingUnavailableError(
			fmt.Errorf("backend returned status %d", resp.StatusCode))
	}

	var result QuoteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, stderrors.NewPricingUnavailableError(
			errors.New("backend response is not valid JSON"))
	}

	if result.Quote <= 0 || math.IsNaN(result.Quote) || math.IsInf(result.Quote, 0) {
		return nil, stderrors.NewPricingUnavailableError(
			errors.New("backend response has no usable quote"))
	}

	result.CalculatedBy = CalculatedByBackend
	result.Warning = ""
	return &result, nil
}

func (r *Resolver) recordFallback(ctx context.Context, req QuoteRequest, err error, attemptLatency time.Duration) {
	errorType := string(stderrors.ErrCodePricingUnavailable)
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		errorType = string(stdErr.Code)
	}

	r.logger.Warn("quote backend unavailable, using local estimate", map[string]interface{}{
		"errorType":  errorType,
		"error":      err.Error(),
		"industryId": req.IndustryID,
	})

	rec := telemetry.NewRecord(errorType, err.Error(), "", "", map[string]interface{}{
		"industryId":       req.IndustryID,
		"backendUrl":       r.backendURL,
		"attemptLatencyMs": attemptLatency.Milliseconds(),
	})
	if werr := r.sink.Write(ctx, rec); werr != nil {
		r.logger.Warn("failed to write telemetry record", map[string]interface{}{
			"error": werr.Error(),
		})
	}
}
