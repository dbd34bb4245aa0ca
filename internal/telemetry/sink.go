// Package telemetry records extraction and pricing failures for later
// analysis. Writes are best effort and never fail the request that
// produced them.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gendra-backend/internal/common/database"
	"gendra-backend/internal/common/logger"
)

const (
	// maxTextSample bounds the raw-text excerpt attached to a record.
	maxTextSample = 200
	// maxStoredSample bounds the excerpt at the storage layer.
	maxStoredSample = 500
)

// Record is a single failure observation.
type Record struct {
	ErrorType    string                 `json:"errorType"`
	ErrorMessage string                 `json:"errorMessage"`
	UserID       string                 `json:"userId,omitempty"`
	TextSample   string                 `json:"textSample,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// NewRecord builds a Record, truncating the text sample to its budget.
func NewRecord(errorType, errorMessage, userID, text string, metadata map[string]interface{}) Record {
	if len(text) > maxTextSample {
		text = text[:maxTextSample]
	}
	return Record{
		ErrorType:    errorType,
		ErrorMessage: errorMessage,
		UserID:       userID,
		TextSample:   text,
		Metadata:     metadata,
		Timestamp:    time.Now().UTC(),
	}
}

// Sink receives failure records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) Write(ctx context.Context, rec Record) error { return nil }

// ElasticsearchSink indexes records into a dedicated parsing-errors index.
type ElasticsearchSink struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewElasticsearchSink(es *database.ElasticsearchClient, index string, log logger.Logger) *ElasticsearchSink {
	return &ElasticsearchSink{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "telemetry"}),
	}
}

func (s *ElasticsearchSink) Write(ctx context.Context, rec Record) error {
	if len(rec.TextSample) > maxStoredSample {
		rec.TextSample = rec.TextSample[:maxStoredSample]
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal telemetry record: %w", err)
	}

	if err := s.es.IndexDocument(ctx, s.index, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("index telemetry record: %w", err)
	}

	s.logger.Debug("telemetry record indexed", map[string]interface{}{
		"errorType": rec.ErrorType,
		"index":     s.index,
	})
	return nil
}

// LoggingSink writes records to the application log. Used when no
// Elasticsearch cluster is configured.
type LoggingSink struct {
	logger logger.Logger
}

func NewLoggingSink(log logger.Logger) *LoggingSink {
	return &LoggingSink{logger: log}
}

func (s *LoggingSink) Write(ctx context.Context, rec Record) error {
	s.logger.Warn("telemetry record", map[string]interface{}{
		"errorType":    rec.ErrorType,
		"errorMessage": rec.ErrorMessage,
		"userId":       rec.UserID,
		"metadata":     rec.Metadata,
	})
	return nil
}
