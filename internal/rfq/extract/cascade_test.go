// internal/rfq/extract/cascade_test.go
package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	stderrors "gendra-backend/internal/common/errors"
	"gendra-backend/internal/common/logger"
	"gendra-backend/internal/rfq"
	"gendra-backend/internal/telemetry"
)

// ==========================
// Test Helpers
// ==========================

// captureSink records telemetry writes for assertions.
type captureSink struct {
	mu      sync.Mutex
	records []telemetry.Record
}

func (s *captureSink) Write(ctx context.Context, rec telemetry.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *captureSink) all() []telemetry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telemetry.Record(nil), s.records...)
}

func createTestConfig(baseURL string) *Config {
	return &Config{
		BaseURL:             baseURL,
		APIKey:              "test-key",
		PrimaryModel:        "llama-3.3-70b-versatile",
		FallbackModel:       "qwen-qwq-32b",
		Timeout:             5 * time.Second,
		MinTextLength:       10,
		MaxTextBytes:        100 * 1024,
		ConfidenceThreshold: 0.6,
	}
}

func chatCompletionBody(content string) string {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

const goodCandidate = `{
  "material": "6061 Aluminum",
  "material_confidence": 0.95,
  "quantity": 50,
  "dimensions": {"length": 76.2, "width": 50.8, "height": 25.4},
  "complexity": "low",
  "deadline": "2024-05-15",
  "industry": "metal fabrication",
  "industry_confidence": 0.92,
  "finish": null,
  "tolerance": null
}`

const sampleRFQText = "Need 50 brackets made from 6061 aluminum, 3 x 2 x 1 inches, due May 15."

// ==========================
// Core Cascade Tests
// ==========================

func TestHandler_Extract_PrimarySuccess(t *testing.T) {
	var requestedModels []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		requestedModels = append(requestedModels, reqBody["model"].(string))
		assert.Equal(t, 0.1, reqBody["temperature"])
		assert.Equal(t, float64(1024), reqBody["max_completion_tokens"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionBody(goodCandidate)))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), logger.NewNoOpLogger(), nil)

	result, err := handler.Extract(context.Background(), &Input{Text: sampleRFQText})

	assert.NoError(t, err)
	assert.Equal(t, []string{"llama-3.3-70b-versatile"}, requestedModels)
	assert.Equal(t, "llama-3.3-70b-versatile", result.ModelUsed)
	assert.Equal(t, rfq.ClassificationAccept, result.Classification)
	assert.Equal(t, "6061 Aluminum", result.Record.Material)
	assert.Equal(t, 50, result.Record.Quantity)
	assert.Equal(t, "metal fabrication", result.Record.Industry)
	assert.Equal(t, rfq.ParsingVersion, result.Record.ParsingVersion)
	assert.False(t, result.Record.IsReviewed)
	assert.NotEmpty(t, result.Record.Timestamp)
}

func TestHandler_Extract_ModelNotFoundCascades(t *testing.T) {
	var prompts []string
	var models []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&reqBody)
		models = append(models, reqBody.Model)
		prompts = append(prompts, reqBody.Messages[1].Content)

		if reqBody.Model == "llama-3.3-70b-versatile" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"code": "model_not_found", "message": "model does not exist"}}`))
			return
		}
		w.Write([]byte(chatCompletionBody(goodCandidate)))
	}))
	defer server.Close()

	sink := &captureSink{}
	handler := NewHandler(createTestConfig(server.URL), logger.NewNoOpLogger(), sink)

	result, err := handler.Extract(context.Background(), &Input{Text: sampleRFQText})

	assert.NoError(t, err)
	assert.Equal(t, []string{"llama-3.3-70b-versatile", "qwen-qwq-32b"}, models)
	assert.Equal(t, "qwen-qwq-32b", result.ModelUsed)

	// The fallback strategy reuses the exact same prompt.
	assert.Len(t, prompts, 2)
	assert.Equal(t, prompts[0], prompts[1])

	records := sink.all()
	assert.Len(t, records, 1)
	assert.Equal(t, "MODEL_NOT_FOUND", records[0].ErrorType)
}

func TestHandler_Extract_CleanupPassParsesSloppyJSON(t *testing.T) {
	sloppy := `Here is the result:
{
  'material': '304 Stainless Steel',
  'quantity': 25,
  'dimensions': {'length': 500, 'width': 300, 'height': 200,},
  'complexity': 'medium',
  'industry': 'sheet metal',
  'material_confidence': 0.9,
  'industry_confidence': 0.85,
}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatCompletionBody(sloppy)))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), logger.NewNoOpLogger(), nil)

	result, err := handler.Extract(context.Background(), &Input{Text: sampleRFQText})

	assert.NoError(t, err)
	assert.Equal(t, "304 Stainless Steel", result.Record.Material)
	assert.Equal(t, 25, result.Record.Quantity)
	assert.Equal(t, "sheet metal", result.Record.Industry)
	assert.Equal(t, rfq.ClassificationAccept, result.Classification)
}

func TestHandler_Extract_AllStrategiesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := &captureSink{}
	handler := NewHandler(createTestConfig(server.URL), logger.NewNoOpLogger(), sink)

	result, err := handler.Extract(context.Background(), &Input{
		Text:        sampleRFQText,
		UserContext: &UserContext{UserID: "user-42"},
	})

	assert.NoError(t, err)
	assert.True(t, result.Record.IsSentinel())
	assert.Equal(t, rfq.ClassificationReject, result.Classification)
	assert.Equal(t, "none", result.ModelUsed)

	// One telemetry record per failed attempt, tagged with the user.
	records := sink.all()
	assert.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "user-42", rec.UserID)
		assert.NotEmpty(t, rec.TextSample)
		assert.LessOrEqual(t, len(rec.TextSample), 200)
	}
}

func TestHandler_Extract_SentinelCandidateCascades(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Parseable JSON that carries only default values.
			w.Write([]byte(chatCompletionBody(`{"material": "", "quantity": 0, "dimensions": {"length": 0, "width": 0, "height": 0}, "industry": ""}`)))
			return
		}
		w.Write([]byte(chatCompletionBody(goodCandidate)))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), logger.NewNoOpLogger(), nil)

	result, err := handler.Extract(context.Background(), &Input{Text: sampleRFQText})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "qwen-qwq-32b", result.ModelUsed)
	assert.False(t, result.Record.IsSentinel())
}

// ==========================
// Boundary Tests
// ==========================

func TestHandler_Extract_MissingAPIKey(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	cfg := createTestConfig(server.URL)
	cfg.APIKey = ""
	handler := NewHandler(cfg, logger.NewNoOpLogger(), nil)

	result, err := handler.Extract(context.Background(), &Input{Text: sampleRFQText})

	assert.Nil(t, result)
	var stdErr *stderrors.StandardError
	assert.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeMissingAPIKey, stdErr.Code)
	assert.Equal(t, 0, calls)
}

func TestHandler_Extract_ShortTextRejectedWithoutUpstreamCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), logger.NewNoOpLogger(), nil)

	result, err := handler.Extract(context.Background(), &Input{Text: "too short"})

	assert.Nil(t, result)
	var stdErr *stderrors.StandardError
	assert.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeValidationFailed, stdErr.Code)
	assert.Equal(t, 0, calls)
}

func TestHandler_Extract_OversizedTextTruncated(t *testing.T) {
	var promptLen int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&reqBody)
		promptLen = len(reqBody.Messages[1].Content)
		assert.Contains(t, reqBody.Messages[1].Content, truncationMarker)
		w.Write([]byte(chatCompletionBody(goodCandidate)))
	}))
	defer server.Close()

	cfg := createTestConfig(server.URL)
	cfg.MaxTextBytes = 1024
	handler := NewHandler(cfg, logger.NewNoOpLogger(), nil)

	huge := make([]byte, 8192)
	for i := range huge {
		huge[i] = 'a'
	}

	_, err := handler.Extract(context.Background(), &Input{Text: string(huge)})

	assert.NoError(t, err)
	// Prompt carries instructions plus examples, but the input portion is capped.
	assert.Less(t, promptLen, 8192+len(instructionPrompt))
}

func TestHandler_Extract_TimeoutIsBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	cfg := createTestConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	sink := &captureSink{}
	handler := NewHandler(cfg, logger.NewNoOpLogger(), sink)

	start := time.Now()
	result, err := handler.Extract(context.Background(), &Input{Text: sampleRFQText})
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.True(t, result.Record.IsSentinel())
	// Two attempts at 50ms each plus slack.
	assert.Less(t, elapsed, 400*time.Millisecond)

	records := sink.all()
	assert.Len(t, records, 2)
	assert.Equal(t, "EXTRACTION_TIMEOUT", records[0].ErrorType)
}

// ==========================
// Prompt Tests
// ==========================

func TestBuildPrompt(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		prompt := BuildPrompt(&Input{Text: sampleRFQText})
		assert.Contains(t, prompt, sampleRFQText)
		assert.Contains(t, prompt, "metal fabrication")
		assert.Contains(t, prompt, "Input RFQ:")
	})

	t.Run("file context is included", func(t *testing.T) {
		prompt := BuildPrompt(&Input{
			Text:        sampleRFQText,
			FileContext: &FileContext{Filename: "rfq.xlsx", FileType: "xlsx", SheetName: "Q3"},
		})
		assert.Contains(t, prompt, "Filename: rfq.xlsx")
		assert.Contains(t, prompt, "Sheet name: Q3")
	})

	t.Run("preferred industry hint only when valid", func(t *testing.T) {
		valid := BuildPrompt(&Input{
			Text:        sampleRFQText,
			UserContext: &UserContext{PreferredIndustry: "cnc machining"},
		})
		assert.Contains(t, valid, `"cnc machining" industry`)

		invalid := BuildPrompt(&Input{
			Text:        sampleRFQText,
			UserContext: &UserContext{PreferredIndustry: "aerospace"},
		})
		assert.NotContains(t, invalid, "aerospace")
	})
}

// ==========================
// JSON Scanning Tests
// ==========================

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, candidate map[string]interface{})
	}{
		{
			name:    "clean json",
			content: `{"material": "steel", "quantity": 5}`,
			check: func(t *testing.T, candidate map[string]interface{}) {
				assert.Equal(t, "steel", candidate["material"])
			},
		},
		{
			name:    "json wrapped in prose",
			content: "Sure! Here is the extraction:\n{\"material\": \"brass\"}\nLet me know if you need more.",
			check: func(t *testing.T, candidate map[string]interface{}) {
				assert.Equal(t, "brass", candidate["material"])
			},
		},
		{
			name:    "single quotes and trailing comma",
			content: `{'material': 'copper', 'quantity': 3,}`,
			check: func(t *testing.T, candidate map[string]interface{}) {
				assert.Equal(t, "copper", candidate["material"])
				assert.Equal(t, float64(3), candidate["quantity"])
			},
		},
		{
			name:    "unquoted keys",
			content: `{material: "titanium", quantity: 7}`,
			check: func(t *testing.T, candidate map[string]interface{}) {
				assert.Equal(t, "titanium", candidate["material"])
			},
		},
		{
			name:    "no json object at all",
			content: "I could not find any RFQ information in this text.",
			wantErr: true,
		},
		{
			name:    "unrecoverable json",
			content: `{"material": [unclosed`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, err := parseCandidate(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.check != nil {
				tt.check(t, candidate)
			}
		})
	}
}
