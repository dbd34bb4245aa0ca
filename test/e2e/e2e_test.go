// test/e2e/e2e_test.go
//
// End-to-end exercise of the HTTP surface with a stubbed model upstream and
// no remote pricing backend. No external infrastructure is required.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gendra-backend/internal/common/config"
	"gendra-backend/internal/common/logger"
	"gendra-backend/internal/pricing"
	"gendra-backend/internal/rfq/extract"
	"gendra-backend/internal/server"
)

const modelCandidate = `{
	"material": "6061 Aluminum",
	"quantity": 100,
	"dimensions": {"length": 120, "width": 40, "height": 10},
	"complexity": "medium",
	"industry": "cnc machining",
	"material_confidence": 0.92,
	"industry_confidence": 0.88
}`

func newPipelineServer(t *testing.T) *httptest.Server {
	t.Helper()

	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices": [{"message": {"content": %q}}]}`, modelCandidate)
	}))
	t.Cleanup(model.Close)

	cfg := &config.Config{}
	cfg.Server.Address = ":0"
	cfg.Extraction.MinTextLength = 10
	cfg.Extraction.MinUploadLength = 50
	cfg.Extraction.ConfidenceThreshold = 0.6

	extractor := extract.NewHandler(&extract.Config{
		BaseURL:             model.URL,
		APIKey:              "e2e-key",
		PrimaryModel:        "llama-3.3-70b-versatile",
		FallbackModel:       "qwen-qwq-32b",
		Timeout:             5 * time.Second,
		MinTextLength:       10,
		MaxTextBytes:        100 * 1024,
		ConfidenceThreshold: 0.6,
	}, logger.NewNoOpLogger(), nil)

	resolver := pricing.NewResolver("", 5*time.Second, logger.NewNoOpLogger(), nil)

	srv := server.New(cfg, logger.NewNoOpLogger(), server.Deps{
		Extractor: extractor,
		Resolver:  resolver,
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestPipeline_ParseThenQuote(t *testing.T) {
	ts := newPipelineServer(t)

	// Parse free text into a structured RFQ.
	resp, body := postJSON(t, ts.URL+"/api/v1/parse",
		`{"text": "We need 100 CNC machined brackets in 6061 aluminum, 120x40x10mm, medium complexity"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var parsed struct {
		Record struct {
			Material   string `json:"material"`
			Quantity   int    `json:"quantity"`
			Industry   string `json:"industry"`
			Complexity string `json:"complexity"`
		} `json:"record"`
		Classification string `json:"classification"`
		ModelUsed      string `json:"modelUsed"`
	}
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, "6061 Aluminum", parsed.Record.Material)
	assert.Equal(t, 100, parsed.Record.Quantity)
	assert.Equal(t, "cnc machining", parsed.Record.Industry)
	assert.Equal(t, "accept", parsed.Classification)
	assert.Equal(t, "llama-3.3-70b-versatile", parsed.ModelUsed)

	// Submit the parsed fields for a quote. With no remote backend the
	// deterministic local estimate answers.
	resp, body = postJSON(t, ts.URL+"/api/v1/submit-quote",
		`{"industryId": "cnc-machining", "material": "aluminum", "quantity": 100, "complexity": "medium"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var quoted struct {
		Quote struct {
			Quote        float64 `json:"quote"`
			CalculatedBy string  `json:"calculatedBy"`
			Warning      string  `json:"warning"`
		} `json:"quote"`
		QuoteRange struct {
			Low  float64 `json:"low"`
			High float64 `json:"high"`
		} `json:"quoteRange"`
		LeadEstimate string `json:"leadEstimate"`
	}
	require.NoError(t, json.Unmarshal(body, &quoted))
	assert.Equal(t, 740.0, quoted.Quote.Quote)
	assert.Equal(t, "fallback", quoted.Quote.CalculatedBy)
	assert.NotEmpty(t, quoted.Quote.Warning)
	assert.Equal(t, 666.0, quoted.QuoteRange.Low)
	assert.Equal(t, 814.0, quoted.QuoteRange.High)
	assert.Equal(t, "10-14 business days", quoted.LeadEstimate)
}

func TestPipeline_IndustryConfiguration(t *testing.T) {
	ts := newPipelineServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/industries")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var industries struct {
		Industries []struct {
			ID        string  `json:"id"`
			BasePrice float64 `json:"basePrice"`
		} `json:"industries"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&industries))
	require.NotEmpty(t, industries.Industries)

	// Each listed industry must have a fetchable quote config.
	for _, ind := range industries.Industries {
		cfgResp, err := http.Get(ts.URL + "/api/v1/quote-config/" + ind.ID)
		require.NoError(t, err)
		cfgResp.Body.Close()
		assert.Equal(t, http.StatusOK, cfgResp.StatusCode, ind.ID)
	}
}

func TestPipeline_HealthAndMetrics(t *testing.T) {
	ts := newPipelineServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
