// internal/rfq/extract/strategy.go
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	commonhttp "gendra-backend/internal/common/http"
)

var (
	ErrModelNotFound     = errors.New("MODEL_NOT_FOUND")
	ErrExtractionTimeout = errors.New("EXTRACTION_TIMEOUT")
	ErrExtractionFailed  = errors.New("EXTRACTION_FAILED")
)

// Strategy is one way of producing raw structured output for a prompt. The
// cascade walks an ordered list of strategies and stops at the first usable
// result.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, prompt string) (string, error)
}

// chatCompletionStrategy calls an OpenAI-compatible chat-completions endpoint
// with a fixed model.
type chatCompletionStrategy struct {
	model   string
	baseURL string
	apiKey  string
	client  *commonhttp.Client
}

// NewChatCompletionStrategy builds a strategy for one model. The timeout
// bounds the strategy's whole HTTP exchange.
func NewChatCompletionStrategy(model, baseURL, apiKey string, timeout time.Duration) Strategy {
	return &chatCompletionStrategy{
		model:   model,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  commonhttp.NewClient(timeout),
	}
}

func (s *chatCompletionStrategy) Name() string {
	return s.model
}

func (s *chatCompletionStrategy) Attempt(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:         0.1,
		MaxCompletionTokens: 1024,
		TopP:                0.95,
		ResponseFormat:      responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "", ErrExtractionTimeout
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		if resp.StatusCode == http.StatusNotFound && apiErr.Error.Code == "model_not_found" {
			return "", fmt.Errorf("%w: %s", ErrModelNotFound, s.model)
		}

		// Some backends reject the request but still ship the generation
		// they could not validate. Salvage it when present.
		if apiErr.Error.Code == "json_validate_failed" && apiErr.Error.FailedGeneration != "" {
			return apiErr.Error.FailedGeneration, nil
		}

		return "", fmt.Errorf("%w: status %d", ErrExtractionFailed, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrExtractionFailed, err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: response has no content", ErrExtractionFailed)
	}

	return chatResp.Choices[0].Message.Content, nil
}
