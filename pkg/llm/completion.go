package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
)

const (
	DefaultEndpoint  = "https://api.openai.com/v1/chat/completions"
	DefaultModel     = "gpt-4.1"
	DefaultMaxTokens = 2048
)

// Config holds configuration for creating a CompletionClient.
type Config struct {
	Endpoint  string // Full chat completions URL
	Model     string
	MaxTokens int
	APIKey    string       // Default key; optional for local endpoints
	HTTP      *http.Client // Optional; no client-side timeout is applied by default
}

// CompletionClient sends one streamed chat completion per call to an
// OpenAI-compatible endpoint and accumulates the streamed text.
// It does not retry; callers decide whether a TransportError is worth another try.
type CompletionClient struct {
	http      *http.Client
	endpoint  string
	model     string
	maxTokens int
	apiKey    string
	logger    *zap.Logger
}

// NewCompletionClient creates a client. Blank fields take the package defaults.
func NewCompletionClient(cfg *Config, logger *zap.Logger) *CompletionClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &CompletionClient{
		http:      withRequestID(cfg.HTTP),
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		apiKey:    cfg.APIKey,
		logger:    logger.Named("completion"),
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	return c
}

// Model returns the configured model name.
func (c *CompletionClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the concatenated
// streamed deltas. A non-2xx status is an UpstreamError and the body is never
// read. Network failure or cancellation, before or during the stream, is a
// TransportError and no partial text is returned.
func (c *CompletionClient) Complete(ctx context.Context, prompt, apiKey string) (string, error) {
	if apiKey == "" {
		apiKey = c.apiKey
	}
	logger := logging.WithContext(ctx, c.logger)

	payload, err := json.Marshal(openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.maxTokens,
		Stream:    true,
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	logger.Debug("Completion request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Bool("has_api_key", apiKey != ""))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		return "", apperrors.Transport("completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("Completion endpoint rejected request",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))
		return "", apperrors.Upstream(resp.StatusCode,
			fmt.Sprintf("completion endpoint returned HTTP %d", resp.StatusCode))
	}

	text, err := Collect(Deltas(ctx, resp.Body))
	if err != nil {
		logger.Warn("Completion stream interrupted",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		return "", apperrors.Transport("completion stream interrupted", err)
	}

	logger.Info("Completion finished",
		zap.String("model", c.model),
		zap.Int("response_len", len(text)),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}
