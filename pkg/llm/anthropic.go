package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
)

// DefaultAnthropicModel is used when the anthropic provider is selected but
// the configured model is an OpenAI model name.
const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicConfig configures an AnthropicClient.
type AnthropicConfig struct {
	BaseURL   string // Optional; defaults to the public Messages API
	Model     string
	MaxTokens int
	APIKey    string
	HTTP      *http.Client
}

// AnthropicClient completes prompts with the Anthropic Messages API. The
// response is requested in one piece rather than streamed; the failure
// classification matches CompletionClient.
type AnthropicClient struct {
	baseURL   string
	model     string
	maxTokens int
	apiKey    string
	http      *http.Client
	logger    *zap.Logger
}

// NewAnthropicClient creates a client. Blank fields take the package defaults.
func NewAnthropicClient(cfg *AnthropicConfig, logger *zap.Logger) *AnthropicClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &AnthropicClient{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		apiKey:    cfg.APIKey,
		http:      withRequestID(cfg.HTTP),
		logger:    logger.Named("anthropic"),
	}
	if c.model == "" || strings.HasPrefix(c.model, "gpt-") {
		c.model = DefaultAnthropicModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	return c
}

func (c *AnthropicClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the text blocks
// of the reply joined together.
func (c *AnthropicClient) Complete(ctx context.Context, prompt, apiKey string) (string, error) {
	if apiKey == "" {
		apiKey = c.apiKey
	}
	logger := logging.WithContext(ctx, c.logger)

	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(c.http)}
	if c.baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(c.baseURL))
	}
	client := anthropic.NewClient(apiKey, opts...)

	start := time.Now()
	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		classified := classifyAnthropicError(ctx, err)
		logger.Warn("Anthropic request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("kind", string(classified.Kind)),
			zap.String("error", logging.SanitizeError(err)))
		return "", classified
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}

	logger.Info("Anthropic completion finished",
		zap.String("model", c.model),
		zap.Int("response_len", sb.Len()),
		zap.Duration("elapsed", time.Since(start)))

	return sb.String(), nil
}

// classifyAnthropicError maps SDK failures onto the shared error kinds:
// network and cancellation failures are transport errors, anything the API
// answered is upstream.
func classifyAnthropicError(ctx context.Context, err error) *apperrors.Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperrors.Transport("anthropic request failed", ctxErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Transport("anthropic request failed", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperrors.Transport("anthropic request failed", err)
	}

	status := 0
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		status = reqErr.StatusCode
	}
	message := "anthropic endpoint rejected request"
	if status != 0 {
		message = fmt.Sprintf("anthropic endpoint returned HTTP %d", status)
	}
	upstream := apperrors.Upstream(status, message)
	upstream.Cause = err
	return upstream
}
