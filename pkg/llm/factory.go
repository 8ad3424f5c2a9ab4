package llm

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/config"
)

// NewCompleter builds the Completer selected by cfg.Provider.
// httpClient may be nil.
func NewCompleter(cfg config.CompletionConfig, httpClient *http.Client, logger *zap.Logger) (Completer, error) {
	switch cfg.Provider {
	case "", config.ProviderOpenAI:
		return NewCompletionClient(&Config{
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			APIKey:    cfg.APIKey,
			HTTP:      httpClient,
		}, logger), nil
	case config.ProviderAnthropic:
		baseURL := ""
		if cfg.Endpoint != DefaultEndpoint {
			baseURL = cfg.Endpoint
		}
		return NewAnthropicClient(&AnthropicConfig{
			BaseURL:   baseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			APIKey:    cfg.APIKey,
			HTTP:      httpClient,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.Provider)
	}
}
