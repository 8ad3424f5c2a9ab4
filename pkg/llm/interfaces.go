// Package llm talks to remote text-completion endpoints.
package llm

import "context"

// Completer turns a single prompt into completed text.
// apiKey overrides the client's configured key when non-empty.
type Completer interface {
	Complete(ctx context.Context, prompt, apiKey string) (string, error)

	// Model returns the configured model name.
	Model() string
}

var (
	_ Completer = (*CompletionClient)(nil)
	_ Completer = (*AnthropicClient)(nil)
)
