package llm

import (
	"context"
	"sync"
)

// MockCompleter is a configurable Completer for tests.
// Set CompleteFunc to control behavior; calls are recorded.
type MockCompleter struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns "" and nil error.
	CompleteFunc func(ctx context.Context, prompt, apiKey string) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records the arguments of one Complete call.
type MockCall struct {
	Prompt string
	APIKey string
}

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{ModelName: "mock-model"}
}

func (m *MockCompleter) Complete(ctx context.Context, prompt, apiKey string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Prompt: prompt, APIKey: apiKey})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, apiKey)
	}
	return "", nil
}

func (m *MockCompleter) Model() string {
	return m.ModelName
}

// Calls returns a copy of the recorded calls.
func (m *MockCompleter) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

var _ Completer = (*MockCompleter)(nil)
