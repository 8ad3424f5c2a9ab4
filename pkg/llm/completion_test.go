package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
)

type capturedRequest struct {
	auth      string
	requestID string
	body      openai.ChatCompletionRequest
}

func newStreamServer(t *testing.T, lines ...string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.requestID = r.Header.Get(requestIDHeader)
		if err := json.NewDecoder(r.Body).Decode(&captured.body); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprint(w, line)
			flusher.Flush()
		}
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestCompletionClient_Complete_Success(t *testing.T) {
	server, captured := newStreamServer(t,
		chunk("Hel"),
		"data: garbage\n",
		chunk("lo"),
		"data: [DONE]\n",
	)
	client := NewCompletionClient(&Config{Endpoint: server.URL, APIKey: "default-key"}, zap.NewNop())

	text, err := client.Complete(context.Background(), "Say hello", "")
	require.NoError(t, err)

	assert.Equal(t, "Hello", text)
	assert.Equal(t, "Bearer default-key", captured.auth)
	assert.NotEmpty(t, captured.requestID)
	assert.Equal(t, DefaultModel, captured.body.Model)
	assert.Equal(t, DefaultMaxTokens, captured.body.MaxTokens)
	assert.True(t, captured.body.Stream)
	require.Len(t, captured.body.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, captured.body.Messages[0].Role)
	assert.Equal(t, "Say hello", captured.body.Messages[0].Content)
}

func TestCompletionClient_Complete_KeyOverrideAndRequestID(t *testing.T) {
	server, captured := newStreamServer(t, chunk("ok"), "data: [DONE]\n")
	client := NewCompletionClient(&Config{Endpoint: server.URL, APIKey: "default-key", Model: "gpt-test", MaxTokens: 64}, nil)

	ctx := logging.WithRequestID(context.Background(), "req-42")
	_, err := client.Complete(ctx, "p", "caller-key")
	require.NoError(t, err)

	assert.Equal(t, "Bearer caller-key", captured.auth)
	assert.Equal(t, "req-42", captured.requestID)
	assert.Equal(t, "gpt-test", captured.body.Model)
	assert.Equal(t, 64, captured.body.MaxTokens)
}

func TestCompletionClient_Complete_NoKeyOmitsAuthorization(t *testing.T) {
	server, captured := newStreamServer(t, chunk("local"))
	client := NewCompletionClient(&Config{Endpoint: server.URL}, nil)

	text, err := client.Complete(context.Background(), "p", "")
	require.NoError(t, err)

	assert.Equal(t, "local", text)
	assert.Empty(t, captured.auth)
}

// trackingBody records whether the response body was read or closed.
type trackingBody struct {
	r      io.Reader
	reads  int
	closed bool
	onRead func(call int) error
}

func (b *trackingBody) Read(p []byte) (int, error) {
	b.reads++
	if b.onRead != nil {
		if err := b.onRead(b.reads); err != nil {
			return 0, err
		}
	}
	return b.r.Read(p)
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func clientWithTransport(rt roundTripFunc) *CompletionClient {
	return NewCompletionClient(&Config{
		Endpoint: "http://completion.test/v1/chat/completions",
		HTTP:     &http.Client{Transport: rt},
	}, nil)
}

func TestCompletionClient_Complete_NonSuccessStatusIsUpstream(t *testing.T) {
	body := &trackingBody{r: strings.NewReader(chunk("never read"))}
	client := clientWithTransport(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusTooManyRequests, Body: body, Header: http.Header{}}, nil
	})

	text, err := client.Complete(context.Background(), "p", "")
	require.Error(t, err)

	assert.Equal(t, "", text)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
	assert.False(t, appErr.IsRetryable())
	assert.Zero(t, body.reads, "body must not be read on a non-success status")
	assert.True(t, body.closed, "body must be closed")
}

func TestCompletionClient_Complete_NetworkFailureIsTransport(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	client := clientWithTransport(func(r *http.Request) (*http.Response, error) {
		return nil, refused
	})

	_, err := client.Complete(context.Background(), "p", "")
	require.Error(t, err)

	assert.Equal(t, apperrors.KindTransport, apperrors.KindOf(err))
	assert.ErrorIs(t, err, refused)
	assert.True(t, err.(*apperrors.Error).IsRetryable())
}

func TestCompletionClient_Complete_CancelledMidStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	body := &trackingBody{
		r: strings.NewReader(chunk("partial")),
		onRead: func(call int) error {
			if call > 1 {
				cancel()
				return errors.New("read interrupted")
			}
			return nil
		},
	}
	client := clientWithTransport(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: body, Header: http.Header{}}, nil
	})

	text, err := client.Complete(ctx, "p", "")
	require.Error(t, err)

	assert.Equal(t, "", text, "no partial text on cancellation")
	assert.Equal(t, apperrors.KindTransport, apperrors.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, body.closed)
}

func TestCompletionClient_Complete_CancelledBeforeSend(t *testing.T) {
	server, _ := newStreamServer(t, chunk("x"))
	client := NewCompletionClient(&Config{Endpoint: server.URL}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "p", "")
	assert.Equal(t, apperrors.KindTransport, apperrors.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompletionClient_Complete_NeverLogsAPIKey(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	server, _ := newStreamServer(t, chunk("x"), "data: [DONE]\n")
	client := NewCompletionClient(&Config{Endpoint: server.URL}, zap.New(core))

	_, err := client.Complete(context.Background(), "p", "sk-live-abcdefghijklmnopqrstuvwxyz")
	require.NoError(t, err)

	for _, entry := range logs.All() {
		for k, v := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), "sk-live", "field %s leaked the key", k)
		}
	}
}

func TestRequestIDTransport_DoesNotMutateCallerRequest(t *testing.T) {
	var seen string
	rt := &requestIDTransport{base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get(requestIDHeader)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{}}, nil
	})}

	req, err := http.NewRequest(http.MethodGet, "http://example.test", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotEmpty(t, seen)
	assert.Empty(t, req.Header.Get(requestIDHeader))
}
