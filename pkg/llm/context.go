package llm

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
)

const requestIDHeader = "X-Request-Id"

// requestIDTransport stamps every outbound request with X-Request-Id, reusing
// the inbound request id from the context when there is one.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := logging.RequestID(req.Context())
	if id == "" {
		id = uuid.NewString()
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set(requestIDHeader, id)

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// withRequestID wraps client's transport. A nil client yields a fresh one.
func withRequestID(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Transport: &requestIDTransport{}}
	}
	wrapped := *client
	wrapped.Transport = &requestIDTransport{base: client.Transport}
	return &wrapped
}
