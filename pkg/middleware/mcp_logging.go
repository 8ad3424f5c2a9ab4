package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
)

const (
	redacted = logging.RedactedText

	// maxArgumentLength truncates logged argument values.
	maxArgumentLength = 200
	// maxCapturedResponse bounds how much of a response is kept for
	// classification. Larger responses are logged without an outcome.
	maxCapturedResponse = 1 << 20
)

// sensitiveArguments are substrings of argument names whose values are never
// logged. Prompts are included because users paste credentials into them.
var sensitiveArguments = []string{"password", "secret", "token", "key", "credential", "connection", "prompt"}

// MCPRequestLogger returns middleware that logs one line per MCP JSON-RPC
// call: method, tool, redacted arguments, outcome and duration. Tool results
// flagged isError are reported with the error code they carry.
// Pass nil logger to disable logging.
func MCPRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.WithContext(r.Context(), logger)

			body, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Error("Failed to read MCP request body", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var call jsonRPCRequest
			if err := json.Unmarshal(body, &call); err != nil {
				// The server answers malformed JSON itself.
				logger.Debug("Unparseable MCP request", zap.Int("bytes", len(body)))
			}

			recorder := &mcpResponseRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			fields := []zap.Field{
				zap.String("method", call.Method),
				zap.String("tool", call.Params.Name),
				zap.Any("arguments", sanitizeArguments(call.Params.Arguments)),
				zap.Duration("duration", time.Since(start)),
			}

			outcome := classifyResponse(recorder.captured())
			switch {
			case outcome.rpcError != nil:
				logger.Debug("MCP call failed", append(fields,
					zap.Int("error_code", outcome.rpcError.Code),
					zap.String("error_message", outcome.rpcError.Message))...)
			case outcome.toolError != "":
				logger.Debug("MCP call returned tool error", append(fields,
					zap.String("error_kind", outcome.toolError))...)
			default:
				logger.Debug("MCP call", fields...)
			}
		})
	}
}

type jsonRPCRequest struct {
	Method string `json:"method"`
	Params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

type jsonRPCResponse struct {
	Result *struct {
		IsError bool `json:"isError"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"result"`
	Error *jsonRPCError `json:"error"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type responseOutcome struct {
	rpcError  *jsonRPCError
	toolError string
}

// classifyResponse reads a plain JSON or a single-event SSE response body.
func classifyResponse(body []byte) responseOutcome {
	payload := bytes.TrimSpace(body)
	if bytes.HasPrefix(payload, []byte("event:")) || bytes.HasPrefix(payload, []byte("data:")) {
		payload = lastEventData(payload)
	}

	var resp jsonRPCResponse
	if len(payload) == 0 || json.Unmarshal(payload, &resp) != nil {
		return responseOutcome{}
	}
	if resp.Error != nil {
		return responseOutcome{rpcError: resp.Error}
	}
	if resp.Result == nil || !resp.Result.IsError {
		return responseOutcome{}
	}

	kind := "unknown"
	for _, c := range resp.Result.Content {
		if c.Type != "text" {
			continue
		}
		var structured struct {
			Code string `json:"code"`
		}
		if json.Unmarshal([]byte(c.Text), &structured) == nil && structured.Code != "" {
			kind = structured.Code
			break
		}
	}
	return responseOutcome{toolError: kind}
}

func lastEventData(stream []byte) []byte {
	var data []byte
	for _, line := range bytes.Split(stream, []byte("\n")) {
		if rest, ok := bytes.CutPrefix(bytes.TrimSpace(line), []byte("data:")); ok {
			data = bytes.TrimSpace(rest)
		}
	}
	return data
}

// mcpResponseRecorder tees the response body into a bounded buffer.
type mcpResponseRecorder struct {
	http.ResponseWriter
	body     bytes.Buffer
	overflow bool
}

func (r *mcpResponseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *mcpResponseRecorder) Write(b []byte) (int, error) {
	if !r.overflow {
		if r.body.Len()+len(b) > maxCapturedResponse {
			r.overflow = true
			r.body.Reset()
		} else {
			r.body.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

func (r *mcpResponseRecorder) captured() []byte {
	if r.overflow {
		return nil
	}
	return r.body.Bytes()
}

// sanitizeArguments redacts sensitive arguments and truncates long strings.
func sanitizeArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}

	out := make(map[string]any, len(args))
	for name, value := range args {
		if isSensitiveArgument(name) {
			out[name] = redacted
			continue
		}
		if s, ok := value.(string); ok && len(s) > maxArgumentLength {
			value = s[:maxArgumentLength] + "..."
		}
		out[name] = value
	}
	return out
}

func isSensitiveArgument(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range sensitiveArguments {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
