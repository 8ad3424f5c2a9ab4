package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
)

// ErrorResponse is the JSON body of a tool result flagged isError. Code is
// the error kind (connection_error, template_missing, ...). Retryable is set
// for failures that may succeed on an identical second call.
type ErrorResponse struct {
	Error     bool   `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// upstreamDetails accompanies upstream_error results.
type upstreamDetails struct {
	Status int `json:"status"`
}

// NewErrorResult creates a tool result carrying a structured error the
// caller can act on, for example a missing template or a bad table name.
//
//	if table == "" {
//	    return NewErrorResult("invalid_input", "table is required"), nil
//	}
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return newErrorResult(ErrorResponse{Code: code, Message: message})
}

func newErrorResult(resp ErrorResponse) *mcp.CallToolResult {
	resp.Error = true
	body, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(body))
	result.IsError = true
	return result
}

// errorResult converts a service error into a tool result. Classified errors
// already carry sanitized messages. Anything else becomes a protocol error
// without detail.
func errorResult(err error) (*mcp.CallToolResult, error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperrors.KindUnknown {
		return nil, errors.New("internal error")
	}

	resp := ErrorResponse{
		Code:      string(appErr.Kind),
		Message:   err.Error(),
		Retryable: appErr.IsRetryable(),
	}
	if appErr.Kind == apperrors.KindUpstream && appErr.StatusCode != 0 {
		resp.Details = upstreamDetails{Status: appErr.StatusCode}
	}
	return newErrorResult(resp), nil
}
