package apperrors

import (
	"errors"
	"fmt"

	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrConnection      = errors.New("connection error")
	ErrQuery           = errors.New("query error")
	ErrTemplateMissing = errors.New("template missing")
	ErrConfigMissing   = errors.New("config missing")
	ErrUpstream        = errors.New("upstream error")
	ErrTransport       = errors.New("transport error")
)

// Kind identifies which failure class an Error belongs to.
type Kind string

const (
	KindConnection      Kind = "connection_error"
	KindQuery           Kind = "query_error"
	KindTemplateMissing Kind = "template_missing"
	KindConfigMissing   Kind = "config_missing"
	KindUpstream        Kind = "upstream_error"
	KindTransport       Kind = "transport_error"
	KindInvalidInput    Kind = "invalid_input"
	KindUnknown         Kind = "unknown"
)

var sentinels = map[Kind]error{
	KindConnection:      ErrConnection,
	KindQuery:           ErrQuery,
	KindTemplateMissing: ErrTemplateMissing,
	KindConfigMissing:   ErrConfigMissing,
	KindUpstream:        ErrUpstream,
	KindTransport:       ErrTransport,
	KindInvalidInput:    ErrInvalidInput,
}

// Error is a classified failure. Callers branch on Kind (or errors.Is against
// the sentinels) and show Error() to users; the rendered text is sanitized so
// connection credentials and API keys never appear in it.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int // upstream HTTP status, zero when not applicable
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, logging.SanitizeError(e.Cause))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause so that
// errors.Is works for either.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// IsRetryable reports whether a caller may reasonably retry the operation.
// Only network-level failures qualify.
func (e *Error) IsRetryable() bool {
	return e.Kind == KindTransport
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Connection(message string, cause error) *Error {
	return New(KindConnection, message, cause)
}

func Query(message string, cause error) *Error {
	return New(KindQuery, message, cause)
}

func TemplateMissing(name string, cause error) *Error {
	return New(KindTemplateMissing, fmt.Sprintf("template %q is not available", name), cause)
}

func ConfigMissing(message string) *Error {
	return New(KindConfigMissing, message, nil)
}

func Upstream(statusCode int, message string) *Error {
	return &Error{Kind: KindUpstream, Message: message, StatusCode: statusCode}
}

func Transport(message string, cause error) *Error {
	return New(KindTransport, message, cause)
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message, nil)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
