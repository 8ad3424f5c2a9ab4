// Package audit provides security audit logging for SIEM consumption.
// It logs rejected identifiers at the transport boundary in structured JSON
// format for easy parsing and alerting.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
	sqlguard "github.com/ekaya-inc/ekaya-codegen/pkg/sql"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection flags an identifier.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventParameterValidation is logged when an identifier is malformed.
	EventParameterValidation SecurityEventType = "parameter_validation_failure"
)

// maxLoggedValue bounds how much of a rejected value reaches the audit log.
const maxLoggedValue = 64

// SecurityEvent represents an auditable security event.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	Surface   string            `json:"surface"` // http, mcp, cli
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // warning, critical
}

// SQLInjectionDetails contains specifics of a detected SQL injection attempt.
type SQLInjectionDetails struct {
	Field       string `json:"field"`
	Value       string `json:"value"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
}

// SecurityAuditor logs security events under the "security_audit" logger.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates a new security auditor. A nil logger discards events.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityAuditor{logger: logger.Named("security_audit"), now: time.Now}
}

// CheckIdentifier screens an identifier such as a table name before it is
// handed to the inspector. A rejected value is audited and returned as an
// InvalidInput error. A nil auditor still screens but does not log.
func (a *SecurityAuditor) CheckIdentifier(ctx context.Context, surface, clientIP, field, value string) error {
	result := sqlguard.CheckIdentifier(field, value)
	if result == nil {
		return nil
	}
	if a != nil {
		if result.IsSQLi {
			a.LogInjectionAttempt(ctx, surface, clientIP, SQLInjectionDetails{
				Field:       field,
				Value:       value,
				Fingerprint: result.Fingerprint,
			})
		} else {
			a.LogParameterValidation(ctx, surface, clientIP, result.Error())
		}
	}
	return apperrors.InvalidInput(result.Error())
}

// LogInjectionAttempt records a detected SQL injection attempt.
// This is logged at ERROR level with "critical" severity for immediate alerting.
func (a *SecurityAuditor) LogInjectionAttempt(ctx context.Context, surface, clientIP string, details SQLInjectionDetails) {
	details.Value = truncate(details.Value)
	event := SecurityEvent{
		Timestamp: a.now().UTC(),
		EventType: EventSQLInjectionAttempt,
		RequestID: logging.RequestID(ctx),
		Surface:   surface,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  "critical",
	}

	// Ignoring error as marshaling known types should never fail
	eventJSON, _ := json.Marshal(event)

	a.logger.Error("SQL injection attempt detected",
		zap.String("event_json", string(eventJSON)),
		zap.String("surface", surface),
		zap.String("field", details.Field),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("severity", "critical"),
	)
}

// LogParameterValidation records a malformed identifier.
// This is logged at WARN level as these are typically user errors, not attacks.
func (a *SecurityAuditor) LogParameterValidation(ctx context.Context, surface, clientIP, errorMessage string) {
	event := SecurityEvent{
		Timestamp: a.now().UTC(),
		EventType: EventParameterValidation,
		RequestID: logging.RequestID(ctx),
		Surface:   surface,
		ClientIP:  clientIP,
		Details: map[string]string{
			"error": errorMessage,
		},
		Severity: "warning",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Parameter validation failed",
		zap.String("event_json", string(eventJSON)),
		zap.String("surface", surface),
		zap.String("error", errorMessage),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"),
	)
}

func truncate(s string) string {
	if len(s) <= maxLoggedValue {
		return s
	}
	return s[:maxLoggedValue] + "..."
}
