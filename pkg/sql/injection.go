// Package sql screens user-supplied identifiers before they reach a schema
// query. Identifiers are always bound as parameters; screening only rejects
// obviously hostile input early at the transport boundary.
package sql

import (
	"fmt"
	"strings"
	"unicode"

	libinjection "github.com/corazawaf/libinjection-go"
)

// MaxIdentifierLength is the longest table name accepted. SQL Server allows
// 128 characters; the other engines allow fewer.
const MaxIdentifierLength = 128

// InjectionCheckResult describes why a value was rejected.
type InjectionCheckResult struct {
	IsSQLi      bool   // libinjection classified the value as SQL
	Fingerprint string // libinjection fingerprint, when IsSQLi
	Field       string
	Reason      string
}

func (r *InjectionCheckResult) Error() string {
	if r.IsSQLi {
		return fmt.Sprintf("%s looks like SQL (fingerprint %s)", r.Field, r.Fingerprint)
	}
	return fmt.Sprintf("%s %s", r.Field, r.Reason)
}

// CheckIdentifier screens a table name. It returns nil when the value is
// acceptable.
//
//	CheckIdentifier("table", "Orders")                      // nil
//	CheckIdentifier("table", "Orders'; DROP TABLE x; --")   // IsSQLi == true
func CheckIdentifier(field, value string) *InjectionCheckResult {
	if strings.TrimSpace(value) == "" {
		return &InjectionCheckResult{Field: field, Reason: "is required"}
	}
	if len(value) > MaxIdentifierLength {
		return &InjectionCheckResult{Field: field, Reason: fmt.Sprintf("exceeds %d characters", MaxIdentifierLength)}
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return &InjectionCheckResult{Field: field, Reason: "contains control characters"}
		}
	}

	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		return &InjectionCheckResult{IsSQLi: true, Fingerprint: string(fingerprint), Field: field}
	}
	return nil
}
