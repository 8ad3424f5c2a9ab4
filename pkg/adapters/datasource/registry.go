package datasource

import (
	"sort"
	"strings"
	"sync"
)

// AdapterInfo describes a registered engine for discovery endpoints.
type AdapterInfo struct {
	Type        string `json:"type"`        // "sqlserver", "postgres", "mysql", "sqlite"
	DisplayName string `json:"displayName"` // "Microsoft SQL Server"
	Description string `json:"description"`
}

// AdapterRegistration contains info plus the dialect used to inspect the engine.
type AdapterRegistration struct {
	Info    AdapterInfo
	Dialect *Dialect
	// Matches reports whether a connection string unambiguously targets this
	// engine (by scheme or file suffix). Nil means never auto-detected.
	Matches func(connString string) bool
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]AdapterRegistration)
)

// Register is called by each engine package's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg AdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for all registered engines, sorted by type.
func RegisteredAdapters() []AdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// IsRegistered checks if an engine type is available.
func IsRegistered(dsType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dsType]
	return ok
}

// lookup returns the registration for dsType.
func lookup(dsType string) (AdapterRegistration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[dsType]
	return reg, ok
}

// Detect returns the engine type a connection string targets, or "" when no
// registered engine claims it.
func Detect(connString string) string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		if m := registry[t].Matches; m != nil && m(connString) {
			return t
		}
	}
	return ""
}

// HasSchemePrefix reports whether connString starts with any of the given
// prefixes, ignoring case and surrounding whitespace.
func HasSchemePrefix(connString string, prefixes ...string) bool {
	s := strings.ToLower(strings.TrimSpace(connString))
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
