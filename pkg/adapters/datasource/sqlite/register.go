package sqlite

import (
	"strings"

	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        "sqlite",
			DisplayName: "SQLite",
			Description: "SQLite 3 database files",
		},
		Dialect: newDialect(),
		Matches: matches,
	})
}

func matches(connString string) bool {
	if datasource.HasSchemePrefix(connString, "sqlite:", "file:") {
		return true
	}
	s := strings.ToLower(strings.TrimSpace(connString))
	if s == ":memory:" {
		return true
	}
	if strings.Contains(s, ";") || strings.Contains(s, "://") {
		return false
	}
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}
