package postgres

import (
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Description: "PostgreSQL 12+ via postgres:// URLs or libpq key=value strings",
		},
		Dialect: newDialect(),
		Matches: matches,
	})
}

func matches(connString string) bool {
	if datasource.HasSchemePrefix(connString, "postgres://", "postgresql://") {
		return true
	}
	// libpq keyword/value form: "host=... dbname=..."
	s := strings.ToLower(connString)
	return strings.Contains(s, "dbname=") && !strings.Contains(s, ";")
}
