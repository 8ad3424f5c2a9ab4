package mysql

import (
	"strings"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        "mysql",
			DisplayName: "MySQL",
			Description: "MySQL 8+ and MariaDB via mysql:// URLs or driver DSNs",
		},
		Dialect: newDialect(),
		Matches: func(connString string) bool {
			if datasource.HasSchemePrefix(connString, scheme) {
				return true
			}
			// Native DSN: user:pass@tcp(host:port)/db
			return strings.Contains(connString, "@tcp(") || strings.Contains(connString, "@unix(")
		},
	})
}
