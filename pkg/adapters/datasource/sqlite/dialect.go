package sqlite

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
)

// driverName is registered by modernc.org/sqlite.
const driverName = "sqlite"

// SQLite has no information_schema. The pragma table-valued functions expose
// the same facts, and their hidden "arg" column takes the table name as a
// bound parameter.
func newDialect() *datasource.Dialect {
	return &datasource.Dialect{
		DriverName:  driverName,
		Placeholder: sq.Question,
		DSN:         toDSN,
		Probe: func() sq.SelectBuilder {
			return sq.Select("name").From("pragma_database_list")
		},
		Tables: func() sq.SelectBuilder {
			return sq.Select("name").
				From("sqlite_master").
				Where("type = 'table'").
				Where("name NOT LIKE 'sqlite_%'").
				OrderBy("name")
		},
		Columns: func(table string) sq.SelectBuilder {
			return sq.Select(
				"name AS column_name",
				"type AS data_type",
				"cid + 1 AS ordinal_position",
				`CASE WHEN "notnull" = 0 AND pk = 0 THEN 1 ELSE 0 END AS is_nullable`,
				"NULL AS max_length",
				"dflt_value AS default_value",
			).
				From("pragma_table_info").
				Where(sq.Eq{"arg": table}).
				OrderBy("cid")
		},
		PrimaryKeys: func(table string) sq.SelectBuilder {
			return sq.Select("name").
				From("pragma_table_info").
				Where(sq.Eq{"arg": table}).
				Where("pk > 0")
		},
		ForeignKeys: func(table string) sq.SelectBuilder {
			// REFERENCES Parent without a column list targets the parent's
			// primary key, and "to" is NULL. The seq-th key column pairs with
			// the parent column whose pk position is seq+1.
			return sq.Select(
				`fk."from" AS column_name`,
				`fk."table" AS referenced_table`,
				`COALESCE(fk."to", (SELECT p.name FROM pragma_table_info(fk."table") AS p WHERE p.pk = fk.seq + 1), '') AS referenced_column`,
			).
				From("pragma_foreign_key_list AS fk").
				Where(sq.Eq{"fk.arg": table}).
				OrderBy("fk.id", "fk.seq")
		},
	}
}

// toDSN opens plain paths read-only so inspecting a mistyped path never
// creates an empty database file. file: URIs and :memory: pass through.
func toDSN(connString string) (string, error) {
	s := strings.TrimSpace(connString)
	if len(s) >= len("sqlite://") && strings.EqualFold(s[:len("sqlite://")], "sqlite://") {
		s = s[len("sqlite://"):]
	} else if len(s) >= len("sqlite:") && strings.EqualFold(s[:len("sqlite:")], "sqlite:") {
		s = s[len("sqlite:"):]
	}
	if s == ":memory:" || strings.HasPrefix(s, "file:") {
		return s, nil
	}
	return "file:" + s + "?mode=ro", nil
}
