package postgres

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
)

// driverName is registered by github.com/jackc/pgx/v5/stdlib.
const driverName = "pgx"

// searchPathFilter scopes metadata to the schemas on the session's search
// path, which keeps table names unambiguous without a schema argument.
const searchPathFilter = "table_schema = ANY (current_schemas(false))"

// information_schema columns are sql_identifier / cardinal_number domains;
// they are cast to plain types so database/sql scans them directly.
func newDialect() *datasource.Dialect {
	return &datasource.Dialect{
		DriverName:  driverName,
		Placeholder: sq.Dollar,
		Probe: func() sq.SelectBuilder {
			return sq.Select("current_database() AS name")
		},
		Tables: func() sq.SelectBuilder {
			return sq.Select("table_name::text").
				From("information_schema.tables").
				Where("table_type = 'BASE TABLE'").
				Where(searchPathFilter).
				OrderBy("table_name")
		},
		Columns: func(table string) sq.SelectBuilder {
			return sq.Select(
				"column_name::text AS column_name",
				"data_type::text AS data_type",
				"ordinal_position::int AS ordinal_position",
				"(is_nullable = 'YES') AS is_nullable",
				"character_maximum_length::bigint AS max_length",
				"column_default::text AS default_value",
			).
				From("information_schema.columns").
				Where(searchPathFilter).
				Where(sq.Eq{"table_name": table}).
				OrderBy("ordinal_position")
		},
		PrimaryKeys: func(table string) sq.SelectBuilder {
			return sq.Select("kcu.column_name::text").
				From("information_schema.table_constraints tc").
				Join("information_schema.key_column_usage kcu ON kcu.constraint_schema = tc.constraint_schema AND kcu.constraint_name = tc.constraint_name AND kcu.table_name = tc.table_name").
				Where("tc.constraint_type = 'PRIMARY KEY'").
				Where("tc." + searchPathFilter).
				Where(sq.Eq{"tc.table_name": table})
		},
		ForeignKeys: func(table string) sq.SelectBuilder {
			return sq.Select(
				"kcu.column_name::text AS column_name",
				"ref.table_name::text AS referenced_table",
				"ref.column_name::text AS referenced_column",
			).
				From("information_schema.referential_constraints rc").
				Join("information_schema.key_column_usage kcu ON kcu.constraint_schema = rc.constraint_schema AND kcu.constraint_name = rc.constraint_name").
				Join("information_schema.key_column_usage ref ON ref.constraint_schema = rc.unique_constraint_schema AND ref.constraint_name = rc.unique_constraint_name AND ref.ordinal_position = kcu.position_in_unique_constraint").
				Where("kcu." + searchPathFilter).
				Where(sq.Eq{"kcu.table_name": table}).
				OrderBy("kcu.constraint_name", "kcu.ordinal_position")
		},
	}
}
