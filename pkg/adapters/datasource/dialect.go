package datasource

import (
	sq "github.com/Masterminds/squirrel"
)

// Dialect describes how to inspect one database engine through database/sql.
// Query builders bind the table name as a parameter; the inspector applies
// Placeholder before rendering, so builders write conditions with "?".
type Dialect struct {
	// DriverName is the database/sql driver registered by the engine package.
	DriverName string
	// Placeholder renders bound parameters in the driver's native syntax.
	Placeholder sq.PlaceholderFormat
	// DSN converts a user-facing connection string into the driver's DSN.
	// Nil means the string is passed through unchanged.
	DSN func(connString string) (string, error)

	Probe       func() sq.SelectBuilder
	Tables      func() sq.SelectBuilder
	Columns     func(table string) sq.SelectBuilder
	PrimaryKeys func(table string) sq.SelectBuilder
	ForeignKeys func(table string) sq.SelectBuilder
}

func (d *Dialect) dsn(connString string) (string, error) {
	if d.DSN == nil {
		return connString, nil
	}
	return d.DSN(connString)
}

// InformationSchemaColumns is the ANSI information_schema column query shared
// by engines that implement it faithfully. Engines add their own scoping
// (schema or database) on top.
func InformationSchemaColumns(table string) sq.SelectBuilder {
	return sq.Select(
		"COLUMN_NAME AS column_name",
		"DATA_TYPE AS data_type",
		"ORDINAL_POSITION AS ordinal_position",
		"CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS is_nullable",
		"CHARACTER_MAXIMUM_LENGTH AS max_length",
		"COLUMN_DEFAULT AS default_value",
	).
		From("INFORMATION_SCHEMA.COLUMNS").
		Where(sq.Eq{"TABLE_NAME": table}).
		OrderBy("ORDINAL_POSITION")
}

// InformationSchemaForeignKeys resolves each referencing column to the
// referenced column through REFERENTIAL_CONSTRAINTS, pairing composite key
// members by ordinal position.
func InformationSchemaForeignKeys(table string) sq.SelectBuilder {
	return sq.Select(
		"kcu.COLUMN_NAME AS column_name",
		"ref.TABLE_NAME AS referenced_table",
		"ref.COLUMN_NAME AS referenced_column",
	).
		From("INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc").
		Join("INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu ON kcu.CONSTRAINT_SCHEMA = rc.CONSTRAINT_SCHEMA AND kcu.CONSTRAINT_NAME = rc.CONSTRAINT_NAME").
		Join("INFORMATION_SCHEMA.KEY_COLUMN_USAGE ref ON ref.CONSTRAINT_SCHEMA = rc.UNIQUE_CONSTRAINT_SCHEMA AND ref.CONSTRAINT_NAME = rc.UNIQUE_CONSTRAINT_NAME AND ref.ORDINAL_POSITION = kcu.ORDINAL_POSITION").
		Where(sq.Eq{"kcu.TABLE_NAME": table}).
		OrderBy("kcu.CONSTRAINT_NAME", "kcu.ORDINAL_POSITION")
}
