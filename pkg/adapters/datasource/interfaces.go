package datasource

import (
	"context"

	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// SchemaInspector reads table metadata from a live database.
//
// Every method opens its own connection from connString and closes it before
// returning, on success and failure alike. connString is a secret: it is never
// logged and never embedded in returned errors.
type SchemaInspector interface {
	// TestConnection reports whether a connection could be opened and a trivial
	// metadata query returned at least one row. It never returns an error.
	TestConnection(ctx context.Context, connString string) bool

	// ListTables returns base table names in alphabetical order. Views and
	// system objects are excluded.
	ListTables(ctx context.Context, connString string) ([]string, error)

	// GetColumns returns the columns of table in physical ordinal order.
	// An unknown table yields an empty slice, not an error.
	GetColumns(ctx context.Context, table, connString string) ([]models.ColumnInfo, error)

	// GetPrimaryKeys returns the primary key column names of table. No
	// ordering is guaranteed for composite keys.
	GetPrimaryKeys(ctx context.Context, table, connString string) ([]string, error)

	// GetForeignKeys returns one entry per referencing column of table.
	GetForeignKeys(ctx context.Context, table, connString string) ([]models.ForeignKeyInfo, error)
}
