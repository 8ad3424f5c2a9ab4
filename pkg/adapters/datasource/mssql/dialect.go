package mssql

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
)

const (
	driverSQLServer = "sqlserver"
	driverAzureSQL  = "azuresql"
)

// primaryKeyFilter keeps only key columns whose constraint is a primary key.
const primaryKeyFilter = "OBJECTPROPERTY(OBJECT_ID(CONSTRAINT_SCHEMA + '.' + QUOTENAME(CONSTRAINT_NAME)), 'IsPrimaryKey') = 1"

// newDialect returns the INFORMATION_SCHEMA dialect for SQL Server bound to
// the given driver. Parameters render as @p1, @p2, ...
func newDialect(driverName string) *datasource.Dialect {
	return &datasource.Dialect{
		DriverName:  driverName,
		Placeholder: sq.AtP,
		Probe: func() sq.SelectBuilder {
			return sq.Select("DB_NAME() AS name")
		},
		Tables: func() sq.SelectBuilder {
			return sq.Select("TABLE_NAME").
				From("INFORMATION_SCHEMA.TABLES").
				Where("TABLE_TYPE = 'BASE TABLE'").
				OrderBy("TABLE_NAME")
		},
		Columns: datasource.InformationSchemaColumns,
		PrimaryKeys: func(table string) sq.SelectBuilder {
			return sq.Select("COLUMN_NAME").
				From("INFORMATION_SCHEMA.KEY_COLUMN_USAGE").
				Where(primaryKeyFilter).
				Where(sq.Eq{"TABLE_NAME": table})
		},
		ForeignKeys: datasource.InformationSchemaForeignKeys,
	}
}
