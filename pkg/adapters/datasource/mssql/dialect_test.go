package mssql

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
)

const adoConnString = "Server=db01;Database=Sales;User Id=sa;Password=hunter2;"

func newMockInspector(t *testing.T) (*datasource.Inspector, sqlmock.Sqlmock, *string) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	var driver string
	inspector := datasource.NewInspector(datasource.InspectorConfig{
		DefaultType: "sqlserver",
		Opener: func(driverName, dsn string) (*sqlx.DB, error) {
			driver = driverName
			return sqlx.NewDb(db, "sqlmock"), nil
		},
	}, zap.NewNop())
	return inspector, mock, &driver
}

func TestDialect_ColumnsQueryBindsTableName(t *testing.T) {
	query, args, err := newDialect(driverSQLServer).Columns("Orders").PlaceholderFormat(newDialect(driverSQLServer).Placeholder).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION")
	assert.NotContains(t, query, "Orders")
	assert.Equal(t, []any{"Orders"}, args)
}

func TestDialect_PrimaryKeysQueryImposesNoOrder(t *testing.T) {
	d := newDialect(driverSQLServer)
	query, args, err := d.PrimaryKeys("Orders").PlaceholderFormat(d.Placeholder).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "'IsPrimaryKey') = 1 AND TABLE_NAME = @p1")
	assert.NotContains(t, query, "ORDER BY")
	assert.Equal(t, []any{"Orders"}, args)
}

func TestInspector_GetColumns_SQLServer(t *testing.T) {
	inspector, mock, driver := newMockInspector(t)

	mock.ExpectPing()
	mock.ExpectQuery(regexp.QuoteMeta("FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION")).
		WithArgs("Orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "ordinal_position", "is_nullable", "max_length", "default_value"}).
			AddRow("Id", "int", 1, 0, nil, nil).
			AddRow("CustomerId", "int", 2, 0, nil, nil).
			AddRow("Total", "decimal", 3, 1, nil, "((0))"))
	mock.ExpectClose()

	columns, err := inspector.GetColumns(context.Background(), "Orders", adoConnString)
	require.NoError(t, err)

	require.Len(t, columns, 3)
	assert.Equal(t, "Id", columns[0].Name)
	assert.Equal(t, "CustomerId", columns[1].Name)
	assert.Equal(t, "Total", columns[2].Name)
	assert.Equal(t, "decimal", columns[2].DataType)
	assert.True(t, columns[2].IsNullable)
	require.NotNil(t, columns[2].DefaultValue)
	assert.Equal(t, "((0))", *columns[2].DefaultValue)
	assert.Equal(t, driverSQLServer, *driver)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspector_GetForeignKeys_SQLServer(t *testing.T) {
	inspector, mock, _ := newMockInspector(t)

	mock.ExpectPing()
	mock.ExpectQuery(regexp.QuoteMeta("FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc")).
		WithArgs("Orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "referenced_table", "referenced_column"}).
			AddRow("CustomerId", "Customers", "Id"))
	mock.ExpectClose()

	fks, err := inspector.GetForeignKeys(context.Background(), "Orders", adoConnString)
	require.NoError(t, err)

	require.Len(t, fks, 1)
	assert.Equal(t, "CustomerId", fks[0].ColumnName)
	assert.Equal(t, "Customers", fks[0].ReferencedTable)
	assert.Equal(t, "Id", fks[0].ReferencedColumn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_AzureADUsesAzureDriver(t *testing.T) {
	inspector := datasource.NewInspector(datasource.InspectorConfig{DefaultType: "sqlserver"}, nil)

	dsType, d, err := inspector.Resolve("sqlserver://db.database.windows.net?database=Sales&fedauth=ActiveDirectoryDefault")
	require.NoError(t, err)
	assert.Equal(t, "azuresql", dsType)
	assert.Equal(t, driverAzureSQL, d.DriverName)

	dsType, d, err = inspector.Resolve(adoConnString)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", dsType)
	assert.Equal(t, driverSQLServer, d.DriverName)
}
