package mssql

import (
	"strings"

	_ "github.com/microsoft/go-mssqldb"         // registers the "sqlserver" driver
	_ "github.com/microsoft/go-mssqldb/azuread" // registers the "azuresql" driver for Azure AD auth

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        "sqlserver",
			DisplayName: "Microsoft SQL Server",
			Description: "SQL Server 2016+ via ADO, ODBC or sqlserver:// connection strings",
		},
		Dialect: newDialect(driverSQLServer),
		Matches: func(connString string) bool {
			return datasource.HasSchemePrefix(connString, "sqlserver://") && !usesAzureAD(connString)
		},
	})
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        "azuresql",
			DisplayName: "Azure SQL Database",
			Description: "Azure SQL with Azure AD authentication (fedauth=...)",
		},
		Dialect: newDialect(driverAzureSQL),
		Matches: usesAzureAD,
	})
}

// usesAzureAD reports whether the connection string asks for an Azure AD
// authentication flow that only the azuresql driver understands.
func usesAzureAD(connString string) bool {
	return strings.Contains(strings.ToLower(connString), "fedauth=")
}
