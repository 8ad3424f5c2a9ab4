package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/audit"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// SchemaToolDeps contains dependencies for the schema inspection tools.
type SchemaToolDeps struct {
	Schema  services.SchemaService
	Auditor *audit.SecurityAuditor // nil screens without auditing
	Logger  *zap.Logger
}

// RegisterSchemaTools adds test_connection, list_tables, get_columns and
// get_table_metadata to the MCP server.
func RegisterSchemaTools(s *server.MCPServer, deps *SchemaToolDeps) {
	registerTestConnectionTool(s, deps)
	registerListTablesTool(s, deps)
	registerGetColumnsTool(s, deps)
	registerGetTableMetadataTool(s, deps)
}

type testConnectionResult struct {
	Success bool `json:"success"`
}

func registerTestConnectionTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"test_connection",
		mcp.WithDescription(
			"Check whether the database answers a trivial query. "+
				"Returns success=false rather than an error when it does not.",
		),
		connectionParam(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ok := deps.Schema.TestConnection(ctx, req.GetString("connectionString", ""))
		return jsonResult(testConnectionResult{Success: ok})
	})
}

type listTablesResult struct {
	Tables []string `json:"tables"`
}

func registerListTablesTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"list_tables",
		mcp.WithDescription("List the base tables of the database. Views are excluded."),
		connectionParam(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tables, err := deps.Schema.ListTables(ctx, req.GetString("connectionString", ""))
		if err != nil {
			return errorResult(err)
		}
		if tables == nil {
			tables = []string{}
		}
		return jsonResult(listTablesResult{Tables: tables})
	})
}

func registerGetColumnsTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"get_columns",
		mcp.WithDescription(
			"Describe the columns of a table in ordinal order: name, data type, "+
				"nullability, maximum length and default. An unknown table has no columns.",
		),
		tableParam(),
		connectionParam(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := requireTable(ctx, deps.Auditor, req)
		if err != nil {
			return errorResult(err)
		}
		columns, err := deps.Schema.GetColumns(ctx, table, req.GetString("connectionString", ""))
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(columns)
	})
}

func registerGetTableMetadataTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"get_table_metadata",
		mcp.WithDescription("Return the columns, primary key columns and outgoing foreign keys of a table."),
		tableParam(),
		connectionParam(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := requireTable(ctx, deps.Auditor, req)
		if err != nil {
			return errorResult(err)
		}
		meta, err := deps.Schema.GetTableMetadata(ctx, table, req.GetString("connectionString", ""))
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(meta)
	})
}
