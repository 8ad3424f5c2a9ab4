package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/ekaya-codegen/pkg/audit"
)

// stringArg returns the named string argument without surrounding
// whitespace, or "" when absent.
func stringArg(req mcp.CallToolRequest, name string) string {
	return strings.TrimSpace(req.GetString(name, ""))
}

// connectionParam is shared by every tool that touches the database.
func connectionParam() mcp.ToolOption {
	return mcp.WithString(
		"connectionString",
		mcp.Description("Database connection string. Omit to use the stored connection."),
	)
}

// tableParam is the required table name parameter.
func tableParam() mcp.ToolOption {
	return mcp.WithString(
		"table",
		mcp.Required(),
		mcp.Description("Name of the table to inspect"),
	)
}

// requireTable reads and screens the table parameter.
func requireTable(ctx context.Context, auditor *audit.SecurityAuditor, req mcp.CallToolRequest) (string, error) {
	table := stringArg(req, "table")
	if err := auditor.CheckIdentifier(ctx, "mcp", "", "table", table); err != nil {
		return "", err
	}
	return table, nil
}

// jsonResult marshals v as the text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
