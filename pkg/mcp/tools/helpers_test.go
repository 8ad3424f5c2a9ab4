package tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
)

func TestStringArg(t *testing.T) {
	req := callRequest(map[string]any{
		"padded":  " \t\nOrders\n\t ",
		"blank":   "   ",
		"numeric": 42,
	})

	assert.Equal(t, "Orders", stringArg(req, "padded"))
	assert.Equal(t, "", stringArg(req, "blank"))
	assert.Equal(t, "", stringArg(req, "missing"))
	assert.Equal(t, "", stringArg(req, "numeric"))
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestRequireTable(t *testing.T) {
	table, err := requireTable(context.Background(), nil, callRequest(map[string]any{"table": "  Orders "}))
	require.NoError(t, err)
	assert.Equal(t, "Orders", table)

	for _, bad := range []any{nil, "", "   ", "1 UNION SELECT * FROM users"} {
		args := map[string]any{}
		if bad != nil {
			args["table"] = bad
		}
		_, err := requireTable(context.Background(), nil, callRequest(args))
		assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err), "input %v", bad)
	}
}
