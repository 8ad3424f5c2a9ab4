// Package mcp exposes schema inspection and code generation as MCP tools.
package mcp

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/audit"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
	"github.com/ekaya-inc/ekaya-codegen/pkg/mcp/tools"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "ekaya-codegen"

// Deps are the services the MCP tools call into.
type Deps struct {
	Schema     services.SchemaService
	Generation services.GenerationService
	// Templates is optional; the health tool reports template presence when set.
	Templates  services.TemplateService
	MaxRetries int
}

// Server wraps the mcp-go MCPServer with ekaya-codegen patterns.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a new MCP server instance with no tools registered.
func NewServer(name, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{logger: logger.Named("mcp")}
	s.mcp = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.logToolCalls),
	)
	return s
}

// NewCodegenServer creates a server with the health, schema and generation
// tools registered.
func NewCodegenServer(version string, deps Deps, logger *zap.Logger) *Server {
	s := NewServer(ServerName, version, logger)
	auditor := audit.NewSecurityAuditor(logger)
	tools.RegisterHealthTool(s.mcp, version, deps.Templates)
	tools.RegisterSchemaTools(s.mcp, &tools.SchemaToolDeps{
		Schema:  deps.Schema,
		Auditor: auditor,
		Logger:  s.logger,
	})
	tools.RegisterGenerationTools(s.mcp, &tools.GenerationToolDeps{
		Generation: deps.Generation,
		Auditor:    auditor,
		MaxRetries: deps.MaxRetries,
		Logger:     s.logger,
	})
	return s
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The HTTP mux handles routing to /mcp, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// ServeStdio serves the MCP protocol over in and out until ctx is cancelled
// or in closes. Logs must not go to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	return stdio.Listen(ctx, in, out)
}

// RegisterTool is a convenience wrapper for registering a tool.
func (s *Server) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
}

// logToolCalls logs each tool call's outcome. Arguments are never logged;
// they may carry connection strings and API keys.
func (s *Server) logToolCalls(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := logging.WithContext(ctx, s.logger)
		result, err := next(ctx, req)
		switch {
		case err != nil:
			logger.Error("Tool call failed",
				zap.String("tool", req.Params.Name),
				zap.String("error", logging.SanitizeError(err)))
		case result != nil && result.IsError:
			logger.Info("Tool call returned error result", zap.String("tool", req.Params.Name))
		default:
			logger.Debug("Tool call succeeded", zap.String("tool", req.Params.Name))
		}
		return result, err
	}
}
