package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

type healthResult struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Engines   []string        `json:"engines"`
	Templates map[string]bool `json:"templates,omitempty"`
}

// RegisterHealthTool adds the health tool. It reports the inspectable engines
// and, when templates is non-nil, which example templates are uploaded; the
// status is "degraded" until both are.
func RegisterHealthTool(s *server.MCPServer, version string, templates services.TemplateService) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server status, version, supported database engines and template availability"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := healthResult{Status: "ok", Version: version, Engines: []string{}}
		for _, info := range datasource.RegisteredAdapters() {
			result.Engines = append(result.Engines, info.Type)
		}

		if templates != nil {
			result.Templates = map[string]bool{}
			for _, kind := range []models.ArtifactKind{models.ArtifactModel, models.ArtifactRepository} {
				status, err := templates.Status(ctx, kind)
				exists := err == nil && status.Exists
				result.Templates[string(kind)] = exists
				if !exists {
					result.Status = "degraded"
				}
			}
		}
		return jsonResult(result)
	})
}
