package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/audit"
	"github.com/ekaya-inc/ekaya-codegen/pkg/codegen"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/retry"
	"github.com/ekaya-inc/ekaya-codegen/pkg/services"
)

// GenerationToolDeps contains dependencies for the generation tools.
type GenerationToolDeps struct {
	Generation services.GenerationService
	Auditor    *audit.SecurityAuditor // nil screens without auditing
	MaxRetries int
	Logger     *zap.Logger
}

// RegisterGenerationTools adds create_model, create_repository and
// complete_code to the MCP server.
func RegisterGenerationTools(s *server.MCPServer, deps *GenerationToolDeps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	registerArtifactTool(s, deps, "create_model",
		"Generate a model class for a table from the uploaded model template. "+
			"Returns the artifact text and a suggested file name; nothing is written to disk.",
		deps.Generation.GenerateModel)
	registerArtifactTool(s, deps, "create_repository",
		"Generate a repository class for a table from the uploaded repository template, "+
			"including its primary key columns. Returns the artifact text and a suggested file name.",
		deps.Generation.GenerateRepository)
	registerCompleteCodeTool(s, deps)
}

type artifactResult struct {
	*models.GenerationResult
	FileName string `json:"fileName"`
}

func registerArtifactTool(
	s *server.MCPServer,
	deps *GenerationToolDeps,
	name, description string,
	run func(context.Context, models.GenerationRequest) (*models.GenerationResult, error),
) {
	tool := mcp.NewTool(
		name,
		mcp.WithDescription(description),
		tableParam(),
		connectionParam(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := requireTable(ctx, deps.Auditor, req)
		if err != nil {
			return errorResult(err)
		}

		result, err := run(ctx, models.GenerationRequest{
			TableName:        table,
			ConnectionString: req.GetString("connectionString", ""),
		})
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(artifactResult{
			GenerationResult: result,
			FileName:         codegen.ArtifactFileName(result.TableName, string(result.Kind)),
		})
	})
}

func registerCompleteCodeTool(s *server.MCPServer, deps *GenerationToolDeps) {
	tool := mcp.NewTool(
		"complete_code",
		mcp.WithDescription(
			"Send a prompt to the configured completion endpoint and return the full response text. "+
				"Transport failures are retried; upstream rejections are returned as errors.",
		),
		mcp.WithString(
			"prompt",
			mcp.Required(),
			mcp.Description("Prompt text sent as a single user message"),
		),
		mcp.WithString(
			"apiKey",
			mcp.Description("API key for this call. Omit to use the stored or configured key."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	cfg := retry.WithMaxRetries(deps.MaxRetries)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := logging.WithContext(ctx, deps.Logger)
		retryCfg := *cfg
		retryCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
			logger.Warn("Retrying complete_code after transport failure",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.String("error", logging.SanitizeError(err)))
		}

		request := models.CompletionRequest{
			Prompt: req.GetString("prompt", ""),
			APIKey: stringArg(req, "apiKey"),
		}
		result, err := retry.DoIfRetryable(ctx, &retryCfg, func(ctx context.Context) (*models.CompletionResult, error) {
			return deps.Generation.Complete(ctx, request)
		})
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(result)
	})
}
