package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-codegen/pkg/mcp"
)

func newMCPCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Long:  "Serve the MCP tools over stdin/stdout for local MCP clients. Logs go to stderr.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := mcp.NewCodegenServer(a.cfg.Version, mcp.Deps{
				Schema:     a.schema,
				Generation: a.generation,
				Templates:  a.templates,
				MaxRetries: a.cfg.Completion.MaxRetries,
			}, a.logger)
			return server.ServeStdio(ctx, os.Stdin, os.Stdout)
		},
	}
}
