package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/handlers"
	"github.com/ekaya-inc/ekaya-codegen/pkg/mcp"
	"github.com/ekaya-inc/ekaya-codegen/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the MCP streamable HTTP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serveHTTP(ctx)
		},
	}
}

// routes builds the full HTTP handler: API routes, /mcp, and the middleware chain.
func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	handlers.NewHealthHandler(a.cfg, a.templates, a.logger).RegisterRoutes(mux)
	handlers.NewSchemaHandler(a.schema, a.logger).RegisterRoutes(mux)
	handlers.NewGenerationHandler(a.generation, a.cfg.Completion.MaxRetries, a.logger).RegisterRoutes(mux)
	handlers.NewTemplateHandler(a.templates, a.logger).RegisterRoutes(mux)
	handlers.NewConfigHandler(a.stored, a.logger).RegisterRoutes(mux)

	mcpServer := mcp.NewCodegenServer(a.cfg.Version, mcp.Deps{
		Schema:     a.schema,
		Generation: a.generation,
		Templates:  a.templates,
		MaxRetries: a.cfg.Completion.MaxRetries,
	}, a.logger)
	handlers.NewMCPHandler(mcpServer, a.logger).RegisterRoutes(mux)

	var h http.Handler = mux
	h = middleware.Timeout(a.cfg.RequestTimeout)(h)
	h = middleware.RequestLogger(a.logger)(h)
	h = middleware.RequestID()(h)
	return h
}

func (a *app) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr(),
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streamed completions may run up to the request timeout.
		WriteTimeout: a.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting ekaya-codegen",
			zap.String("addr", srv.Addr),
			zap.String("version", a.cfg.Version),
			zap.String("env", a.cfg.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
