package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
	"github.com/ekaya-inc/ekaya-codegen/pkg/prompts"
	"github.com/ekaya-inc/ekaya-codegen/pkg/retry"
)

func newCompleteCommand(opts *rootOptions) *cobra.Command {
	var (
		connection string
		tables     []string
	)
	cmd := &cobra.Command{
		Use:   "complete [PROMPT]",
		Short: "Send a prompt to the completion endpoint and print the response",
		Long: "Send a prompt to the completion endpoint and print the response. With no argument the prompt is " +
			"drafted from the --table columns, or read from stdin when no table is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}

			var prompt string
			if len(args) == 0 && len(tables) > 0 {
				prompt, err = a.draftPrompt(cmd.Context(), tables, resolveConnectionFlag(connection))
			} else {
				prompt, err = readPrompt(cmd.InOrStdin(), args)
			}
			if err != nil {
				return err
			}

			cfg := retry.WithMaxRetries(a.cfg.Completion.MaxRetries)
			cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
				a.logger.Warn("Retrying completion after transport failure",
					zap.Int("attempt", attempt),
					zap.String("error", logging.SanitizeError(err)))
			}

			// The API key comes from the environment or the stored config only.
			result, err := retry.DoIfRetryable(cmd.Context(), cfg, func(ctx context.Context) (*models.CompletionResult, error) {
				return a.generation.Complete(ctx, models.CompletionRequest{Prompt: prompt})
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Content)
			return err
		},
	}
	addConnectionFlag(cmd, &connection)
	cmd.Flags().StringArrayVar(&tables, "table", nil, "Draft the prompt from this table's columns (repeatable)")
	return cmd
}

// draftPrompt inspects each table and builds the class-generation prompt.
func (a *app) draftPrompt(ctx context.Context, tables []string, conn string) (string, error) {
	contexts := make([]prompts.TableContext, 0, len(tables))
	for _, table := range tables {
		table = strings.TrimSpace(table)
		if err := a.auditor.CheckIdentifier(ctx, "cli", "", "table", table); err != nil {
			return "", err
		}
		cols, err := a.schema.GetColumns(ctx, table, conn)
		if err != nil {
			return "", fmt.Errorf("describe %s: %w", table, err)
		}
		contexts = append(contexts, prompts.NewTableContext(table, cols))
	}
	return prompts.BuildClassPrompt(contexts), nil
}

func readPrompt(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no prompt given: pass it as an argument or on stdin")
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
