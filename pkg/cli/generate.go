package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-codegen/pkg/codegen"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

type generateOptions struct {
	connection string
	outDir     string
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a model or repository artifact for a table",
	}
	cmd.AddCommand(
		newGenerateKindCommand(opts, models.ArtifactModel),
		newGenerateKindCommand(opts, models.ArtifactRepository),
	)
	return cmd
}

func newGenerateKindCommand(opts *rootOptions, kind models.ArtifactKind) *cobra.Command {
	gen := &generateOptions{}
	cmd := &cobra.Command{
		Use:   string(kind) + " TABLE",
		Short: fmt.Sprintf("Merge table metadata into the uploaded %s template", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			if err := a.auditor.CheckIdentifier(cmd.Context(), "cli", "", "table", table); err != nil {
				return err
			}

			run := a.generation.GenerateModel
			if kind == models.ArtifactRepository {
				run = a.generation.GenerateRepository
			}
			return writeArtifact(cmd, run, models.GenerationRequest{
				TableName:        table,
				ConnectionString: resolveConnectionFlag(gen.connection),
			}, gen.outDir)
		},
	}
	addConnectionFlag(cmd, &gen.connection)
	cmd.Flags().StringVarP(&gen.outDir, "out", "o", "", "Write the artifact into this directory instead of stdout")
	return cmd
}

func writeArtifact(
	cmd *cobra.Command,
	run func(context.Context, models.GenerationRequest) (*models.GenerationResult, error),
	req models.GenerationRequest,
	outDir string,
) error {
	result, err := run(cmd.Context(), req)
	if err != nil {
		return err
	}

	if outDir == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), result.Content)
		return err
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outDir, codegen.ArtifactFileName(result.TableName, string(result.Kind)))
	if err := os.WriteFile(path, []byte(result.Content), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "wrote", path)
	return nil
}
