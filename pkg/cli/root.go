// Package cli is the ekaya-codegen command line: the HTTP and MCP servers plus
// one-shot schema, generation and completion commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register every supported database engine.
	_ "github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource/mssql"
	_ "github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource/mysql"
	_ "github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource/postgres"
	_ "github.com/ekaya-inc/ekaya-codegen/pkg/adapters/datasource/sqlite"
)

// connectionEnvVar supplies a connection string to one-shot commands without
// putting it on the command line.
const connectionEnvVar = "CODEGEN_CONNECTION_STRING"

type rootOptions struct {
	version    string
	configPath string
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	root := &cobra.Command{
		Use:   "ekaya-codegen",
		Short: "Generate model and repository code from a live database schema",
		Long: `ekaya-codegen inspects a relational database, merges table metadata into
uploaded example templates to produce model and repository classes, and
forwards free-form prompts to a text-completion endpoint.

It runs as an HTTP service, as an MCP server, or as one-shot commands.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (default ./config.yaml)")

	root.AddCommand(
		newServeCommand(opts),
		newMCPCommand(opts),
		newTestConnectionCommand(opts),
		newTablesCommand(opts),
		newColumnsCommand(opts),
		newGenerateCommand(opts),
		newCompleteCommand(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
