package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newTestConnectionCommand(opts *rootOptions) *cobra.Command {
	var connection string
	cmd := &cobra.Command{
		Use:   "test-connection",
		Short: "Check that the database answers a trivial query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			if !a.schema.TestConnection(cmd.Context(), resolveConnectionFlag(connection)) {
				return errors.New("connection failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "connection ok")
			return nil
		},
	}
	addConnectionFlag(cmd, &connection)
	return cmd
}

func newTablesCommand(opts *rootOptions) *cobra.Command {
	var connection string
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List base tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			tables, err := a.schema.ListTables(cmd.Context(), resolveConnectionFlag(connection))
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	addConnectionFlag(cmd, &connection)
	return cmd
}

func newColumnsCommand(opts *rootOptions) *cobra.Command {
	var (
		connection string
		metadata   bool
		format     string
	)
	cmd := &cobra.Command{
		Use:   "columns TABLE",
		Short: "Describe a table's columns as JSON or YAML",
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
			conn := resolveConnectionFlag(connection)
			if metadata {
				meta, err := a.schema.GetTableMetadata(cmd.Context(), table, conn)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), format, meta)
			}
			cols, err := a.schema.GetColumns(cmd.Context(), table, conn)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, cols)
		},
	}
	addConnectionFlag(cmd, &connection)
	cmd.Flags().BoolVar(&metadata, "metadata", false, "Include primary and foreign keys")
	addFormatFlag(cmd, &format)
	return cmd
}
