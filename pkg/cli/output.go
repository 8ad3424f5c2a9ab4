package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// addConnectionFlag registers --connection. Prefer the environment variable:
// flags are visible in process listings.
func addConnectionFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "connection", "",
		"Database connection string (default $"+connectionEnvVar+", then the stored connection)")
}

func resolveConnectionFlag(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(connectionEnvVar)
}

func addFormatFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "format", formatJSON, "Output format: json or yaml")
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown output format %q", format))
	}
}
