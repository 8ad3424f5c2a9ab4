// Package codegen turns table metadata and an example template into
// generated artifact text.
package codegen

import (
	"strings"
	"time"

	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// TimestampLayout is the format of the "// Generated:" header line.
const TimestampLayout = "2006-01-02 15:04:05"

// TemplateName returns the logical template file name for kind.
func TemplateName(kind models.ArtifactKind) string {
	return string(kind) + ".txt"
}

// MergeInput is everything Merge needs to produce one artifact.
type MergeInput struct {
	Kind        models.ArtifactKind
	Template    string
	TableName   string
	Columns     []models.ColumnInfo
	PrimaryKeys []string // rendered for ArtifactRepository only
	GeneratedAt time.Time
}

// Merge renders an artifact: a header naming the table and generation time,
// the template verbatim, then the metadata block as comments. The template is
// opaque text and is never parsed or validated.
//
// Two calls with equal inputs differ only in the "// Generated:" line.
func Merge(in MergeInput) string {
	var b strings.Builder

	if in.Kind == models.ArtifactRepository {
		line(&b, "// Repository for table: "+in.TableName)
	} else {
		line(&b, "// Table: "+in.TableName)
	}
	line(&b, "// Generated: "+in.GeneratedAt.Format(TimestampLayout))
	line(&b, "")
	line(&b, "// Example from "+TemplateName(kindOrModel(in.Kind))+":")
	line(&b, in.Template)
	line(&b, "")
	line(&b, "// Table Metadata:")

	if in.Kind == models.ArtifactRepository {
		line(&b, "// Primary Keys:")
		for _, pk := range in.PrimaryKeys {
			line(&b, "// - "+pk)
		}
	}

	line(&b, "// Columns:")
	for _, c := range in.Columns {
		line(&b, "// - "+c.Name+" ("+c.DataType+")")
	}

	return b.String()
}

func kindOrModel(kind models.ArtifactKind) models.ArtifactKind {
	if kind == models.ArtifactRepository {
		return kind
	}
	return models.ArtifactModel
}

func line(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}
