package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// TableContext is the slice of table metadata a drafted prompt mentions.
type TableContext struct {
	Name    string
	Columns []ColumnContext
}

// ColumnContext provides column details for the drafted prompt.
type ColumnContext struct {
	Name     string
	DataType string
}

// NewTableContext converts inspected columns into prompt context.
func NewTableContext(table string, columns []models.ColumnInfo) TableContext {
	tc := TableContext{Name: table, Columns: make([]ColumnContext, 0, len(columns))}
	for _, c := range columns {
		tc.Columns = append(tc.Columns, ColumnContext{Name: c.Name, DataType: c.DataType})
	}
	return tc
}

// BuildClassPrompt drafts a completion prompt asking for a database class
// covering tables. Tables without columns are named but not described.
func BuildClassPrompt(tables []TableContext) string {
	var prompt strings.Builder

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	list := "all tables"
	if len(names) > 0 {
		list = strings.Join(names, ", ")
	}
	prompt.WriteString(fmt.Sprintf("generate a database class for the tables: %s", list))

	if !hasColumns(tables) {
		return prompt.String()
	}

	prompt.WriteString("\n\nTable information:")
	for _, t := range tables {
		if len(t.Columns) == 0 {
			continue
		}
		cols := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, fmt.Sprintf("%s (%s)", c.Name, c.DataType))
		}
		prompt.WriteString(fmt.Sprintf("\n- %s: %s", t.Name, strings.Join(cols, ", ")))
	}
	return prompt.String()
}

func hasColumns(tables []TableContext) bool {
	for _, t := range tables {
		if len(t.Columns) > 0 {
			return true
		}
	}
	return false
}
