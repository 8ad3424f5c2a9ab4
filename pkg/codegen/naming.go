package codegen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
)

// EntityName derives a singular, capitalized type name from a table name:
// "orders" -> "Order", "order_lines" -> "OrderLine", "dbo.People" -> "Person".
func EntityName(table string) string {
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		table = table[i+1:]
	}
	table = strings.Trim(table, "[]\"` ")

	parts := strings.FieldsFunc(table, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(parts) == 0 {
		return ""
	}
	parts[len(parts)-1] = inflection.Singular(parts[len(parts)-1])

	var b strings.Builder
	for _, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(p[size:])
	}
	return b.String()
}

// ArtifactFileName suggests a file name for a generated artifact, for example
// "Order.repository.txt".
func ArtifactFileName(table, kind string) string {
	name := EntityName(table)
	if name == "" {
		name = "Artifact"
	}
	return name + "." + kind + ".txt"
}
