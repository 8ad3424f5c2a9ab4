package models

// ColumnInfo describes one column of a table as reported by the database's
// metadata views. The optional fields are captured for completeness; the
// template merger only consumes Name and DataType.
type ColumnInfo struct {
	Name            string  `json:"columnName" yaml:"columnName" db:"column_name"`
	DataType        string  `json:"dataType" yaml:"dataType" db:"data_type"`
	OrdinalPosition int     `json:"ordinalPosition" yaml:"ordinalPosition" db:"ordinal_position"`
	IsNullable      bool    `json:"isNullable" yaml:"isNullable" db:"is_nullable"`
	MaxLength       *int64  `json:"maxLength,omitempty" yaml:"maxLength,omitempty" db:"max_length"`
	DefaultValue    *string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty" db:"default_value"`
}

// ForeignKeyInfo is a single column-level reference to another table.
type ForeignKeyInfo struct {
	ColumnName       string `json:"columnName" yaml:"columnName" db:"column_name"`
	ReferencedTable  string `json:"referencedTable" yaml:"referencedTable" db:"referenced_table"`
	ReferencedColumn string `json:"referencedColumn" yaml:"referencedColumn" db:"referenced_column"`
}

// TableMetadata groups everything the inspector knows about one table.
// PrimaryKeys carries no ordering guarantee.
type TableMetadata struct {
	TableName   string           `json:"tableName" yaml:"tableName"`
	Columns     []ColumnInfo     `json:"columns" yaml:"columns"`
	PrimaryKeys []string         `json:"primaryKeys" yaml:"primaryKeys"`
	ForeignKeys []ForeignKeyInfo `json:"foreignKeys" yaml:"foreignKeys"`
}
