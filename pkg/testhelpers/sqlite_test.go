package testhelpers

import (
	"database/sql"
	"testing"
)

func TestNewSQLiteFixture_CreatesSchema(t *testing.T) {
	path := NewSQLiteFixture(t, "")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'").Scan(&count); err != nil {
		t.Fatalf("failed to count tables: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 tables, got %d", count)
	}
}
