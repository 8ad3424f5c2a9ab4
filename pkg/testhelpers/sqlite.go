package testhelpers

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteFixtureDDL mirrors PostgresFixtureDDL for SQLite. Orders deliberately
// declares its columns in non-alphabetical order.
const SQLiteFixtureDDL = `
CREATE TABLE Customers (
	Id   INT PRIMARY KEY,
	Name VARCHAR(100) NOT NULL
);
CREATE TABLE Orders (
	Id         INT NOT NULL PRIMARY KEY,
	CustomerId INT NOT NULL REFERENCES Customers (Id),
	Total      DECIMAL(10,2)
);
CREATE TABLE OrderLines (
	OrderId INT NOT NULL REFERENCES Orders (Id),
	LineNo  INT NOT NULL,
	Sku     VARCHAR(20) NOT NULL DEFAULT 'UNKNOWN',
	PRIMARY KEY (OrderId, LineNo)
);
CREATE VIEW OrderTotals AS
	SELECT CustomerId, SUM(Total) AS Total FROM Orders GROUP BY CustomerId;
`

// NewSQLiteFixture creates a database file in a temporary directory, applies
// ddl (SQLiteFixtureDDL when empty) and returns the file path, which doubles
// as a connection string.
func NewSQLiteFixture(t *testing.T, ddl string) string {
	t.Helper()

	if ddl == "" {
		ddl = SQLiteFixtureDDL
	}

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open sqlite fixture: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("failed to create sqlite fixture schema: %v", err)
	}
	return path
}
