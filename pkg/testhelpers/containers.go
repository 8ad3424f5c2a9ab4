// Package testhelpers provides database fixtures for ekaya-codegen tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage is the stock image used for PostgreSQL integration tests.
const PostgresImage = "postgres:16-alpine"

// PostgresFixtureDDL creates the shared fixture schema. Identifiers are quoted
// so PostgreSQL keeps their mixed case.
const PostgresFixtureDDL = `
CREATE TABLE "Customers" (
	"Id"   integer PRIMARY KEY,
	"Name" varchar(100) NOT NULL
);
CREATE TABLE "Orders" (
	"Id"         integer NOT NULL PRIMARY KEY,
	"CustomerId" integer NOT NULL REFERENCES "Customers" ("Id"),
	"Total"      numeric(10,2)
);
CREATE TABLE "OrderLines" (
	"OrderId" integer NOT NULL REFERENCES "Orders" ("Id"),
	"LineNo"  integer NOT NULL,
	"Sku"     varchar(20) NOT NULL,
	PRIMARY KEY ("OrderId", "LineNo")
);
CREATE VIEW "OrderTotals" AS
	SELECT "CustomerId", SUM("Total") AS "Total" FROM "Orders" GROUP BY "CustomerId";
`

// TestDB holds a shared PostgreSQL container seeded with the fixture schema.
type TestDB struct {
	Container testcontainers.Container
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "codegen_test",
			"POSTGRES_USER":     "codegen",
			"POSTGRES_PASSWORD": "test_password",
		},
		// The entrypoint restarts the server once after initdb.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://codegen:test_password@%s:%s/codegen_test?sslmode=disable",
		host, port.Port())

	var conn *pgx.Conn
	for i := 0; i < 10; i++ {
		conn, err = pgx.Connect(ctx, connStr)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, PostgresFixtureDDL); err != nil {
		return nil, fmt.Errorf("failed to create fixture schema: %w", err)
	}

	return &TestDB{
		Container: container,
		ConnStr:   connStr,
	}, nil
}
