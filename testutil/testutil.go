package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// EnsureTestEnvironment defaults GO_ENV to "test" and refuses to continue under any other value.
// Call it from TestMain so a stray GO_ENV=production never points tests at a real database.
func EnsureTestEnvironment() error {
	env := os.Getenv("GO_ENV")
	if env == "" {
		if err := os.Setenv("GO_ENV", "test"); err != nil {
			return fmt.Errorf("failed to set GO_ENV=test: %w", err)
		}
		return nil
	}
	if env != "test" {
		return fmt.Errorf("SAFETY CHECK FAILED: tests must run with GO_ENV=test to prevent data loss (GO_ENV=%q, DATABASE_URL=%s)",
			env, MaskDatabaseURL(os.Getenv("DATABASE_URL")))
	}
	return nil
}

// MustEnsureTestEnvironment is EnsureTestEnvironment for TestMain: it exits the process on failure
func MustEnsureTestEnvironment() {
	if err := EnsureTestEnvironment(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewSQLiteDB opens a private in-memory sqlite database closed when t ends.
// A single connection keeps every query on the same in-memory database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// MaskDatabaseURL hides credentials so a connection string can be printed
func MaskDatabaseURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***" + rest[at:]
	}
	return scheme + "://" + rest
}
