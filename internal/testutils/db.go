package testutils

import (
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB wraps a GORM database connection for testing
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB opens a fresh sqlite database in a temp dir and migrates the given models.
// The database is closed when the test ends.
func NewTestDB(t *testing.T, models ...interface{}) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kwoatle_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	testDB := &TestDB{DB: db}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("Failed to run migrations: %v", err)
		}
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// Close closes the underlying connection pool
func (tdb *TestDB) Close() {
	if sqlDB, err := tdb.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// Truncate removes all rows from the given tables
func (tdb *TestDB) Truncate(tables ...string) {
	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}
