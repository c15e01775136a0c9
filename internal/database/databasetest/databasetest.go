// Package databasetest opens throwaway sqlite databases for package tests.
package databasetest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"reseller_hub/internal/database"
)

var memCounter atomic.Int64

// Open returns a migrated, private in-memory sqlite database that is closed
// when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	url := fmt.Sprintf("sqlite://file:hubtest%d?mode=memory&cache=shared", memCounter.Add(1))
	db, err := database.Initialize(url)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(database.Schema()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}
