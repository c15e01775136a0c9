package database_test

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"strconv"
	"strings"
	"testing"

	"reseller_hub/internal/database"
	"reseller_hub/internal/database/databasetest"
)

func TestOpenMigratesSchema(t *testing.T) {
	db := databasetest.Open(t)
	for _, table := range []string{"users", "financial_settings", "items", "resellers", "orders"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s missing", table)
		}
	}
	if err := database.Ping(context.Background(), db); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestPingAfterClose(t *testing.T) {
	db, err := database.Initialize("sqlite://file:pingclosed?mode=memory")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := database.Close(db); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := database.Ping(context.Background(), db); err == nil {
		t.Error("Ping succeeded on a closed pool")
	}
}

// The server and CLI link this package; test helpers live in databasetest.
func TestPackageDoesNotImportTesting(t *testing.T) {
	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, imp := range f.Imports {
			if path, _ := strconv.Unquote(imp.Path.Value); path == "testing" {
				t.Errorf("%s imports testing", name)
			}
		}
	}
}
