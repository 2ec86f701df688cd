package migrations

import (
	"path/filepath"
	"testing"

	"github.com/helousound/site/internal/db"
)

func TestUpCreatesCatalogTables(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	// Running twice is a no-op.
	if err := Up(database); err != nil {
		t.Fatalf("rerun migrations: %v", err)
	}

	for _, table := range []string{"packages", "addons"} {
		var count int
		if err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected table %q to exist", table)
		}
	}

	version, err := Version(database)
	if err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != 1 {
		t.Fatalf("version = %d, want 1", version)
	}
}
