package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/helousound/site/internal/catalog"
	"github.com/helousound/site/internal/db"
	"github.com/helousound/site/internal/migrations"
)

func TestRunCanonicalIsIdempotent(t *testing.T) {
	database := newSeedTestDB(t)
	ctx := context.Background()

	packages, addons := catalog.CanonicalRecords()
	expectedInserts := len(packages) + len(addons)

	for i := 0; i < 10; i++ {
		stats, err := RunCanonical(ctx, database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != expectedInserts {
				t.Fatalf("expected %d inserts in first run, got %d", expectedInserts, stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Updates != 0 {
			t.Fatalf("expected no writes in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM packages`, nil, len(packages))
	assertCount(t, database, `SELECT COUNT(*) FROM addons`, nil, len(addons))
	assertCount(t, database, `SELECT COUNT(*) FROM packages WHERE name = ?`, "Narrative Film", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM addons WHERE name = ?`, "Timecode Sync Box", 1)
}

func TestRunUpdatesDriftedPrices(t *testing.T) {
	database := newSeedTestDB(t)
	ctx := context.Background()

	if _, err := RunCanonical(ctx, database); err != nil {
		t.Fatalf("initial seed: %v", err)
	}
	if _, err := database.Exec(`UPDATE packages SET price_per_day = '500.00' WHERE name = ?`, "Narrative Film"); err != nil {
		t.Fatalf("simulate drift: %v", err)
	}

	stats, err := RunCanonical(ctx, database)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if stats.Updates != 1 || stats.Inserts != 0 {
		t.Fatalf("expected exactly one update, got %+v", stats)
	}

	loaded, err := catalog.Load(ctx, database)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	pkg, ok := loaded.FindPackage("Narrative Film")
	if !ok {
		t.Fatalf("expected Narrative Film after reseed")
	}
	if !pkg.PricePerDay.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("price = %s, want 750", pkg.PricePerDay)
	}
}

func newSeedTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "seed-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
