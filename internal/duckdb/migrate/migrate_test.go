package migrate

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
)

const wantVersion = 2

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunAppliesAllMigrations(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	applied, err := NewRunner(db).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(applied) != wantVersion {
		t.Errorf("applied %d migrations (%v), want %d", len(applied), applied, wantVersion)
	}

	for _, table := range []string{"vessels", "alerts", "catches", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(openTestDB(t))

	if _, err := r.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	applied, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second Run applied %v, want nothing", applied)
	}

	cur, pending, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != wantVersion || pending != 0 {
		t.Errorf("expected version=%d pending=0, got version=%d pending=%d", wantVersion, cur, pending)
	}
}

func TestStatusBeforeRun(t *testing.T) {
	cur, pending, err := NewRunner(openTestDB(t)).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != 0 || pending != wantVersion {
		t.Errorf("before run: expected version=0 pending=%d, got version=%d pending=%d", wantVersion, cur, pending)
	}
}
