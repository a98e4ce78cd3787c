package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_AppliesAllMigrations(t *testing.T) {
	db := openDB(t)

	if err := Run(db); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	version, err := GetCurrentVersion(db)
	if err != nil {
		t.Fatalf("GetCurrentVersion() error = %v", err)
	}
	if want := AllMigrations[len(AllMigrations)-1].Version; version != want {
		t.Errorf("version = %d, want %d", version, want)
	}

	// Running again is a no-op
	if err := Run(db); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
}

func TestRun_RenamesLegacyKey(t *testing.T) {
	db := openDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatal(err)
	}
	legacy := `[{"id":"custom-search-1","name":"A","url":"https://a/%s"}]`
	if _, err := db.Exec(`INSERT INTO config_kv (key, value) VALUES ('urls', ?)`, legacy); err != nil {
		t.Fatal(err)
	}

	if err := Run(db); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var value string
	if err := db.QueryRow(`SELECT value FROM config_kv WHERE key = 'templates'`).Scan(&value); err != nil {
		t.Fatalf("templates row: %v", err)
	}
	if value != legacy {
		t.Errorf("templates = %s, want %s", value, legacy)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM config_kv WHERE key = 'urls'`).Scan(&count)
	if count != 0 {
		t.Errorf("legacy key still present")
	}
}
