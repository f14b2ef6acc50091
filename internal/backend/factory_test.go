package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spendlens/internal/config"
	"spendlens/internal/core"
	"spendlens/internal/source/google"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, ""},
		{"unknown", Config{Type: "mongo"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path"},
		{"postgres without url", Config{Type: PostgresBackend}, "postgres URL"},
		{"sheets without id", Config{Type: SheetsBackend}, "spreadsheet ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should fail")
	}

	app := &config.Config{
		DataBackend:              config.BackendSheets,
		GoogleSpreadsheetID:      "sheet-1",
		GoogleExpensesSheet:      "Spese",
		GoogleServiceAccountFile: "/secrets/sa.json",
		CategoryCacheSize:        8,
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SheetsBackend || cfg.Sheets.ExpensesSheet != "Spese" || cfg.Sheets.ServiceAccountFile != "/secrets/sa.json" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestOpenMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte("Rent,#111111,home\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := NewFactory(nil).Open(context.Background(), Config{Type: MemoryBackend, SeedDir: dir, DefaultUserID: "local", CategoryCacheSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	cats, err := b.Categories.ListCategories(context.Background(), "local")
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].Name != "Rent" {
		t.Errorf("categories = %+v", cats)
	}
	if err := b.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}

func TestOpenSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "spendlens.db")

	b, err := NewFactory(nil).Open(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path, CategoryCacheSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := b.Ping(ctx); err != nil {
		t.Fatalf("Ping() = %v", err)
	}
	cat := core.Category{ID: "c1", UserID: "u1", Name: "Food", Color: "#FF0000"}
	if err := b.Categories.CreateCategory(ctx, cat); err != nil {
		t.Fatal(err)
	}
	cats, err := b.Categories.ListCategories(ctx, "u1")
	if err != nil || len(cats) != 1 {
		t.Fatalf("ListCategories() = %v, %v", cats, err)
	}
}

func TestOpenMirrorDisabled(t *testing.T) {
	client, err := OpenMirror(context.Background(), false, google.Config{})
	if client != nil || err != nil {
		t.Errorf("OpenMirror(disabled) = %v, %v", client, err)
	}
}
