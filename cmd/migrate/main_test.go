package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationFiles_SplitsAndOrders(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"002_tags.sql",
		"001_saved_paths.sql",
		"001_saved_paths.down.sql",
		"002_tags.down.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	up, down, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantUp := []string{filepath.Join(dir, "001_saved_paths.sql"), filepath.Join(dir, "002_tags.sql")}
	wantDown := []string{filepath.Join(dir, "001_saved_paths.down.sql"), filepath.Join(dir, "002_tags.down.sql")}
	if len(up) != 2 || up[0] != wantUp[0] || up[1] != wantUp[1] {
		t.Errorf("up = %v, want %v", up, wantUp)
	}
	if len(down) != 2 || down[0] != wantDown[0] || down[1] != wantDown[1] {
		t.Errorf("down = %v, want %v", down, wantDown)
	}
}

func TestMigrationFiles_MissingDir(t *testing.T) {
	if _, _, err := migrationFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestMigrationFiles_RepoScriptsPaired(t *testing.T) {
	up, down, err := migrationFiles(filepath.Join("..", "..", migrationsDir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(up) == 0 || len(up) != len(down) {
		t.Fatalf("expected paired migrations, got %d up and %d down", len(up), len(down))
	}
}
