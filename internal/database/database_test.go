package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMigrateSchema_CreatesTables(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, MemoryPath, testLogger())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateSchema(db, testLogger()); err != nil {
		t.Fatalf("MigrateSchema: %v", err)
	}

	for _, table := range []string{"users", "roles", "permissions", "user_roles", "role_permissions"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("таблица %s не создана: %v", table, err)
		}
	}

	// Повторный запуск — ErrNoChange, не ошибка
	if err := MigrateSchema(db, testLogger()); err != nil {
		t.Fatalf("повторный MigrateSchema: %v", err)
	}
}

func TestConnect_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dev.db")

	db, err := Connect(context.Background(), path, testLogger())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	status, msg := NewReadinessChecker(db).CheckReady()
	if status != "ok" {
		t.Errorf("CheckReady = %q (%s), ожидался ok", status, msg)
	}
}

func TestReadinessChecker_ClosedDB(t *testing.T) {
	db, err := Connect(context.Background(), MemoryPath, testLogger())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	_ = db.Close()

	status, _ := NewReadinessChecker(db).CheckReady()
	if status != "fail" {
		t.Errorf("CheckReady = %q, ожидался fail для закрытой БД", status)
	}
}
