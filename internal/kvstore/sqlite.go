package kvstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bigkaa/goartstore/admin-console/internal/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore — Store в файле SQLite. Переживает перезапуск CLI.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite открывает (создаёт) файл состояния и применяет миграции.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := database.Connect(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, migrationsFS, "migrations", "kv_schema_migrations", logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Get возвращает значение или ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("чтение ключа %q: %w", key, err)
	}
	return val, nil
}

// Set добавляет или заменяет значение.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("запись ключа %q: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("удаление ключа %q: %w", key, err)
	}
	return nil
}

// Close закрывает файл состояния.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
