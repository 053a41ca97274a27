package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"
)

const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"

	// TokenKey is the fixed name the session token is persisted under.
	TokenKey = "token"
)

const schema = `CREATE TABLE IF NOT EXISTS settings (
	name  VARCHAR PRIMARY KEY,
	value VARCHAR NOT NULL
)`

// Open opens the local settings database with the given driver and makes sure
// its schema exists. Missing parent directories are created.
func Open(driver, path string) (*sql.DB, error) {
	switch driver {
	case DriverDuckDB, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}

	return db, nil
}

// Repository is the durable client-local key/value storage. The client keeps
// exactly one pair in it: the session token.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) get(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, nil
}

func (r *Repository) set(ctx context.Context, name, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`, name, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", name, err)
	}
	return nil
}

// Token returns the persisted session token, or "" when there is none.
func (r *Repository) Token(ctx context.Context) (string, error) {
	return r.get(ctx, TokenKey)
}

func (r *Repository) SaveToken(ctx context.Context, token string) error {
	return r.set(ctx, TokenKey, token)
}

// DeleteToken removes the persisted token. Removing an absent token is a no-op.
func (r *Repository) DeleteToken(ctx context.Context) error {
	return r.delete(ctx, TokenKey)
}

func (r *Repository) Close() error {
	return r.db.Close()
}
