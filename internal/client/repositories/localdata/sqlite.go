package localdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/imctrack/imctrack/internal/common"
	"github.com/imctrack/imctrack/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the blob stored under key, common.ErrNotFound when absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM localdata WHERE key = ?`
	var value []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the blob stored under key.
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO localdata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert key %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM localdata WHERE key = ?`
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// DeleteMany removes the given keys. When the repository is bound to a
// plain connection the deletes run inside a single transaction, so either
// all keys go or none do; inside an existing transaction they join it.
func (r *SQLiteRepository) DeleteMany(ctx context.Context, keys ...string) error {
	db, ok := r.db.(*sql.DB)
	if !ok {
		return deleteKeys(ctx, r.db, keys)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return deleteKeys(ctx, tx, keys)
	})
}

func deleteKeys(ctx context.Context, db dbx.DBTX, keys []string) error {
	query := `DELETE FROM localdata WHERE key = ?`
	for _, key := range keys {
		if _, err := db.ExecContext(ctx, query, key); err != nil {
			return fmt.Errorf("failed to delete key %q: %w", key, err)
		}
	}
	return nil
}
