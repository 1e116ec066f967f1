package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/dmitrijs2005/citywatch/internal/dbx"
)

// SQLiteStore implements Store over the "metadata" table:
//
//	CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);
//
// The *sql.DB should be limited to a single open connection so that Update
// transactions are serialised by the pool instead of failing with SQLITE_BUSY.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := get(ctx, s.db, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %w", common.ErrBackendUnavailable, key, err)
	}
	return v, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := set(ctx, s.db, key, value); err != nil {
		return fmt.Errorf("%w: failed to set %s: %w", common.ErrBackendUnavailable, key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %w", common.ErrBackendUnavailable, key, err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	var fnErr error

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := get(ctx, tx, key)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			fnErr = err
			return err
		}

		if next == nil {
			_, err = tx.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
			return err
		}
		return set(ctx, tx, key, next)
	})

	switch {
	case err == nil:
		return nil
	case fnErr != nil && errors.Is(err, fnErr):
		return fnErr
	default:
		return fmt.Errorf("%w: failed to update %s: %w", common.ErrBackendUnavailable, key, err)
	}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
