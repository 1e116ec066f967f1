package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/common"
	"go.etcd.io/bbolt"
)

const boltBucket = "metadata"

// BoltStore implements Store over a single BoltDB bucket. BoltDB allows one
// writer at a time, so Update is naturally serialised.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens (creating if needed) a BoltDB file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open storage db: %w", common.ErrBackendUnavailable, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create bucket: %w", common.ErrBackendUnavailable, err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		// Bolt memory is only valid inside the transaction.
		if v := b.Get([]byte(key)); v != nil {
			value = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %w", common.ErrBackendUnavailable, key, err)
	}
	return value, nil
}

func (s *BoltStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}
	if value == nil {
		value = []byte{}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to set %s: %w", common.ErrBackendUnavailable, key, err)
	}
	return nil
}

func (s *BoltStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete %s: %w", common.ErrBackendUnavailable, key, err)
	}
	return nil
}

func (s *BoltStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	var fnErr error
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}

		var current []byte
		if v := b.Get([]byte(key)); v != nil {
			current = append([]byte{}, v...)
		}

		next, err := fn(current)
		if err != nil {
			fnErr = err
			return err
		}
		if next == nil {
			return b.Delete([]byte(key))
		}
		return b.Put([]byte(key), next)
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

func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func bucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(boltBucket))
	if b == nil {
		return nil, fmt.Errorf("%s bucket is missing", boltBucket)
	}
	return b, nil
}
