// Package kv is the device-local key-value capability shared by the session
// store and the local incident adapter.
//
// # Overview
//
// Values are opaque byte slices (JSON records in practice) stored under
// string keys. Every write replaces one key's value as a single logical
// record, so readers never observe a torn value. Update performs a
// read-modify-write of one key atomically with respect to other Update calls
// on the same store, which is what keeps overlapping incident submissions
// from losing each other.
//
// # Engines
//
//   - SQLiteStore: a "metadata" table in an SQLite file (modernc.org/sqlite).
//   - BoltStore: a single bucket in a BoltDB file (go.etcd.io/bbolt).
//
// # Errors
//
// Engine I/O failures are wrapped with common.ErrBackendUnavailable. Errors
// returned by an Update callback are passed through unchanged and abort the
// write.
//
// Typical Usage
//
//	store := kv.NewSQLiteStore(db)
//	_ = store.Set(ctx, "user", payload)
//	raw, _ := store.Get(ctx, "user") // nil, nil when absent
//	_ = store.Update(ctx, "incidents", func(cur []byte) ([]byte, error) { ... })
package kv
