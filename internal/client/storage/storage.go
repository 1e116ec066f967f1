// Package storage opens the configured persistence engines, applies the
// embedded schema migrations and hands out the stores the session and
// incident layers are built on.
//
// The session pointer always lives on the device, tagged with the backend
// that issued it. Accounts and incidents
// live on the device in local mode and in PostgreSQL in remote mode.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/citywatch/internal/client/backend"
	"github.com/dmitrijs2005/citywatch/internal/client/backend/local"
	"github.com/dmitrijs2005/citywatch/internal/client/backend/remote"
	"github.com/dmitrijs2005/citywatch/internal/client/config"
	"github.com/dmitrijs2005/citywatch/internal/client/migrations"
	"github.com/dmitrijs2005/citywatch/internal/client/repositories/kv"
	"github.com/dmitrijs2005/citywatch/internal/client/session"
	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/dmitrijs2005/citywatch/internal/filex"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type Repositories struct {
	Sessions  kv.Store
	Directory session.Directory
	Incidents backend.Adapter

	closers []io.Closer
}

// Close releases every engine opened by Init.
func (r *Repositories) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}
	return errors.Join(errs...)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// openRemoteDB is a seam for testing the PostgreSQL connection.
var openRemoteDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// RunMigrations applies the embedded migrations in dir using the goose dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}

// Init opens the stores selected by cfg. rec may be nil.
func Init(ctx context.Context, cfg *config.Config, rec backend.Recorder) (*Repositories, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repos := &Repositories{}

	device, err := openDevice(ctx, cfg)
	if err != nil {
		return nil, err
	}
	repos.Sessions = device
	repos.closers = append(repos.closers, device)

	switch cfg.Backend {
	case config.BackendRemote:
		db, err := openRemote(ctx, cfg.DatabaseDSN)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
		repos.closers = append(repos.closers, db)
		repos.Directory = remote.NewDirectory(db)
		repos.Incidents = remote.NewAdapter(db)
	default:
		repos.Directory = local.NewDirectory(device)
		repos.Incidents = local.NewAdapter(device)
	}

	repos.Incidents = backend.Instrument(repos.Incidents, rec)
	return repos, nil
}

func openDevice(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	if _, err := filex.EnsureParentDir(cfg.LocalPath); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	if cfg.LocalEngine == config.EngineBolt {
		return kv.OpenBoltStore(cfg.LocalPath)
	}

	db, err := sql.Open("sqlite", cfg.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrBackendUnavailable, cfg.LocalPath, err)
	}
	// One connection keeps kv updates serialised.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, "sqlite3", migrations.LocalDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}
	return kv.NewSQLiteStore(db), nil
}

func openRemote(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := openRemoteDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open remote db: %w", common.ErrBackendUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping remote db: %w", common.ErrBackendUnavailable, err)
	}
	if err := RunMigrations(ctx, db, "pgx", migrations.RemoteDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}
	return db, nil
}
