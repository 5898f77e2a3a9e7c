// Package app exposes the four operations the host shell invokes:
// Connect, Disconnect, Execute and ListTables.
package app

import (
	"context"

	"github.com/bgunnarsson/dbhub/internal/db"
	"github.com/bgunnarsson/dbhub/internal/db/mysql"
	"github.com/bgunnarsson/dbhub/internal/db/postgres"
	"github.com/bgunnarsson/dbhub/internal/db/sqlite"
)

// App is the database-access core: a registry of live pools plus the
// operations on it. State lives only in process memory; exit drops
// every handle.
type App struct {
	registry *db.Registry
}

func New() *App {
	return &App{registry: db.NewRegistry()}
}

// central factory, one arm per backend
func openPool(ctx context.Context, kind db.Kind, connString string) (*db.Pool, error) {
	switch kind {
	case db.KindPostgres:
		return postgres.Open(ctx, connString)
	case db.KindMySQL:
		return mysql.Open(ctx, connString)
	case db.KindSQLite:
		return sqlite.Open(ctx, connString)
	default:
		return nil, db.ErrUnsupported
	}
}

// Connect classifies the connection string, builds a pool for that
// backend and registers it. The returned handle names the pool in
// every later call. Construction happens before the registry is
// touched, so its lock never covers I/O. Driver errors surface
// verbatim; there are no retries.
func (a *App) Connect(ctx context.Context, connString string) (string, error) {
	kind := db.Detect(connString)
	if kind == db.KindUnknown {
		return "", db.ErrUnsupported
	}

	pool, err := openPool(ctx, kind, connString)
	if err != nil {
		return "", err
	}

	handle := a.registry.NewHandle()
	a.registry.Insert(handle, pool)
	return handle, nil
}

// Disconnect removes the handle and closes its pool, in that order.
// Calls that already resolved the pool drain before close finishes;
// calls arriving after Disconnect returns see ErrNotFound.
func (a *App) Disconnect(handle string) error {
	pool, ok := a.registry.Remove(handle)
	if !ok {
		return db.ErrNotFound
	}
	return pool.Close()
}

// Execute resolves the handle and runs sql verbatim, returning every
// row normalized into the generic value model. The SQL is trusted:
// this sits behind a UI where the operator authors the statement.
func (a *App) Execute(ctx context.Context, handle, sqlText string) ([]db.Row, error) {
	pool, ok := a.registry.Lookup(handle)
	if !ok {
		return nil, db.ErrNotFound
	}
	return pool.Query(ctx, sqlText)
}

// ListTables lists the user-visible tables behind the handle.
func (a *App) ListTables(ctx context.Context, handle string) ([]string, error) {
	pool, ok := a.registry.Lookup(handle)
	if !ok {
		return nil, db.ErrNotFound
	}
	return pool.Tables(ctx)
}

// Close shuts down every pool still registered, in unspecified order.
// The first close error wins.
func (a *App) Close() error {
	var firstErr error
	for _, pool := range a.registry.Drain() {
		if err := pool.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
