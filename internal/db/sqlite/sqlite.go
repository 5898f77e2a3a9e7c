package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // register driver

	"github.com/bgunnarsson/dbhub/internal/db"
)

// sqlite_% objects are internal and stay hidden.
const tablesQuery = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`

var memSeq atomic.Uint64

// Open opens a SQLite pool. No acquire deadline: local file
// acquisition is left at the backend default.
func Open(ctx context.Context, dsn string) (*db.Pool, error) {
	sqldb, err := sql.Open("sqlite", normalizePath(dsn))
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(db.MaxOpenConns)
	sqldb.SetMaxIdleConns(db.MaxOpenConns)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	// sql.Open is lazy; surface an unopenable file now, not on the
	// first query.
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return db.NewPool(db.KindSQLite, sqldb, 0, tablesQuery), nil
}

// normalizePath maps the accepted connection-string shapes onto what
// the driver expects. A bare :memory: gets a unique shared-cache name,
// otherwise each of the pool's five connections would open its own
// private database.
func normalizePath(dsn string) string {
	s := dsn
	low := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(low, "sqlite://"):
		s = dsn[len("sqlite://"):]
	case strings.HasPrefix(low, "sqlite:"):
		s = dsn[len("sqlite:"):]
	}

	if s == ":memory:" || s == "" {
		return fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", memSeq.Add(1))
	}
	return s
}
