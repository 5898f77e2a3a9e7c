package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx stdlib driver

	"github.com/bgunnarsson/dbhub/internal/db"
)

// Only the public schema is listed; other schemas stay hidden.
const tablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema='public'`

// Open connects a Postgres pool. The DSN may be a postgres:// URL or
// key=value form; pgx accepts both.
func Open(ctx context.Context, dsn string) (*db.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(db.MaxOpenConns)
	sqldb.SetMaxIdleConns(db.MaxOpenConns)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, db.AcquireTimeout)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return db.NewPool(db.KindPostgres, sqldb, db.AcquireTimeout, tablesQuery), nil
}
