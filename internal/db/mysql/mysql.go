package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/bgunnarsson/dbhub/internal/db"
)

// SHOW TABLES lists tables of the database selected in the DSN.
const tablesQuery = `SHOW TABLES`

// Open connects a MySQL pool. mysql:// URLs are rewritten into the
// driver's native DSN form; anything else passes through as-is.
func Open(ctx context.Context, dsn string) (*db.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mysql DSN")
	}

	native, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open("mysql", native)
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

	return db.NewPool(db.KindMySQL, sqldb, db.AcquireTimeout, tablesQuery), nil
}

// normalizeDSN converts a mysql:// URL into go-sql-driver form,
// "user:pass@tcp(host:port)/db". Native DSNs pass through untouched.
func normalizeDSN(dsn string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(dsn), "mysql://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("malformed mysql URL: %w", err)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Passwd = pw
		}
	}
	for k, v := range u.Query() {
		if len(v) == 0 {
			continue
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[k] = v[0]
	}

	return cfg.FormatDSN(), nil
}
