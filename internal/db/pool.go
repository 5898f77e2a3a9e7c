package db

import (
	"context"
	"database/sql"
	"time"
)

// Pool policy is fixed, not a tunable.
const (
	MaxOpenConns   = 5
	AcquireTimeout = 5 * time.Second
)

// Pool is a bounded set of physical connections to one backend
// instance. Pools are built by the per-backend Open functions, shared
// by reference between concurrent callers through the registry, and
// closed exactly once when removed from it.
type Pool struct {
	kind           Kind
	db             *sql.DB
	acquireTimeout time.Duration
	tablesQuery    string
}

// NewPool wraps an already-opened *sql.DB. acquireTimeout bounds how
// long a caller waits for a free connection; zero leaves acquisition
// at the backend default.
func NewPool(kind Kind, sqldb *sql.DB, acquireTimeout time.Duration, tablesQuery string) *Pool {
	return &Pool{
		kind:           kind,
		db:             sqldb,
		acquireTimeout: acquireTimeout,
		tablesQuery:    tablesQuery,
	}
}

func (p *Pool) Kind() Kind {
	return p.kind
}

// Close shuts the pool down. Connections checked out by in-flight
// queries drain before their resources are released.
func (p *Pool) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// acquire checks one connection out of the pool, waiting at most the
// acquire timeout for one to free up. The deadline covers acquisition
// only, not the query that follows.
func (p *Pool) acquire(ctx context.Context) (*sql.Conn, error) {
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}
	return p.db.Conn(ctx)
}

// Query submits sql verbatim, fetches every row into memory and
// normalizes each cell into the Value model. No chunking, no
// parameters.
func (p *Pool) Query(ctx context.Context, query string) ([]Row, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRows(rows)
}

// collectRows drains a cursor into normalized rows. The body is the
// same for every backend; only the driver behind the cursor differs.
func collectRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	dbTypes := make([]string, len(cols))
	for i := range cols {
		if i < len(types) && types[i] != nil {
			dbTypes[i] = types[i].DatabaseTypeName()
		}
	}

	var out []Row
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := NewRow()
		for i, name := range cols {
			row.Set(name, decodeValue(raw[i], dbTypes[i]))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Tables lists user-visible tables in the order the backend yields
// them. A first column that does not decode as text contributes an
// empty string rather than failing the call.
func (p *Pool) Tables(ctx context.Context) ([]string, error) {
	rows, err := p.Query(ctx, p.tablesQuery)
	if err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		name := ""
		if cols := row.Columns(); len(cols) > 0 {
			if v, ok := row.Get(cols[0]); ok {
				if s, ok := v.(string); ok {
					name = s
				}
			}
		}
		tables = append(tables, name)
	}
	return tables, nil
}
