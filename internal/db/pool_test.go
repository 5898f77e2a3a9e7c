package db

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T, kind Kind) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })
	return NewPool(kind, sqldb, AcquireTimeout, `SHOW TABLES`), mock
}

func assertCell(t *testing.T, r Row, col string, want Value) {
	t.Helper()
	v, ok := r.Get(col)
	require.True(t, ok, "column %s missing", col)
	assert.Equal(t, want, v)
}

func TestPoolQueryNormalizesRows(t *testing.T) {
	pool, mock := newMockPool(t, KindMySQL)

	cols := []*sqlmock.Column{
		sqlmock.NewColumn("n").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("s").OfType("VARCHAR", ""),
		sqlmock.NewColumn("f").OfType("DOUBLE", float64(0)),
		sqlmock.NewColumn("z").OfType("VARCHAR", "").Nullable(true),
	}
	rows := sqlmock.NewRowsWithColumnDefinition(cols...).
		AddRow(int64(1), "a", 1.5, nil).
		AddRow([]byte("2"), []byte("b"), []byte("2.5"), nil)

	const q = "SELECT n, s, f, z FROM t"
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := pool.Query(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"n", "s", "f", "z"}, got[0].Columns())
	assertCell(t, got[0], "n", int64(1))
	assertCell(t, got[0], "s", "a")
	assertCell(t, got[0], "f", 1.5)
	assertCell(t, got[0], "z", nil)

	// text-protocol bytes go through the probe, except pinned text
	assertCell(t, got[1], "n", int64(2))
	assertCell(t, got[1], "s", "b")
	assertCell(t, got[1], "f", 2.5)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolQueryNonFiniteDoubleBecomesNull(t *testing.T) {
	pool, mock := newMockPool(t, KindPostgres)

	cols := []*sqlmock.Column{
		sqlmock.NewColumn("nan").OfType("DOUBLE PRECISION", float64(0)),
		sqlmock.NewColumn("inf").OfType("DOUBLE PRECISION", float64(0)),
	}
	rows := sqlmock.NewRowsWithColumnDefinition(cols...).
		AddRow(math.NaN(), math.Inf(1))

	const q = "SELECT nan, inf FROM weird"
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := pool.Query(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assertCell(t, got[0], "nan", nil)
	assertCell(t, got[0], "inf", nil)
}

func TestPoolQueryDuplicateColumnKeepsLast(t *testing.T) {
	pool, mock := newMockPool(t, KindSQLite)

	cols := []*sqlmock.Column{
		sqlmock.NewColumn("v").OfType("INTEGER", int64(0)),
		sqlmock.NewColumn("v").OfType("INTEGER", int64(0)),
	}
	rows := sqlmock.NewRowsWithColumnDefinition(cols...).AddRow(int64(1), int64(2))

	const q = "SELECT 1 AS v, 2 AS v"
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := pool.Query(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"v"}, got[0].Columns())
	assertCell(t, got[0], "v", int64(2))
}

func TestPoolQuerySurfacesDriverError(t *testing.T) {
	pool, mock := newMockPool(t, KindMySQL)

	const q = "SELECT broken"
	mock.ExpectQuery(q).WillReturnError(errors.New("syntax error near 'broken'"))

	_, err := pool.Query(context.Background(), q)
	assert.ErrorContains(t, err, "syntax error")
}

func TestPoolTables(t *testing.T) {
	pool, mock := newMockPool(t, KindMySQL)

	cols := []*sqlmock.Column{
		sqlmock.NewColumn("Tables_in_app").OfType("VARCHAR", ""),
	}
	rows := sqlmock.NewRowsWithColumnDefinition(cols...).
		AddRow("users").
		AddRow("orders")

	mock.ExpectQuery("SHOW TABLES").WillReturnRows(rows)

	got, err := pool.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, got)
}

func TestPoolTablesNonTextNameBecomesEmptyString(t *testing.T) {
	pool, mock := newMockPool(t, KindMySQL)

	cols := []*sqlmock.Column{
		sqlmock.NewColumn("name").OfType("INTEGER", int64(0)),
	}
	rows := sqlmock.NewRowsWithColumnDefinition(cols...).AddRow(int64(7))

	mock.ExpectQuery("SHOW TABLES").WillReturnRows(rows)

	got, err := pool.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{""}, got)
}

func TestPoolCloseNilDB(t *testing.T) {
	assert.NoError(t, NewPool(KindSQLite, nil, 0, "").Close())
}

func TestPoolKind(t *testing.T) {
	pool, _ := newMockPool(t, KindPostgres)
	assert.Equal(t, KindPostgres, pool.Kind())
}
