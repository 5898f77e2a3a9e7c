// Package db implements the multi-backend connection core: connection
// string classification, tagged pools, the handle registry and the
// generic row normalizer shared by every backend.
package db

import (
	"errors"
	"strings"
)

// Kind identifies one of the supported database backends.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
	KindUnknown  Kind = "unknown"
)

var (
	// ErrUnsupported means the connection string matched none of the
	// supported backends.
	ErrUnsupported = errors.New("unsupported database type")

	// ErrNotFound means the handle is absent from the registry. A
	// disconnected handle and a never-issued one look the same.
	ErrNotFound = errors.New("connection not found")
)

// Detect classifies a connection string. Case-insensitive, does no
// I/O. The substring matches are deliberate: a mistyped scheme that
// still mentions postgres or mysql is assumed to mean it.
func Detect(connString string) Kind {
	s := strings.ToLower(connString)
	switch {
	case strings.HasPrefix(s, "postgres://"),
		strings.HasPrefix(s, "postgresql://"),
		strings.Contains(s, "postgresql"),
		strings.Contains(s, "postgres"):
		return KindPostgres
	case strings.HasPrefix(s, "mysql://"),
		strings.Contains(s, "mysql"):
		return KindMySQL
	case strings.HasPrefix(s, "sqlite:"),
		strings.HasPrefix(s, "file:"),
		strings.Contains(s, ".sqlite"),
		strings.HasSuffix(s, ".db"),
		s == ":memory:":
		return KindSQLite
	default:
		return KindUnknown
	}
}
