// Package catalog is the thread-safe store of accounts, games, versions,
// downloads, reviews, and rooms backing the lobby and developer listeners.
// Grounded on db_manager.py's DatabaseManager: one connection, one write
// path serialized by a single mutex, reads left unsynchronized since
// SQLite/Postgres/MySQL all give read-committed visibility on their own.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kestrelgames/gamestore/pkg/database"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Store wraps a database.Connection with the catalog's write mutex and
// dialect-aware placeholder rewriting.
type Store struct {
	db *database.Connection

	// dialect is the normalized SQL dialect ("sqlite", "postgres", or
	// "mysql"), since schema DDL and a handful of queries (upserts, relative
	// timestamp comparisons) have no portable spelling across all three.
	dialect string

	// writeMu serializes every mutation. db_manager.py relies on SQLite's
	// own single-writer behavior; Store makes that explicit so the same
	// code works unchanged against MySQL/Postgres in external mode.
	writeMu sync.Mutex
}

// normalizeDialect maps database.Connection.DriverType()'s possible values
// onto the three dialects the catalog schema and queries branch on.
func normalizeDialect(driverType string) string {
	switch driverType {
	case "postgres", "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	default:
		return "sqlite"
	}
}

// Open opens conn and ensures the schema exists.
func Open(conn *database.Connection) (*Store, error) {
	s := &Store{db: conn, dialect: normalizeDialect(conn.DriverType())}
	if err := createSchema(conn.Writer(), s.dialect); err != nil {
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}
	return s, nil
}

// recentCutoffExpr returns a SQL boolean expression comparing column against
// "now minus 10 minutes" in the store's dialect; SQLite's
// datetime('now', ...) has no MySQL/Postgres equivalent.
func (s *Store) recentCutoffExpr(column, op string) string {
	switch s.dialect {
	case "postgres":
		return fmt.Sprintf("%s %s NOW() - INTERVAL '10 minutes'", column, op)
	case "mysql":
		return fmt.Sprintf("%s %s NOW() - INTERVAL 10 MINUTE", column, op)
	default:
		return fmt.Sprintf("%s %s datetime('now', '-10 minutes')", column, op)
	}
}

// rebind rewrites "?" placeholders to "$N" for postgres; sqlite and mysql
// use "?" natively.
func (s *Store) rebind(query string) string {
	if s.db.DriverType() != "postgres" && s.db.DriverType() != "postgresql" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.db.Writer().ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.Reader().QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.Reader().QueryContext(ctx, s.rebind(query), args...)
}

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = sql.ErrNoRows

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = fmt.Errorf("catalog: duplicate entry")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func nowUTC() time.Time { return time.Now().UTC() }
