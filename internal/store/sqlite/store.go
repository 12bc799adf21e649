// Package sqlite implements the transaction store on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/store"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed transaction store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path with foreign keys
// enforced. Call Migrate before first use.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("Open: opening database at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: pinging database at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenAndMigrate opens the database and applies pending migrations.
func OpenAndMigrate(ctx context.Context, path string) (*Store, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(ctx, s.db, "api"); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(20000)"
}

// DB exposes the underlying handle for migrations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// whereBuilder accumulates "AND" predicates and their arguments.
type whereBuilder struct {
	prefix  string // table alias for joined queries, e.g. "t."
	clauses []string
	args    []any
}

func (w *whereBuilder) add(clause string, arg any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, arg)
}

func (w *whereBuilder) dateRange(filter domain.TransactionFilter) {
	if filter.DateFrom != nil {
		w.add(w.prefix+"date >= ?", filter.DateFrom.String())
	}
	if filter.DateTo != nil {
		w.add(w.prefix+"date <= ?", filter.DateTo.String())
	}
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func parseDate(s string) (civil.Date, error) {
	// Rows written by older tools may carry a time part.
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return d, nil
}
