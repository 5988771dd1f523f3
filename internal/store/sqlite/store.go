// Package sqlite implements store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/vivilio/vivilio-server/internal/normalize"
	"github.com/vivilio/vivilio-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// querier is the subset of *sql.DB and *sql.Tx the queries need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides SQLite-backed persistence. A Store returned by WithTx shares
// the connection pool and routes every query through the open transaction.
type Store struct {
	db     *sql.DB
	q      querier
	inTx   bool
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// psql is the squirrel builder for SQLite's ? placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Open creates or opens the database at path, applies pragmas and runs the
// embedded schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	// Pragmas are per connection. dsn applies them to every pooled
	// connection; running them here surfaces errors at startup.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{db: db, q: db, logger: logger}, nil
}

func dsn(path string) string {
	return "file:" + path +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&Store{db: s.db, q: tx, inTx: true, logger: s.logger}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// mapError translates driver errors to store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return &store.ConstraintError{Kind: store.ErrAlreadyExists, Detail: constraintDetail(msg)}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &store.ConstraintError{Kind: store.ErrReferenceMissing, Detail: constraintDetail(msg)}
	}
	return err
}

func constraintDetail(msg string) string {
	if _, after, ok := strings.Cut(msg, "constraint failed: "); ok {
		return strings.TrimRight(after, ")")
	}
	return msg
}

// execAffecting runs a statement and returns store.ErrNotFound when no row
// was touched.
func (s *Store) execAffecting(ctx context.Context, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryAll runs a select and scans every row.
func queryAll[T any](ctx context.Context, s *Store, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scan)
}

// queryBuilt runs a squirrel select and scans every row.
func queryBuilt[T any](ctx context.Context, s *Store, b sq.SelectBuilder, scan func(scanner) (T, error)) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return queryAll(ctx, s, scan, query, args...)
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTimestamps fills created/updated from their stored form.
func parseTimestamps(created, updated string, createdAt, updatedAt *time.Time) error {
	var err error
	if *createdAt, err = parseTime(created); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if *updatedAt, err = parseTime(updated); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}

// likePattern builds a case-folded substring pattern for LIKE ... ESCAPE '\'.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(normalize.Fold(query)) + "%"
}

// likeAny matches pattern against any of columns, ignoring case.
func likeAny(pattern string, columns ...string) sq.Or {
	or := make(sq.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, sq.Expr(foldFunc+"("+c+`) LIKE ? ESCAPE '\'`, pattern))
	}
	return or
}
