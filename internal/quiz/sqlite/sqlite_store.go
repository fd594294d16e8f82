package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"ecat-quiz/internal/quiz"
)

const (
	defaultPath        = "ecat_quiz.db"
	defaultBusyTimeout = 5 * time.Second
)

var _ quiz.Store = (*Store)(nil)

type Options struct {
	Path        string
	ForeignKeys bool
	BusyTimeout time.Duration
}

// queryer is satisfied by both *sql.DB and *sql.Tx so every statement helper
// runs unchanged inside and outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db   *sql.DB
	q    queryer
	inTx bool
}

// Open opens (or creates) the database file and initializes the schema before
// returning. Every failure is a *quiz.InitializationError.
func Open(ctx context.Context, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName(opts))
	if err != nil {
		return nil, &quiz.InitializationError{Err: err}
	}

	// One connection: SQLite allows a single writer, and the pragmas in the
	// DSN are per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &quiz.InitializationError{Err: err}
	}

	store := &Store{db: db, q: db}
	if err := store.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Tx(ctx context.Context, fn func(quiz.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &quiz.StoreError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &quiz.StoreError{Op: "commit", Err: err}
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(quiz.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return &quiz.StoreError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	return fn(&Store{db: s.db, q: tx, inTx: true})
}

func (s *Store) exec(ctx context.Context, op, stmt string, args ...any) (sql.Result, error) {
	res, err := s.q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, storeErr(op, stmt, args, err)
	}
	return res, nil
}

func storeErr(op, stmt string, args []any, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		err = fmt.Errorf("%w: %w", quiz.ErrConstraint, err)
	}
	return &quiz.StoreError{Op: op, Statement: stmt, Args: args, Err: err}
}

func dataSourceName(opts Options) string {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		path = defaultPath
	}

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}

	fk := 0
	if opts.ForeignKeys {
		fk = 1
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_foreign_keys=%d&_busy_timeout=%d", path, sep, fk, busy.Milliseconds())
}
