// Package storage wraps a single embedded SQLite connection and exposes the
// row-level primitives the repositories are built on: idempotent schema
// creation, insert/exec/query helpers with error mapping, and a serialized
// transaction primitive.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/snapceipt/snapceipt/internal/common"
)

// Config holds the options for opening the database file.
type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Queryer is the subset of database/sql used by the row primitives. It is
// satisfied by both *sql.DB and *sql.Tx, so repository code can run the same
// statements inside or outside a transaction.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the single shared connection to the embedded database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// Serializes transaction attempts: the engine permits only one writer
	// and the transaction contract is undefined under concurrent begins.
	txMu sync.Mutex
}

// Open opens (creating if necessary) the database file and verifies the
// engine can reach it. It does not create tables; call Init before using
// the row primitives.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening database", "path", cfg.Path)

	// _time_format=sqlite makes time.Time bind as the engine's datetime
	// text layout so scans round-trip.
	dsn := fmt.Sprintf("file:%s?_time_format=sqlite&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.Path, "error", err)
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrStorageInit, cfg.Path, err)
	}

	// One shared connection; the adapter relies on the engine's own
	// isolation rather than pool-level locking.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logger.Error("failed to reach database", "path", cfg.Path, "error", err)
		return nil, fmt.Errorf("%w: ping %s: %w", common.ErrStorageInit, cfg.Path, err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Init idempotently creates the tables and indexes. It must complete before
// any other operation is issued against the store.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.Error("schema creation failed", "error", err)
			return fmt.Errorf("%w: create schema: %w", common.ErrStorageInit, err)
		}
	}
	s.logger.Debug("schema ready")
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	s.logger.Info("closing database")
	return s.db.Close()
}

// DB returns the shared connection for non-transactional statements.
func (s *Store) DB() Queryer {
	return s.db
}

// HealthCheck pings the engine to catch path or locking issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

// InTransaction runs fn such that either every write it issues commits or
// none do. An error from fn rolls the transaction back and is returned
// wrapped in the transaction error, with the original cause preserved for
// errors.Is. Attempts are serialized; only one transaction is in flight at
// a time against the shared connection.
func (s *Store) InTransaction(ctx context.Context, fn func(q Queryer) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", common.ErrStorageTx, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", "error", rbErr)
		}
		return fmt.Errorf("%w: %w", common.ErrStorageTx, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", common.ErrStorageTx, err)
	}
	return nil
}

// Insert executes an INSERT and returns the id the engine assigned.
func Insert(ctx context.Context, q Queryer, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %w", common.ErrStorageWrite, err)
	}
	return id, nil
}

// Exec executes an UPDATE or DELETE and returns the number of rows affected.
// Touching a row that does not exist is not an error; it reports zero rows.
func Exec(ctx context.Context, q Queryer, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %w", common.ErrStorageWrite, err)
	}
	return n, nil
}
