package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/moodlet/moodlet-backend/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Connection parameters understood by go-sqlite3. WAL keeps readers off the
// writer's lock and foreign keys enforce the session cascade.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

var (
	errMigrateInTx = errors.New("migrations cannot be run within a transaction")
	errNestedTx    = errors.New("nested transactions not supported")
	errCloseTx     = errors.New("transactions must be committed or rolled back, not closed")
)

// querier is what the queries need from either *sql.DB or *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage is the service.Storage backed by a single SQLite file. The
// parent directory must already exist.
type SQLiteStorage struct {
	db     *sql.DB
	q      querier
	dbPath string
}

// NewSQLiteStorage opens dbPath and checks the connection. Call Migrate
// before use on a fresh file.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; a pool only adds SQLITE_BUSY retries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", dbPath, err)
	}
	return &SQLiteStorage{db: db, q: db, dbPath: dbPath}, nil
}

func (s *SQLiteStorage) Path() string { return s.dbPath }

func (s *SQLiteStorage) Close() error { return s.db.Close() }

// BeginTx returns a Transaction whose Storage methods all run on the same
// sql.Tx.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	bound := &SQLiteStorage{db: s.db, q: tx, dbPath: s.dbPath}
	return &sqliteTransaction{SQLiteStorage: bound, tx: tx}, nil
}

// withTx gives fn a transactional querier. Storage already bound to a
// transaction reuses it so multi-statement writes join the caller's tx.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(q querier) error) (err error) {
	if tx, ok := s.q.(*sql.Tx); ok {
		return fn(tx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type sqliteTransaction struct {
	*SQLiteStorage
	tx *sql.Tx
}

func (t *sqliteTransaction) Commit() error   { return t.tx.Commit() }
func (t *sqliteTransaction) Rollback() error { return t.tx.Rollback() }

func (t *sqliteTransaction) Migrate(context.Context) error { return errMigrateInTx }

func (t *sqliteTransaction) BeginTx(context.Context) (service.Transaction, error) {
	return nil, errNestedTx
}

func (t *sqliteTransaction) Close() error { return errCloseTx }
