package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"docregister/internal/repository"
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a PostgreSQL implementation of repository.Store.
type Store struct {
	db *sql.DB
	repos
}

var _ repository.Store = (*Store)(nil)

// NewStore creates a Store on top of an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: repos{db: db}}
}

type repos struct{ db DBTX }

func (r repos) Documents() repository.DocumentRepository       { return NewDocumentPostgres(r.db) }
func (r repos) Revisions() repository.RevisionRepository       { return NewRevisionPostgres(r.db) }
func (r repos) Events() repository.EventRepository             { return NewEventPostgres(r.db) }
func (r repos) Transmittals() repository.TransmittalRepository { return NewTransmittalPostgres(r.db) }

// WithTx runs fn in a READ COMMITTED transaction. Serializability of the
// register operations comes from row locks taken with the Lock* reads and
// from unique constraints.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	err := withTx(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, repos{db: tx})
	})
	return mapError(err)
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return mapError(s.db.PingContext(ctx))
}

// withTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
func withTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "22P02":
			// malformed uuid key; no row can match it
			return fmt.Errorf("%w: %s", repository.ErrNotFound, pgErr.Message)
		case pgErr.Code == "23505":
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.Message)
		case pgErr.Code == "53300", pgErr.Code == "57P01", pgErr.Code == "57P03", strings.HasPrefix(pgErr.Code, "08"):
			return fmt.Errorf("%w: %s", repository.ErrUnavailable, pgErr.Message)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}

func limitArg(pq repository.PageQuery) any {
	if pq.Limit <= 0 {
		return nil
	}
	return pq.Limit
}

func offsetArg(pq repository.PageQuery) int {
	if pq.Offset < 0 {
		return 0
	}
	return pq.Offset
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...any) error
}
