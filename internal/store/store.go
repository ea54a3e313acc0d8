// Package store implements the transaction and category stores on GORM.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
)

// PostgreSQL SQLSTATE codes raised when a serializable transaction loses a race.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const defaultBatchSize = 500

// Store is the GORM-backed Repository.
type Store struct {
	db        *gorm.DB
	txOptions *sql.TxOptions
	batchSize int
}

// Option configures a Store.
type Option func(*Store)

// WithTxOptions sets the options used to begin units of work.
func WithTxOptions(opts *sql.TxOptions) Option {
	return func(s *Store) { s.txOptions = opts }
}

// WithBatchSize sets the number of rows per INSERT statement in batch writes.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates a Store on db.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Repository = (*Store)(nil)

// Transactions returns a TransactionStore outside of any unit of work.
func (s *Store) Transactions() TransactionStore {
	return &transactionStore{db: s.db, batchSize: s.batchSize}
}

// Categories returns a CategoryStore outside of any unit of work.
func (s *Store) Categories() CategoryStore {
	return &categoryStore{db: s.db}
}

// Audit returns an AuditStore outside of any unit of work.
func (s *Store) Audit() AuditStore {
	return &auditStore{db: s.db}
}

// Do implements UnitOfWork.
func (s *Store) Do(ctx context.Context, fn func(tx Stores) error) error {
	run := func(tx *gorm.DB) error {
		return fn(Stores{
			Transactions: &transactionStore{db: tx, batchSize: s.batchSize},
			Categories:   &categoryStore{db: tx},
			Audit:        &auditStore{db: tx},
		})
	}

	db := s.db.WithContext(ctx)
	var err error
	if s.txOptions != nil {
		err = db.Transaction(run, s.txOptions)
	} else {
		err = db.Transaction(run)
	}
	if err != nil {
		return classify(err)
	}
	return nil
}

// classify converts a database error into an AppError. Errors that already
// are AppErrors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return apperrors.Wrap(apperrors.ErrConcurrentUpdate, err)
		}
	}

	return apperrors.Wrap(apperrors.ErrStore, err)
}
