package sqlite

import (
	"context"
	"database/sql"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	"github.com/sirupsen/logrus"
)

// beginError classifies a failed BeginTx. A cancelled caller is a transaction error;
// anything else means the pool could not hand out a connection.
func beginError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return repositories.TransactionError("begin", err)
	}
	return repositories.ConnectionError(err)
}

// SQLiteTransaction is one ledger write spanning several repositories, such as a sale
// with its items or a whole JSON import
type SQLiteTransaction struct {
	tx     *sql.Tx
	ctx    context.Context
	logger *logrus.Logger
}

// NewSQLiteTransaction binds tx to ctx so repositories called with Context() join it
func NewSQLiteTransaction(tx *sql.Tx, ctx context.Context, logger *logrus.Logger) repositories.Transaction {
	if logger == nil {
		logger = logrus.New()
	}
	return &SQLiteTransaction{
		tx:     tx,
		ctx:    withTx(ctx, tx),
		logger: logger,
	}
}

func (t *SQLiteTransaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		t.logger.WithError(err).Error("Ledger write commit failed")
		return repositories.TransactionError("commit", err)
	}
	return nil
}

func (t *SQLiteTransaction) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		t.logger.WithError(err).Error("Ledger write rollback failed")
		return repositories.TransactionError("rollback", err)
	}
	t.logger.Debug("Ledger write rolled back")
	return nil
}

// Context returns the context repositories must receive to write inside the transaction
func (t *SQLiteTransaction) Context() context.Context {
	return t.ctx
}

// SQLiteTransactionManager opens ledger write transactions. Report snapshots use their
// own read transaction in SnapshotRepository.
type SQLiteTransactionManager struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewSQLiteTransactionManager(db *sql.DB, logger *logrus.Logger) repositories.TransactionManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &SQLiteTransactionManager{
		db:     db,
		logger: logger,
	}
}

func (tm *SQLiteTransactionManager) BeginTransaction(ctx context.Context) (repositories.Transaction, error) {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		tm.logger.WithError(err).Error("Could not start ledger write")
		return nil, beginError(ctx, err)
	}
	return NewSQLiteTransaction(tx, ctx, tm.logger), nil
}

// WithTransaction runs fn in one ledger write. fn's error is returned as is after the
// rollback; a panic rolls back and propagates.
func (tm *SQLiteTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx.Context()); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			tm.logger.WithError(rollbackErr).Error("Rollback after failed ledger write")
		}
		return err
	}

	return tx.Commit()
}
