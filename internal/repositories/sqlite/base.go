package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// querier is the statement surface shared by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// withTx returns a context carrying tx so repositories join the transaction
func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// BaseRepository provides common functionality for all SQLite repositories
type BaseRepository[T any] struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository[T any](db *sql.DB, table string, logger *logrus.Logger) *BaseRepository[T] {
	if logger == nil {
		logger = logrus.New()
	}
	return &BaseRepository[T]{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// conn returns the transaction carried by ctx, or the database
func (r *BaseRepository[T]) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return r.db
}

// Exists checks if an entity with the given ID exists
func (r *BaseRepository[T]) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ? LIMIT 1", r.table)

	var exists int
	err := r.executeQueryRow(ctx, "exists", query, id).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, repositories.NewRepositoryError("exists", r.table, id, err)
	}

	return exists == 1, nil
}

// deleteByID removes one row by primary key
func (r *BaseRepository[T]) deleteByID(ctx context.Context, id string) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table)
	result, err := r.executeExec(ctx, "delete", query, id)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", id)
}

// logQuery logs a query with its execution time
func (r *BaseRepository[T]) logQuery(operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     strings.Join(strings.Fields(query), " "),
		"args":      len(args),
		"duration":  duration,
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query and logs the result
func (r *BaseRepository[T]) executeQuery(ctx context.Context, operation, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.table, "", err)
	}

	return rows, nil
}

// executeQueryRow executes a single-row query and logs the result
func (r *BaseRepository[T]) executeQueryRow(ctx context.Context, operation, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.conn(ctx).QueryRowContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, nil)

	return row
}

// executeExec executes a non-query statement and logs the result
func (r *BaseRepository[T]) executeExec(ctx context.Context, operation, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.table, "", err)
	}

	return result, nil
}

// classifyError maps SQLite constraint failures onto repository errors
func (r *BaseRepository[T]) classifyError(err error, entity, id string) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return repositories.DuplicateError(entity, "id", id)
	case sqlite3.ErrConstraintForeignKey:
		return repositories.ConstraintError(entity, "foreign key", err)
	}

	if sqliteErr.Code == sqlite3.ErrConstraint {
		return repositories.ConstraintError(entity, "check", err)
	}

	return err
}

// checkRowsAffected checks if the expected number of rows were affected
func (r *BaseRepository[T]) checkRowsAffected(result sql.Result, operation, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return repositories.NewRepositoryError(operation, r.table, id, err)
	}

	if rowsAffected == 0 {
		return repositories.NotFoundError(r.table, id)
	}

	return nil
}

// validateID validates that an ID is not empty
func (r *BaseRepository[T]) validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return repositories.NewRepositoryError("validate", r.table, id, repositories.ErrInvalidID)
	}
	return nil
}

// inTx runs fn inside the transaction carried by ctx, or inside a new one that is
// committed when fn succeeds
func (r *BaseRepository[T]) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return beginError(ctx, err)
	}

	if err := fn(withTx(ctx, tx)); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			r.logger.WithError(rollbackErr).Error("Failed to rollback transaction after error")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return repositories.TransactionError("commit", err)
	}
	return nil
}
