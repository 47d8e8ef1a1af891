package repositories

import (
	"errors"
	"fmt"
)

// Error kinds carried by every RepositoryError. Callers match them with errors.Is or the
// Is* helpers below.
var (
	ErrNotFound       = errors.New("entity not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInvalidID      = errors.New("invalid ID")
	ErrValidation     = errors.New("validation error")
	ErrConstraint     = errors.New("constraint violation")

	// ErrTransaction marks a commit or rollback that failed on a live connection
	ErrTransaction = errors.New("transaction error")

	// ErrConnection marks a ledger store that cannot hand out a connection at all
	ErrConnection = errors.New("database connection error")
)

// RepositoryError describes a failed ledger store operation on a product, customer,
// sale, expense or snapshot
type RepositoryError struct {
	Op      string
	Entity  string
	ID      string
	Err     error
	Message string
}

func (e *RepositoryError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ID != "":
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
	}
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError wraps a driver or scan error raised while running op on entity
func NewRepositoryError(op, entity, id string, err error) *RepositoryError {
	return &RepositoryError{Op: op, Entity: entity, ID: id, Err: err}
}

// NotFoundError reports a missing product, customer, sale or expense
func NotFoundError(entity, id string) *RepositoryError {
	return &RepositoryError{
		Op:      "get",
		Entity:  entity,
		ID:      id,
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// DuplicateError reports a record whose key is already stored, such as a re-imported ID
func DuplicateError(entity, field, value string) *RepositoryError {
	return &RepositoryError{
		Op:      "create",
		Entity:  entity,
		Err:     ErrDuplicateEntry,
		Message: fmt.Sprintf("%s with %s '%s' already exists", entity, field, value),
	}
}

// ValidationError reports a record rejected by its model validation before any write
func ValidationError(entity, id string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      "validate",
		Entity:  entity,
		ID:      id,
		Err:     ErrValidation,
		Message: fmt.Sprintf("invalid %s: %v", entity, err),
	}
}

// ConstraintError reports a schema constraint failure, typically a sale item or sale
// pointing at a product or customer that does not exist
func ConstraintError(entity, constraint string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      "constraint",
		Entity:  entity,
		Err:     ErrConstraint,
		Message: fmt.Sprintf("%s violates %s constraint: %v", entity, constraint, err),
	}
}

// TransactionError reports a failed commit or rollback of a ledger write or snapshot read
func TransactionError(op string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Entity:  "transaction",
		Err:     ErrTransaction,
		Message: fmt.Sprintf("transaction %s failed: %v", op, err),
	}
}

// ConnectionError reports that the database could not be opened or reached
func ConnectionError(err error) *RepositoryError {
	return &RepositoryError{
		Op:      "connect",
		Entity:  "database",
		Err:     ErrConnection,
		Message: fmt.Sprintf("database unavailable: %v", err),
	}
}

// IsNotFound reports whether err is a missing-entity error
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicate reports whether err is a duplicate key error
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicateEntry) }

// IsValidation reports whether err is a model validation error
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConstraint reports whether err is a constraint violation
func IsConstraint(err error) bool { return errors.Is(err, ErrConstraint) }

// IsUnavailable reports whether err means the ledger store could not be reached
func IsUnavailable(err error) bool { return errors.Is(err, ErrConnection) }
