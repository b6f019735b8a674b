package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/ledazaf/ms-order-api/internal/domain/aggregates"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrIntegrity indicates a referential-integrity violation.
	ErrIntegrity = errors.New("aggregate integrity violation")
	// ErrInsufficientStock indicates a stock reservation underflow.
	ErrInsufficientStock = errors.New("aggregate insufficient stock")
	// ErrInvalidTransition indicates an illegal order status change.
	ErrInvalidTransition = errors.New("aggregate invalid transition")
	// ErrConflict indicates an optimistic-concurrency conflict.
	ErrConflict = errors.New("aggregate conflict")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// IntegrityError tags an error as referential-integrity violation.
func IntegrityError(msg string) error {
	return errors.Join(ErrIntegrity, errors.New(strings.TrimSpace(msg)))
}

// InsufficientStockError tags an error as stock underflow.
func InsufficientStockError(msg string) error {
	return errors.Join(ErrInsufficientStock, errors.New(strings.TrimSpace(msg)))
}

// InvalidTransitionError tags an error as illegal status change.
func InvalidTransitionError(msg string) error {
	return errors.Join(ErrInvalidTransition, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as concurrent-modification conflict.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure/domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*domainagg.Error); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, ErrIntegrity):
		return domainagg.Wrap(domainagg.CodeIntegrity, op, err)
	case errors.Is(err, ErrInsufficientStock):
		return domainagg.Wrap(domainagg.CodeInsufficientStock, op, err)
	case errors.Is(err, ErrInvalidTransition):
		return domainagg.Wrap(domainagg.CodeInvalidTransition, op, err)
	case errors.Is(err, ErrConflict):
		return domainagg.Wrap(domainagg.CodeConcurrentModification, op, err)
	case errors.Is(err, ErrRetryable):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23503":
			return domainagg.Wrap(domainagg.CodeIntegrity, op, err) // foreign_key_violation
		case "23505":
			return domainagg.Wrap(domainagg.CodeConcurrentModification, op, err) // unique_violation
		case "23514":
			return domainagg.Wrap(domainagg.CodeValidation, op, err) // check_violation
		case "40001", "40P01", "55P03":
			return domainagg.Wrap(domainagg.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"):
		return domainagg.Wrap(domainagg.CodeConcurrentModification, op, err)
	case strings.Contains(msg, "foreign key"):
		return domainagg.Wrap(domainagg.CodeIntegrity, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}
