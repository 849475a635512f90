package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError through errors.Is.
	ErrNotFound = errors.New("payment not found")
	// ErrDuplicateIdempotencyKey is returned by a Ledger when Create loses the
	// uniqueness race on the idempotency key.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	// ErrCardNumberTooShort is returned when a card number cannot be masked.
	ErrCardNumberTooShort = errors.New("card number shorter than 4 characters")
)

// NotFoundError reports a retrieval of an unknown payment identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Payment with ID %s not found.", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ProcessingError wraps an unexpected collaborator or persistence fault.
// It is distinct from a declined payment, which is a normal FAILURE outcome.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func processingError(op string, err error) error {
	return &ProcessingError{Op: op, Err: err}
}
