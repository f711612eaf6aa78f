package models

import (
	"errors"
	"fmt"
)

// ErrNoItemsSelected is returned when checkout is entered with zero
// resolvable items. Never retried; the caller navigates back.
var ErrNoItemsSelected = errors.New("no items selected for checkout")

// ErrSubmissionInFlight guards the one-submission-per-session rule.
var ErrSubmissionInFlight = errors.New("an order submission is already in flight for this session")

// ErrDeleteNotConfirmed blocks a destructive address delete until the
// caller has passed the explicit confirmation step.
var ErrDeleteNotConfirmed = errors.New("address deletion requires explicit confirmation")

// TransientFetchError marks a read that failed on network or server
// unavailability after the bounded retry budget was spent. Callers present
// a retry affordance, never a silently empty result.
type TransientFetchError struct {
	Resource string
	Err      error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("transient fetch failure for %s: %v", e.Resource, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// InvalidQuantityError rejects quantities the cart cannot hold. Raised
// locally, never sent to the server.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: must be at least 1 (use remove instead)", e.Quantity)
}

// MutationConflictError reports a second mutation attempted on a row whose
// first mutation has not resolved yet.
type MutationConflictError struct {
	RowID string
}

func (e *MutationConflictError) Error() string {
	return fmt.Sprintf("row %s already has a mutation in flight", e.RowID)
}

// OrderSubmissionError carries the server-reported rejection reason. The
// form state is preserved by the submitter; nothing is auto-retried.
type OrderSubmissionError struct {
	Reason string
}

func (e *OrderSubmissionError) Error() string {
	return fmt.Sprintf("order submission rejected: %s", e.Reason)
}

// FieldErrors maps field names to validation messages. Produced locally
// before any network call and surfaced inline at the offending field.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(fe))
}

// Has reports whether the named field failed validation.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}
