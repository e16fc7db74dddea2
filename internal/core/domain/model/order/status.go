package order

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
)

// ErrInvalidStateTransition is the sentinel for every rejected lifecycle
// transition. Use errors.Is to classify and errors.As to recover the
// attempted transition for diagnostics.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// InvalidStateTransitionError reports a lifecycle transition attempted from
// an incompatible state, carrying both the current and the attempted target
// status.
type InvalidStateTransitionError struct {
	From Status
	To   Status
}

// NewInvalidStateTransitionError creates an InvalidStateTransitionError for
// the rejected from -> to transition.
func NewInvalidStateTransitionError(from, to Status) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{From: from, To: to}
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot transition from %s to %s", ErrInvalidStateTransition, e.From, e.To)
}

func (e *InvalidStateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure orders
// follow the correct business workflow.
//
// State transitions:
//
//	Created ──pay()──> Paid ──ship()──> Shipped ──deliver()──> Delivered
//	   │                 │
//	   └───cancel()──────┴──cancel()──> Cancelled
//
// Delivered and Cancelled are terminal. Status is a value object that
// validates state transitions and provides string representations for
// persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status when an order is first placed.
	// Lines may only be mutated while in this status.
	Created

	// Paid indicates payment has been accepted for the order.
	Paid

	// Shipped indicates the order has been handed to the carrier.
	// Cancellation is no longer possible from this point.
	Shipped

	// Delivered indicates the order reached the customer. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled before shipment. Terminal.
	Cancelled
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Created:   "Created",
		Paid:      "Paid",
		Shipped:   "Shipped",
		Delivered: "Delivered",
		Cancelled: "Cancelled",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Created:   "Created",
		Paid:      "Paid",
		Shipped:   "Shipped",
		Delivered: "Delivered",
		Cancelled: "Cancelled",
	}
}

// Validate checks if the Status value is valid.
// Unknown (0) and values outside the enum are invalid. Used when
// reconstructing orders from persistence or parsing external input.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Pay transitions the status to Paid.
//
// Valid transitions:
//   - Created -> Paid
//
// The idempotent already-paid case (Paid, Shipped, Delivered) is handled by
// the aggregate, not here; this method only answers whether the strict
// transition is legal.
func (s Status) Pay() (Status, error) {
	if s != Created {
		return 0, NewInvalidStateTransitionError(s, Paid)
	}

	return Paid, nil
}

// Ship transitions the status to Shipped.
//
// Valid transitions:
//   - Paid -> Shipped
func (s Status) Ship() (Status, error) {
	if s != Paid {
		return 0, NewInvalidStateTransitionError(s, Shipped)
	}

	return Shipped, nil
}

// Deliver transitions the status to Delivered.
//
// Valid transitions:
//   - Shipped -> Delivered
func (s Status) Deliver() (Status, error) {
	if s != Shipped {
		return 0, NewInvalidStateTransitionError(s, Delivered)
	}

	return Delivered, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - Created -> Cancelled
//   - Paid -> Cancelled
//
// Cancelling a Shipped or Delivered order is always a hard failure: an
// already-dispatched or completed order is a business error, never a retry.
func (s Status) Cancel() (Status, error) {
	if s != Created && s != Paid {
		return 0, NewInvalidStateTransitionError(s, Cancelled)
	}

	return Cancelled, nil
}
