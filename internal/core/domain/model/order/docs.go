// Package order provides the Order aggregate root and its lifecycle state
// machine. The aggregate enforces all order invariants, serves as the single
// consistency boundary for order state, and records one EventEnvelope per
// successful lifecycle transition.
//
// The package includes:
//   - Order: The aggregate root managing identity, lines, totals, and lifecycle
//   - Status: A state machine enforcing the legal transition graph
//   - Line: A validated order line value object
//   - Event payload types for each lifecycle event family
//
// Key business rules:
//   - Orders carry at least one line; quantities are positive, unit prices non-negative
//   - Lifecycle follows Created -> Paid -> Shipped -> Delivered, with
//     cancellation allowed from Created and Paid only
//   - Pay on an already-paid-or-beyond order is an idempotent no-op
//   - Cancel on a shipped or delivered order is always a hard failure
//   - Lines may only be mutated while the order is in Created status
//   - Each successful transition appends exactly one pending event and
//     advances the aggregate version
//
// Pending events are transient: they are handed to the publishing pipeline
// after the aggregate is persisted and are never themselves the source of
// truth for order state.
package order
