package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder. This ensures all orders are
	// properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrOrderHasNoLines is returned when an order would end up without any lines.
	ErrOrderHasNoLines = errs.NewValueIsRequiredError("order must have at least one line")

	// ErrLinesAreImmutable is returned when line mutation is attempted after
	// the order left the Created status.
	ErrLinesAreImmutable = errors.New("order lines can only be mutated while the order is in Created status")
)

// Order represents a customer order and is the aggregate root for its
// lifecycle. It enforces transition rules, keeps the line list and totals
// consistent, and collects one pending EventEnvelope per successful
// transition for the publishing pipeline.
//
// Order follows these invariants:
//   - At least one line; every quantity positive, every unit price non-negative
//   - All lines share a single currency so the total is well defined
//   - Status transitions follow the graph documented on Status
//   - The timestamp for a state is set exactly when that state is entered
//   - Every mutation advances the version; the persisted version is the
//     optimistic concurrency token
//   - Pending events are transient and non-authoritative; the persisted
//     status and timestamps are the source of truth
//
// The struct uses private fields to ensure encapsulation; construction goes
// through NewOrder (new orders) or RestoreOrder (persistence rehydration).
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID
	lines      []Line
	status     Status

	createdAt   time.Time
	paidAt      *time.Time
	shippedAt   *time.Time
	deliveredAt *time.Time
	cancelledAt *time.Time

	// version counts every successful mutation; persistedVersion is the
	// version the aggregate was loaded with and backs the optimistic check.
	version          int64
	persistedVersion int64

	// pendingEvents is cleared after successful publication and never persisted.
	pendingEvents []event.Envelope

	isConstructed bool
}

// NewOrder creates a new Order in Created status and records the
// OrderCreated event. This is the only way to create a fresh order; all
// invariants are validated here.
//
// The correlation id of the triggering request is stamped onto the emitted
// event for tracing.
func NewOrder(id, customerID kernel.UUID, lines []Line, correlationID string) (*Order, error) {
	if err := errors.Join(id.Validate(), customerID.Validate()); err != nil {
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	o := &Order{
		id:            id,
		customerID:    customerID,
		lines:         append([]Line(nil), lines...),
		status:        Created,
		createdAt:     time.Now().UTC(),
		version:       1,
		isConstructed: true,
	}

	total, err := o.Total()
	if err != nil {
		return nil, err
	}

	payload := CreatedPayload{
		CustomerID:  customerID.String(),
		Lines:       linePayloads(o.lines),
		TotalAmount: total.Amount(),
		Currency:    total.Currency(),
	}
	if err = o.emit(event.OrderCreated, payload, correlationID); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persisted state without emitting
// events. The supplied version becomes both the current and the persisted
// version, so the next save performs its optimistic check against it.
func RestoreOrder(
	id, customerID kernel.UUID,
	lines []Line,
	status Status,
	createdAt time.Time,
	paidAt, shippedAt, deliveredAt, cancelledAt *time.Time,
	version int64,
) (*Order, error) {
	if err := errors.Join(id.Validate(), customerID.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, errs.NewVersionIsInvalidErrorWithCause("version",
			fmt.Errorf("%d is not a positive version", version))
	}
	if createdAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("createdAt")
	}
	if err := validateTimestamps(status, paidAt, shippedAt, deliveredAt, cancelledAt); err != nil {
		return nil, err
	}

	return &Order{
		id:               id,
		customerID:       customerID,
		lines:            append([]Line(nil), lines...),
		status:           status,
		createdAt:        createdAt,
		paidAt:           paidAt,
		shippedAt:        shippedAt,
		deliveredAt:      deliveredAt,
		cancelledAt:      cancelledAt,
		version:          version,
		persistedVersion: version,
		isConstructed:    true,
	}, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the identifier of the ordering customer.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Lines returns a copy of the order lines.
func (o *Order) Lines() []Line {
	return append([]Line(nil), o.lines...)
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// Version returns the current aggregate version, advanced by every mutation.
func (o *Order) Version() int64 {
	return o.version
}

// PersistedVersion returns the version the aggregate was loaded with. A save
// must only succeed if the stored row still carries this version; zero means
// the order has never been persisted.
func (o *Order) PersistedVersion() int64 {
	return o.persistedVersion
}

// MarkPersisted records that the current version has been written to
// storage. Called by the repository after a successful save; subsequent
// optimistic checks compare against this version.
func (o *Order) MarkPersisted() {
	o.persistedVersion = o.version
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// PaidAt returns when the order was paid, or nil if it never was.
func (o *Order) PaidAt() *time.Time {
	return copyTime(o.paidAt)
}

// ShippedAt returns when the order was shipped, or nil if it never was.
func (o *Order) ShippedAt() *time.Time {
	return copyTime(o.shippedAt)
}

// DeliveredAt returns when the order was delivered, or nil if it never was.
func (o *Order) DeliveredAt() *time.Time {
	return copyTime(o.deliveredAt)
}

// CancelledAt returns when the order was cancelled, or nil if it never was.
func (o *Order) CancelledAt() *time.Time {
	return copyTime(o.cancelledAt)
}

// PendingEvents returns the envelopes recorded since the last clear, in the
// order the transitions happened.
func (o *Order) PendingEvents() []event.Envelope {
	return append([]event.Envelope(nil), o.pendingEvents...)
}

// ClearPendingEvents drops the recorded envelopes. Called by the application
// layer after the events were handed to the publishing pipeline.
func (o *Order) ClearPendingEvents() {
	o.pendingEvents = nil
}

// Total returns the sum of quantity × unitPrice over all lines.
func (o *Order) Total() (kernel.Money, error) {
	if err := o.Validate(); err != nil {
		return kernel.Money{}, err
	}

	total, err := o.lines[0].Subtotal()
	if err != nil {
		return kernel.Money{}, err
	}
	for _, line := range o.lines[1:] {
		subtotal, subErr := line.Subtotal()
		if subErr != nil {
			return kernel.Money{}, subErr
		}
		total, err = total.Add(subtotal)
		if err != nil {
			return kernel.Money{}, err
		}
	}

	return total, nil
}

// AddLine appends a line to the order. Only permitted while the order is in
// Created status; the new line must carry the same currency as the existing
// ones. Advances the version, emits no event.
func (o *Order) AddLine(line Line) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := line.Validate(); err != nil {
		return err
	}
	if o.status != Created {
		return ErrLinesAreImmutable
	}
	if line.UnitPrice().Currency() != o.lines[0].UnitPrice().Currency() {
		return kernel.ErrCurrencyMismatch
	}

	o.lines = append(o.lines, line)
	o.version++
	return nil
}

// RemoveLine removes the line for the given product. Only permitted while
// the order is in Created status; the last remaining line cannot be removed.
// Advances the version, emits no event.
func (o *Order) RemoveLine(productID string) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.status != Created {
		return ErrLinesAreImmutable
	}

	for i, line := range o.lines {
		if line.ProductID() == productID {
			if len(o.lines) == 1 {
				return ErrOrderHasNoLines
			}
			o.lines = append(o.lines[:i], o.lines[i+1:]...)
			o.version++
			return nil
		}
	}

	return errs.NewObjectNotFoundError("productId", productID)
}

// Pay transitions the order to Paid and records the OrderPaid event.
//
// Calling Pay on an order that is already Paid, Shipped, or Delivered is an
// idempotent no-op: the aggregate is returned unchanged and no new event is
// emitted. Paying a cancelled order is a hard failure.
func (o *Order) Pay(correlationID string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	// Idempotent at the domain boundary: payment already happened.
	if o.status == Paid || o.status == Shipped || o.status == Delivered {
		return nil
	}

	newStatus, err := o.status.Pay()
	if err != nil {
		return err
	}

	total, err := o.Total()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	payload := PaidPayload{
		PaidAt:      now,
		TotalAmount: total.Amount(),
		Currency:    total.Currency(),
	}
	if err = o.emit(event.OrderPaid, payload, correlationID); err != nil {
		return err
	}

	o.status = newStatus
	o.paidAt = &now
	o.version++
	return nil
}

// Ship transitions the order to Shipped and records the OrderShipped event.
// Only a paid order can be shipped.
func (o *Order) Ship(correlationID string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Ship()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err = o.emit(event.OrderShipped, ShippedPayload{ShippedAt: now}, correlationID); err != nil {
		return err
	}

	o.status = newStatus
	o.shippedAt = &now
	o.version++
	return nil
}

// Deliver transitions the order to Delivered and records the OrderDelivered
// event. Only a shipped order can be delivered; Delivered is terminal.
func (o *Order) Deliver(correlationID string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err = o.emit(event.OrderDelivered, DeliveredPayload{DeliveredAt: now}, correlationID); err != nil {
		return err
	}

	o.status = newStatus
	o.deliveredAt = &now
	o.version++
	return nil
}

// Cancel transitions the order to Cancelled and records the OrderCancelled
// event. Permitted from Created and Paid only; cancelling a shipped or
// delivered order is always a hard failure, never a silent no-op.
func (o *Order) Cancel(correlationID, reason string) error {
	if err := o.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	payload := CancelledPayload{CancelledAt: now, Reason: reason}
	if err = o.emit(event.OrderCancelled, payload, correlationID); err != nil {
		return err
	}

	o.status = newStatus
	o.cancelledAt = &now
	o.version++
	return nil
}

// emit builds the envelope before any state is touched so that an envelope
// construction failure leaves the aggregate unchanged.
func (o *Order) emit(eventType event.Type, payload any, correlationID string) error {
	envelope, err := event.NewEnvelope(o.id, eventType, payload, correlationID)
	if err != nil {
		return err
	}
	o.pendingEvents = append(o.pendingEvents, envelope)
	return nil
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrOrderHasNoLines
	}

	currency := ""
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
		if currency == "" {
			currency = line.UnitPrice().Currency()
		} else if line.UnitPrice().Currency() != currency {
			return kernel.ErrCurrencyMismatch
		}
	}

	return nil
}

// validateTimestamps enforces "timestamp set if and only if the state was
// entered" as far as the final status allows it to be derived.
func validateTimestamps(status Status, paidAt, shippedAt, deliveredAt, cancelledAt *time.Time) error {
	if status == Created && paidAt != nil {
		return errs.NewValueIsInvalidError("paidAt must not be set for a created order")
	}
	if (status == Paid || status == Shipped || status == Delivered) && paidAt == nil {
		return errs.NewValueIsRequiredError("paidAt")
	}
	if (status == Shipped || status == Delivered) && shippedAt == nil {
		return errs.NewValueIsRequiredError("shippedAt")
	}
	if status != Shipped && status != Delivered && shippedAt != nil {
		return errs.NewValueIsInvalidError("shippedAt must only be set for shipped orders")
	}
	if status == Delivered && deliveredAt == nil {
		return errs.NewValueIsRequiredError("deliveredAt")
	}
	if status != Delivered && deliveredAt != nil {
		return errs.NewValueIsInvalidError("deliveredAt must only be set for delivered orders")
	}
	if status == Cancelled && cancelledAt == nil {
		return errs.NewValueIsRequiredError("cancelledAt")
	}
	if status != Cancelled && cancelledAt != nil {
		return errs.NewValueIsInvalidError("cancelledAt must only be set for cancelled orders")
	}
	return nil
}

func linePayloads(lines []Line) []LinePayload {
	payloads := make([]LinePayload, 0, len(lines))
	for _, line := range lines {
		payloads = append(payloads, LinePayload{
			ProductID:       line.ProductID(),
			Quantity:        line.Quantity(),
			UnitPriceAmount: line.UnitPrice().Amount(),
		})
	}
	return payloads
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
