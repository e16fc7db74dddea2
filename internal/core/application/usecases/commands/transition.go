package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// transitionRetryLimit bounds the reload-and-retry loop on optimistic
// concurrency conflicts. Conflicts converge fast: the retried transition
// either succeeds against the fresh state or turns into an idempotent no-op
// (e.g. a second pay observing the order already paid).
const transitionRetryLimit = 3

// executeTransition runs one order state transition inside a unit of work:
// load the aggregate, apply mutate, persist the new state together with the
// outbox rows of the emitted events, commit, then publish post-commit.
//
// A version conflict on Update means a concurrent writer changed the order
// between our read and write; the loop reloads and re-applies the transition
// against the fresh state up to transitionRetryLimit times.
func executeTransition(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	dispatcher EventDispatcher,
	orderID kernel.UUID,
	mutate func(aggregate *order.Order) error,
) error {
	var lastErr error

	for attempt := 0; attempt < transitionRetryLimit; attempt++ {
		events, err := runTransitionOnce(ctx, uowFactory, orderID, mutate)
		if err == nil {
			dispatcher.Dispatch(ctx, events)
			return nil
		}
		if !errors.Is(err, errs.ErrConcurrencyConflict) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

func runTransitionOnce(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	orderID kernel.UUID,
	mutate func(aggregate *order.Order) error,
) ([]event.Envelope, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err = mutate(aggregate); err != nil {
		return nil, err
	}

	events := aggregate.PendingEvents()

	// An idempotent no-op (retrying an already-applied transition) emits no
	// events and changes no state; nothing to write.
	if len(events) == 0 {
		return nil, nil
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.OutboxRepository().Add(ctx, events); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	aggregate.ClearPendingEvents()
	return events, nil
}
