package kernel

import (
	"fmt"
	"math"

	"orderflow/internal/pkg/errs"

	"orderflow/internal/pkg/guard"
)

// ErrMoneyIsNotConstructed indicates that a Money value was not created
// through NewMoney.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("Money must be created via NewMoney")

// ErrCurrencyMismatch is returned by arithmetic operations on Money values
// with different currency codes.
var ErrCurrencyMismatch = errs.NewValueIsInvalidError("currency codes do not match")

// currencyCodeLength is the length of an ISO 4217 alphabetic currency code.
const currencyCodeLength = 3

// Money is an immutable value object holding a monetary amount as an integer
// number of minor units (e.g. cents) together with an ISO 4217 currency code.
// Integer minor units avoid floating point rounding in price arithmetic.
//
// The zero value of Money is invalid and must be constructed via NewMoney.
// Arithmetic never mutates; Add and Multiply return new values and reject
// cross-currency operands.
type Money struct {
	amount   int64
	currency string

	guard guard.ConstructorGuard
}

// NewMoney creates a Money value from an amount in minor units and a
// three-letter uppercase currency code. The amount must not be negative.
func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d is negative", amount))
	}
	if len(currency) != currencyCodeLength {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("%q is not a three-letter currency code", currency))
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return Money{}, errs.NewValueIsInvalidErrorWithCause("currency",
				fmt.Errorf("%q is not an uppercase currency code", currency))
		}
	}

	return Money{
		amount:   amount,
		currency: currency,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the ISO 4217 currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum of two Money values.
// Returns ErrCurrencyMismatch if the operands carry different currencies.
func (m Money) Add(other Money) (Money, error) {
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	if err := other.Validate(); err != nil {
		return Money{}, err
	}
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}

	return NewMoney(m.amount+other.amount, m.currency)
}

// Multiply returns the Money value scaled by a non-negative integer factor.
func (m Money) Multiply(factor int) (Money, error) {
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	if factor < 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("factor",
			fmt.Errorf("%d is negative", factor))
	}
	if factor > 0 && m.amount > math.MaxInt64/int64(factor) {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", m.amount,
			0, math.MaxInt64/int64(factor))
	}

	return NewMoney(m.amount*int64(factor), m.currency)
}

// IsEqual compares two Money values by amount and currency.
func (m Money) IsEqual(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

// String returns a representation like "1050 USD" for logging and diagnostics.
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amount, m.currency)
}

// Validate ensures the Money value was created via NewMoney.
func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}
