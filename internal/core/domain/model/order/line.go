package order

import (
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// ErrLineIsNotConstructed indicates that a Line was not created via NewLine.
var ErrLineIsNotConstructed = errs.NewValueIsRequiredError("Line must be created via NewLine")

// Line is an immutable order line value object: a product reference, a
// positive quantity, and a non-negative unit price. The zero value is invalid
// and must be constructed via NewLine.
type Line struct {
	productID string
	quantity  int
	unitPrice kernel.Money

	guard guard.ConstructorGuard
}

// NewLine creates a validated order line.
// The product id must be non-empty, the quantity positive, and the unit
// price a constructed Money value (zero amounts are allowed).
func NewLine(productID string, quantity int, unitPrice kernel.Money) (Line, error) {
	if productID == "" {
		return Line{}, errs.NewValueIsRequiredError("productId")
	}
	if quantity <= 0 {
		return Line{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	if err := unitPrice.Validate(); err != nil {
		return Line{}, err
	}

	return Line{
		productID: productID,
		quantity:  quantity,
		unitPrice: unitPrice,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// ProductID returns the identifier of the ordered product.
func (l Line) ProductID() string {
	return l.productID
}

// Quantity returns the ordered quantity.
func (l Line) Quantity() int {
	return l.quantity
}

// UnitPrice returns the price of a single unit.
func (l Line) UnitPrice() kernel.Money {
	return l.unitPrice
}

// Subtotal returns quantity × unitPrice.
func (l Line) Subtotal() (kernel.Money, error) {
	if err := l.Validate(); err != nil {
		return kernel.Money{}, err
	}
	return l.unitPrice.Multiply(l.quantity)
}

// Validate ensures the line was created via NewLine.
func (l Line) Validate() error {
	return l.guard.Validate(ErrLineIsNotConstructed)
}
