package cart

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product entry in the persisted cart. At most one line item
// exists per distinct ID; adding the same product again increments Quantity.
// Name, UnitPrice and Author are captured at add-time and never
// re-synchronized with the catalog.
type LineItem struct {
	ID         string          `json:"id"`
	ProductRef string          `json:"productRef"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int32           `json:"quantity"`
	Author     string          `json:"authorOrMeta,omitempty"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Product is the canonical catalog shape consumed by Add, produced by the
// catalog normalization boundary.
type Product struct {
	ID     string
	Ref    string
	Name   string
	Price  decimal.Decimal
	Author string
}
