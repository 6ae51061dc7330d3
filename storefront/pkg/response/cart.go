package response

import (
	"github.com/shopspring/decimal"

	"github.com/pradiptha/bookstore/internal/cart"
)

type Cart struct {
	Items []cart.LineItem `json:"items"`
	Count int32           `json:"count"`
	Total decimal.Decimal `json:"total"`
}
