package catalog

import (
	"github.com/shopspring/decimal"
)

// Book is the single canonical product shape. Everything downstream (cart,
// controllers) consumes this; the upstream's casing quirks stop at Normalize.
type Book struct {
	ID       string          `json:"id"`
	Ref      string          `json:"ref"`
	Title    string          `json:"title"`
	Author   string          `json:"author,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Page struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
}
