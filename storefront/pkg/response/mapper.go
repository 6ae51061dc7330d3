package response

import (
	"github.com/pradiptha/bookstore/internal/cart"
)

func CartFromSnapshot(snap cart.Snapshot) Cart {
	items := snap.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return Cart{Items: items, Count: snap.Count, Total: snap.Total}
}
