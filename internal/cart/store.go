package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/otel"
	"github.com/pradiptha/bookstore/internal/storage"
)

// Store is the sole authority for the persisted cart representation: a JSON
// array of line items under one storage key per session. It never propagates
// a raw storage error to its caller; mutators report success as a bool and
// readers fall back to an empty cart. An unparseable blob also reads as empty
// (fail-open), since nothing of value existed before parsing.
type Store struct {
	storage storage.Storage
}

func NewStore(s storage.Storage) Store {
	return Store{storage: s}
}

func (s Store) Items(c context.Context, key string) []LineItem {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartStore Items").
		Str(log.KEY_CART_KEY, key).
		Logger()

	blob, err := s.storage.Read(c, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			err = fmt.Errorf("failed reading cart blob with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
		return []LineItem{}
	}

	items := []LineItem{}
	if err := json.Unmarshal(blob, &items); err != nil {
		err = fmt.Errorf("failed parsing cart blob, treating cart as empty with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return []LineItem{}
	}
	return items
}

func (s Store) ItemCount(c context.Context, key string) int32 {
	var count int32
	for _, item := range s.Items(c, key) {
		count += item.Quantity
	}
	return count
}

// Total is recomputed from the line items on every read, never cached in the
// blob.
func (s Store) Total(c context.Context, key string) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items(c, key) {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Add merges product into the cart: an existing line item with the same id
// has its quantity incremented, otherwise a new line item is appended. A
// quantity below 1 defaults to 1. Returns false only on a storage failure.
func (s Store) Add(c context.Context, key string, p Product, quantity int32) bool {
	c, span := otel.Tracer.Start(c, "CartStore Add")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartStore Add").
		Str(log.KEY_CART_KEY, key).
		Str(log.KEY_PRODUCT_ID, p.ID).
		Int32(log.KEY_QUANTITY, quantity).
		Logger()

	if quantity < 1 {
		quantity = 1
	}

	items := s.Items(c, key)
	merged := false
	for i := range items {
		if items[i].ID == p.ID {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, LineItem{
			ID:         p.ID,
			ProductRef: p.Ref,
			Name:       p.Name,
			UnitPrice:  p.Price,
			Quantity:   quantity,
			Author:     p.Author,
		})
	}

	ok := s.persist(c, key, items)
	if ok {
		logger.Info().Bool("merged", merged).Msg("added product to cart")
	}
	return ok
}

// Remove is idempotent: removing an id that is not in the cart is still a
// success and leaves the blob untouched.
func (s Store) Remove(c context.Context, key string, id string) bool {
	c, span := otel.Tracer.Start(c, "CartStore Remove")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartStore Remove").
		Str(log.KEY_CART_KEY, key).
		Str(log.KEY_PRODUCT_ID, id).
		Logger()

	items := s.Items(c, key)
	kept := items[:0]
	found := false
	for _, item := range items {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return true
	}

	ok := s.persist(c, key, kept)
	if ok {
		logger.Info().Msg("removed line item from cart")
	}
	return ok
}

// UpdateQuantity sets (not increments) the quantity of an existing line item.
// A quantity of zero or below removes the line item instead, keeping the
// quantity >= 1 invariant. Returns false when id is not in the cart.
func (s Store) UpdateQuantity(c context.Context, key string, id string, quantity int32) bool {
	c, span := otel.Tracer.Start(c, "CartStore UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartStore UpdateQuantity").
		Str(log.KEY_CART_KEY, key).
		Str(log.KEY_PRODUCT_ID, id).
		Int32(log.KEY_QUANTITY, quantity).
		Logger()

	if quantity <= 0 {
		return s.Remove(c, key, id)
	}

	items := s.Items(c, key)
	found := false
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		logger.Warn().Msg("line item not found")
		return false
	}

	ok := s.persist(c, key, items)
	if ok {
		logger.Info().Msg("updated line item quantity")
	}
	return ok
}

func (s Store) Clear(c context.Context, key string) bool {
	c, span := otel.Tracer.Start(c, "CartStore Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartStore Clear").
		Str(log.KEY_CART_KEY, key).
		Logger()

	if err := s.storage.Delete(c, key); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false
	}
	logger.Info().Msg("cleared cart")
	return true
}

func (s Store) persist(c context.Context, key string, items []LineItem) bool {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartStore persist").
		Str(log.KEY_CART_KEY, key).
		Logger()

	blob, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart blob with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return false
	}
	if err := s.storage.Write(c, key, blob); err != nil {
		err = fmt.Errorf("failed writing cart blob with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return false
	}
	return true
}
