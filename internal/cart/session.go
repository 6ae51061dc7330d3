package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pradiptha/bookstore/internal/bus"
	inErrors "github.com/pradiptha/bookstore/internal/errors"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/otel"
)

const toastDuration = 3 * time.Second

// Snapshot is the in-memory view of a cart held by a Session. Items is a
// fresh slice on every reload, never aliased into the Store.
type Snapshot struct {
	Items []LineItem
	Count int32
	Total decimal.Decimal
}

// UpdatedDetail is the wire shape of a cart.updated event.
type UpdatedDetail struct {
	Items []LineItem `json:"items"`
	Count int32      `json:"count"`
	Total string     `json:"total"`
}

// Session is the reactive facade over one cart key. It keeps a snapshot for
// cheap lookups, guards against overlapping mutations, and publishes change
// events after the Store write completes. A refresh triggered by an incoming
// event never publishes, which is what keeps N instances from cycling
// notifications between each other.
type Session struct {
	id    string
	key   string
	store Store
	bus   bus.Bus

	mu       sync.RWMutex
	snapshot Snapshot

	busy       atomic.Bool
	refreshing atomic.Bool
	epoch      atomic.Uint64

	unsubscribes []func()
}

func NewSession(c context.Context, key string, store Store, b bus.Bus) *Session {
	s := &Session{
		id:    uuid.NewString(),
		key:   key,
		store: store,
		bus:   b,
		snapshot: Snapshot{
			Items: []LineItem{},
			Total: decimal.Zero,
		},
	}
	s.unsubscribes = append(s.unsubscribes,
		b.Subscribe(bus.TopicCartUpdated, s.handleEvent),
		b.Subscribe(bus.TopicCartCleared, s.handleEvent),
	)
	s.reload(c)
	return s
}

func (s *Session) Key() string { return s.key }

// Close detaches the session from the bus.
func (s *Session) Close() {
	for _, unsubscribe := range s.unsubscribes {
		unsubscribe()
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]LineItem, len(s.snapshot.Items))
	copy(items, s.snapshot.Items)
	return Snapshot{Items: items, Count: s.snapshot.Count, Total: s.snapshot.Total}
}

// IsInCart and ItemQuantity are pure lookups against the snapshot, no Store
// read, so callers can render optimistic state cheaply.
func (s *Session) IsInCart(productID string) bool {
	return s.ItemQuantity(productID) > 0
}

func (s *Session) ItemQuantity(productID string) int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.snapshot.Items {
		if item.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

// AddToCart merges product into the cart. While a mutation is in flight any
// further mutation returns ErrCartBusy without touching the Store; callers
// retry or disable their trigger control.
func (s *Session) AddToCart(c context.Context, p Product, quantity int32) error {
	c, span := otel.Tracer.Start(c, "CartSession AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartSession AddToCart").
		Str(log.KEY_CART_KEY, s.key).
		Str(log.KEY_PRODUCT_ID, p.ID).
		Logger()

	if !s.busy.CompareAndSwap(false, true) {
		logger.Warn().Err(inErrors.ErrCartBusy).Msg(inErrors.ErrCartBusy.Error())
		return inErrors.ErrCartBusy
	}
	defer s.busy.Store(false)

	ok := s.store.Add(c, s.key, p, quantity)
	countMutation("add", ok)
	if !ok {
		err := fmt.Errorf("failed adding productId=%s to cart", p.ID)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	snap := s.reload(c)
	s.publishUpdated(c, snap)
	s.publishToast(c, fmt.Sprintf("%s added to cart", p.Name), "success")
	return nil
}

// RemoveFromCart captures the display name before removal so the toast can
// name what disappeared.
func (s *Session) RemoveFromCart(c context.Context, productID string) error {
	c, span := otel.Tracer.Start(c, "CartSession RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartSession RemoveFromCart").
		Str(log.KEY_CART_KEY, s.key).
		Str(log.KEY_PRODUCT_ID, productID).
		Logger()

	if !s.busy.CompareAndSwap(false, true) {
		logger.Warn().Err(inErrors.ErrCartBusy).Msg(inErrors.ErrCartBusy.Error())
		return inErrors.ErrCartBusy
	}
	defer s.busy.Store(false)

	name := "Item"
	s.mu.RLock()
	for _, item := range s.snapshot.Items {
		if item.ID == productID {
			name = item.Name
			break
		}
	}
	s.mu.RUnlock()

	ok := s.store.Remove(c, s.key, productID)
	countMutation("remove", ok)
	if !ok {
		err := fmt.Errorf("failed removing productId=%s from cart", productID)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	snap := s.reload(c)
	s.publishUpdated(c, snap)
	s.publishToast(c, fmt.Sprintf("%s removed from cart", name), "success")
	return nil
}

// UpdateItemQuantity sets the quantity directly; zero or below removes the
// line item. Quantity changes are reflected inline in the cart view, so no
// toast is published, only cart.updated.
func (s *Session) UpdateItemQuantity(c context.Context, productID string, quantity int32) error {
	c, span := otel.Tracer.Start(c, "CartSession UpdateItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartSession UpdateItemQuantity").
		Str(log.KEY_CART_KEY, s.key).
		Str(log.KEY_PRODUCT_ID, productID).
		Int32(log.KEY_QUANTITY, quantity).
		Logger()

	if !s.busy.CompareAndSwap(false, true) {
		logger.Warn().Err(inErrors.ErrCartBusy).Msg(inErrors.ErrCartBusy.Error())
		return inErrors.ErrCartBusy
	}
	defer s.busy.Store(false)

	ok := s.store.UpdateQuantity(c, s.key, productID, quantity)
	countMutation("update_quantity", ok)
	if !ok {
		otel.RecordError(inErrors.ErrItemNotFound, span)
		logger.Warn().Err(inErrors.ErrItemNotFound).Msg(inErrors.ErrItemNotFound.Error())
		return inErrors.ErrItemNotFound
	}

	snap := s.reload(c)
	s.publishUpdated(c, snap)
	return nil
}

func (s *Session) ClearCart(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartSession ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartSession ClearCart").
		Str(log.KEY_CART_KEY, s.key).
		Logger()

	if !s.busy.CompareAndSwap(false, true) {
		logger.Warn().Err(inErrors.ErrCartBusy).Msg(inErrors.ErrCartBusy.Error())
		return inErrors.ErrCartBusy
	}
	defer s.busy.Store(false)

	ok := s.store.Clear(c, s.key)
	countMutation("clear", ok)
	if !ok {
		err := fmt.Errorf("failed clearing cart")
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	s.reload(c)
	err := s.bus.Publish(c, bus.Event{
		Topic:  bus.TopicCartCleared,
		Origin: s.id,
		Key:    s.key,
	})
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
	}
	return nil
}

// Refresh re-reads the Store into the snapshot. Calls that arrive while a
// refresh is already running return the current snapshot instead of
// re-reading storage; mutators use reload directly, so their read-after-write
// is never coalesced away.
func (s *Session) Refresh(c context.Context) Snapshot {
	if !s.refreshing.CompareAndSwap(false, true) {
		return s.Snapshot()
	}
	defer s.refreshing.Store(false)
	s.reload(c)
	return s.Snapshot()
}

// Epoch increments on every reload; tests use it to observe coalescing.
func (s *Session) Epoch() uint64 {
	return s.epoch.Load()
}

func (s *Session) reload(c context.Context) Snapshot {
	items := s.store.Items(c, s.key)
	var count int32
	total := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		total = total.Add(item.Subtotal())
	}
	snap := Snapshot{Items: items, Count: count, Total: total}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	s.epoch.Add(1)
	return snap
}

// handleEvent refreshes on a foreign cart event for this key. It never
// publishes: re-broadcasting an incoming signal would cycle notifications
// between instances.
func (s *Session) handleEvent(c context.Context, e bus.Event) {
	if e.Key != s.key || e.Origin == s.id {
		return
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartSession handleEvent").
		Str(log.KEY_EVENT_TOPIC, e.Topic).
		Str(log.KEY_EVENT_ORIGIN, e.Origin).
		Logger()
	logger.Debug().Msg("refreshing snapshot from foreign event")
	s.Refresh(c)
}

func (s *Session) publishUpdated(c context.Context, snap Snapshot) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartSession publishUpdated").
		Str(log.KEY_CART_KEY, s.key).
		Int32(log.KEY_CART_COUNT, snap.Count).
		Str(log.KEY_CART_TOTAL, snap.Total.StringFixed(2)).
		Logger()

	detail, err := json.Marshal(UpdatedDetail{
		Items: snap.Items,
		Count: snap.Count,
		Total: snap.Total.StringFixed(2),
	})
	if err != nil {
		err = fmt.Errorf("failed marshaling cart.updated detail with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	err = s.bus.Publish(c, bus.Event{
		Topic:  bus.TopicCartUpdated,
		Origin: s.id,
		Key:    s.key,
		Detail: detail,
	})
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
	}
}

func (s *Session) publishToast(c context.Context, message string, severity string) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartSession publishToast").
		Logger()

	detail, err := json.Marshal(bus.ToastDetail{
		Message:    message,
		Severity:   severity,
		DurationMs: toastDuration.Milliseconds(),
	})
	if err != nil {
		err = fmt.Errorf("failed marshaling toast.show detail with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	err = s.bus.Publish(c, bus.Event{
		Topic:  bus.TopicToastShow,
		Origin: s.id,
		Key:    s.key,
		Detail: detail,
	})
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
	}
}
