package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pradiptha/bookstore/internal/cart"
	inErrors "github.com/pradiptha/bookstore/internal/errors"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/otel"
)

type State string

const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting-guest-info"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentPaypal PaymentMethod = "paypal"
)

// Delivery-only orders don't collect a name or email; the payload still
// needs both, so sentinel values stand in.
const (
	defaultGuestName  = "Guest"
	defaultGuestEmail = "guest@bookstore.local"
)

var ErrPaymentNotApproved = errors.New("external payment was not approved")

// GuestInfo is the checkout form. Phone and shipping address gate the
// transition to submitting; nothing is sent upstream until both validate.
type GuestInfo struct {
	Phone   string `validate:"required"         json:"phone"`
	Address string `validate:"required"         json:"address"`
	Name    string `validate:"omitempty"        json:"name"`
	Email   string `validate:"omitempty,email"  json:"email"`
}

type Confirmation struct {
	OrderID       string          `json:"orderId"`
	Items         []cart.LineItem `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Address       string          `json:"address"`
}

// Flow runs one guest checkout over a cart session:
// idle -> collecting-guest-info -> submitting -> succeeded | failed.
// A failed flow can be reopened with Begin.
type Flow struct {
	session     *cart.Session
	client      *OrderClient
	deliveryFee decimal.Decimal
	validate    *validator.Validate

	mu           sync.Mutex
	state        State
	confirmation *Confirmation
	lastError    string
}

func NewFlow(session *cart.Session, client *OrderClient, deliveryFee decimal.Decimal) *Flow {
	return &Flow{
		session:     session,
		client:      client,
		deliveryFee: deliveryFee,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		state:       StateIdle,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Confirmation() *Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmation
}

func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}

// Begin opens the checkout dialog. Reopening after a failure is allowed;
// a submission in flight is not interrupted.
func (f *Flow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle && f.state != StateFailed {
		return fmt.Errorf("%w: state=%s", inErrors.ErrCheckoutState, f.state)
	}
	f.state = StateCollecting
	f.lastError = ""
	return nil
}

// PaymentReady reports whether the external payment button may be rendered:
// only while collecting, and only once the local form validates. The
// provider is a capability activated by validation, never offered before.
func (f *Flow) PaymentReady(info GuestInfo) bool {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()
	if state != StateCollecting {
		return false
	}
	return f.validate.Struct(info) == nil
}

// Submit drives collecting -> submitting -> succeeded|failed. For the paypal
// path, approvalRef must carry the provider's approval callback reference.
// The order items are a deep snapshot taken here; later cart mutations do not
// alter an in-flight submission.
func (f *Flow) Submit(
	c context.Context,
	info GuestInfo,
	method PaymentMethod,
	approvalRef string,
) (*Confirmation, error) {
	c, span := otel.Tracer.Start(c, "CheckoutFlow Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CheckoutFlow Submit").
		Str("paymentMethod", string(method)).
		Logger()

	f.mu.Lock()
	if f.state != StateCollecting {
		f.mu.Unlock()
		err := fmt.Errorf("%w: state=%s", inErrors.ErrCheckoutState, f.state)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KEY_PROCESS, "validating guest info").Logger()
	logger.Info().Msg("validating guest info")
	if err := f.validate.StructCtx(c, info); err != nil {
		f.mu.Unlock()
		err = fmt.Errorf("failed validating guest info with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if method != PaymentCash && method != PaymentPaypal {
		f.mu.Unlock()
		err := fmt.Errorf("unknown payment method=%s", method)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if method == PaymentPaypal && approvalRef == "" {
		f.mu.Unlock()
		otel.RecordError(ErrPaymentNotApproved, span)
		logger.Error().Err(ErrPaymentNotApproved).Msg(ErrPaymentNotApproved.Error())
		return nil, ErrPaymentNotApproved
	}
	logger.Info().Msg("validated guest info")

	logger = logger.With().Str(log.KEY_PROCESS, "snapshotting cart").Logger()
	logger.Info().Msg("snapshotting cart")
	snapshot := f.session.Snapshot()
	if len(snapshot.Items) == 0 {
		f.mu.Unlock()
		err := fmt.Errorf("cart is empty")
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	f.state = StateSubmitting
	f.mu.Unlock()
	logger.Info().
		Int32(log.KEY_CART_COUNT, snapshot.Count).
		Str(log.KEY_CART_TOTAL, snapshot.Total.StringFixed(2)).
		Msg("snapshotted cart")

	guestName := info.Name
	if guestName == "" {
		guestName = defaultGuestName
	}
	guestEmail := info.Email
	if guestEmail == "" {
		guestEmail = defaultGuestEmail
	}

	items := make([]OrderItem, len(snapshot.Items))
	for i, item := range snapshot.Items {
		items[i] = OrderItem{
			BookID:   item.ProductRef,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
		}
	}
	total := snapshot.Total.Add(f.deliveryFee)

	logger = logger.With().Str(log.KEY_PROCESS, "submitting order").Logger()
	logger.Info().Msg("submitting order")
	result, err := f.client.Submit(c, GuestOrderPayload{
		GuestPhone:      info.Phone,
		ShippingAddress: info.Address,
		GuestName:       guestName,
		GuestEmail:      guestEmail,
		TotalAmount:     total,
		PaymentMethod:   string(method),
		Items:           items,
	})
	if err != nil {
		f.fail(fmt.Sprintf("order submission failed: %s", genericRetryMessage))
		err = fmt.Errorf("failed submitting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if !result.Accepted {
		f.fail(result.Message)
		otel.RecordError(inErrors.ErrOrderRejected, span)
		logger.Error().Err(inErrors.ErrOrderRejected).Str("message", result.Message).
			Msg(inErrors.ErrOrderRejected.Error())
		return nil, fmt.Errorf("%w: %s", inErrors.ErrOrderRejected, result.Message)
	}
	logger.Info().Msg("submitted order")

	logger = logger.With().Str(log.KEY_PROCESS, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := f.session.ClearCart(c); err != nil {
		// The order exists upstream; a stale local cart is the lesser harm.
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("cleared cart")

	orderID := result.OrderID
	if orderID == "" {
		orderID = "local-" + uuid.NewString()
	}
	confirmation := &Confirmation{
		OrderID:       orderID,
		Items:         snapshot.Items,
		Subtotal:      snapshot.Total,
		DeliveryFee:   f.deliveryFee,
		Total:         total,
		PaymentMethod: method,
		Address:       info.Address,
	}

	f.mu.Lock()
	f.state = StateSucceeded
	f.confirmation = confirmation
	f.mu.Unlock()
	logger.Info().Str(log.KEY_ORDER_ID, orderID).Msg("checkout succeeded")

	return confirmation, nil
}

func (f *Flow) fail(message string) {
	f.mu.Lock()
	f.state = StateFailed
	f.lastError = message
	f.mu.Unlock()
}
