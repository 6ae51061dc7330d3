package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pradiptha/bookstore/internal/cart"
	"github.com/pradiptha/bookstore/internal/catalog"
	"github.com/pradiptha/bookstore/internal/checkout"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/otel"
	"github.com/pradiptha/bookstore/internal/toast"
)

type StorefrontService struct {
	carts       *cart.Manager
	toasts      *toast.Center
	catalog     *catalog.Client
	orders      *checkout.OrderClient
	deliveryFee decimal.Decimal

	mu    sync.Mutex
	flows map[string]*checkout.Flow
}

func NewStorefrontService(
	carts *cart.Manager,
	toasts *toast.Center,
	catalogClient *catalog.Client,
	orderClient *checkout.OrderClient,
	deliveryFee decimal.Decimal,
) StorefrontService {
	return StorefrontService{
		carts:       carts,
		toasts:      toasts,
		catalog:     catalogClient,
		orders:      orderClient,
		deliveryFee: deliveryFee,
		flows:       map[string]*checkout.Flow{},
	}
}

func (s *StorefrontService) CartSession(c context.Context, key string) *cart.Session {
	return s.carts.Session(c, key)
}

func (s *StorefrontService) Toasts() *toast.Center {
	return s.toasts
}

func (s *StorefrontService) Catalog() *catalog.Client {
	return s.catalog
}

// AddToCart resolves the product from the catalog so the cart never trusts
// client-supplied prices.
func (s *StorefrontService) AddToCart(
	c context.Context,
	session *cart.Session,
	productID string,
	quantity int32,
) (cart.Snapshot, error) {
	c, span := otel.Tracer.Start(c, "StorefrontService AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "StorefrontService AddToCart").
		Str(log.KEY_PRODUCT_ID, productID).
		Int32(log.KEY_QUANTITY, quantity).
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "finding product").Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	book, err := s.catalog.Book(c, productID)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", productID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Snapshot{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KEY_PROCESS, "adding product to cart").Logger()
	logger.Info().Msg("adding product to cart")
	c = logger.WithContext(c)
	err = session.AddToCart(c, cart.Product{
		ID:     book.ID,
		Ref:    book.Ref,
		Name:   book.Title,
		Price:  book.Price,
		Author: book.Author,
	}, quantity)
	if err != nil {
		err = fmt.Errorf("failed adding productId=%s to cart with error=%w", productID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Snapshot{}, err
	}
	logger.Info().Msg("added product to cart")

	return session.Snapshot(), nil
}

// Flow returns the checkout flow bound to the session, creating one on first
// use. A flow that already succeeded is replaced so the guest can start a new
// order.
func (s *StorefrontService) Flow(session *cart.Session) *checkout.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[session.Key()]
	if !ok || flow.State() == checkout.StateSucceeded {
		flow = checkout.NewFlow(session, s.orders, s.deliveryFee)
		s.flows[session.Key()] = flow
	}
	return flow
}

// CurrentFlow returns the flow as-is, nil when checkout was never started.
func (s *StorefrontService) CurrentFlow(sessionKey string) *checkout.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flows[sessionKey]
}
