package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/pradiptha/bookstore/internal/errors"
	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/middleware"
	"github.com/pradiptha/bookstore/internal/otel"
	"github.com/pradiptha/bookstore/internal/session"
	commonOtel "github.com/pradiptha/bookstore/storefront/internal/common/otel"
	"github.com/pradiptha/bookstore/storefront/internal/service"
	"github.com/pradiptha/bookstore/storefront/pkg/request"
	"github.com/pradiptha/bookstore/storefront/pkg/response"
)

type CartController struct {
	service *service.StorefrontService
}

func AttachCartController(
	router *mux.Router,
	svc *service.StorefrontService,
	secretKey string,
) {
	controller := CartController{service: svc}

	subrouter := router.PathPrefix("/carts").Subrouter()
	subrouter.Use(middleware.GuestSession(secretKey))
	subrouter.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	subrouter.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	subrouter.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	subrouter.HandleFunc("/items/{productId}", controller.UpdateItemQuantity).
		Methods(http.MethodPut)
	subrouter.HandleFunc("/items/{productId}", controller.RemoveItem).
		Methods(http.MethodDelete)
}

func (t CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController FindCart").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "getting sessionId").Logger()
	sessionID, ok := session.FromContext(c)
	if !ok {
		otel.RecordError(inErrors.ErrTokenInvalid, span)
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    inErrors.ErrTokenInvalid.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KEY_SESSION_ID, sessionID.String()).Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "refreshing cart").Logger()
	logger.Info().Msg("refreshing cart")
	c = logger.WithContext(c)
	cartSession := t.service.CartSession(c, sessionID.String())
	snapshot := cartSession.Refresh(c)
	logger.Info().
		Int32(log.KEY_CART_COUNT, snapshot.Count).
		Str(log.KEY_CART_TOTAL, snapshot.Total.StringFixed(2)).
		Msg("refreshed cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart found",
		"data": map[string]interface{}{
			"cart": response.CartFromSnapshot(snapshot),
		},
	})
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController AddItem").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.AddItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KEY_PROCESS, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KEY_PROCESS, "getting sessionId").Logger()
	sessionID, ok := session.FromContext(c)
	if !ok {
		otel.RecordError(inErrors.ErrTokenInvalid, span)
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    inErrors.ErrTokenInvalid.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KEY_SESSION_ID, sessionID.String()).Logger()

	logger = logger.With().
		Str(log.KEY_PROCESS, fmt.Sprintf("adding productId=%s", reqBody.ProductID)).
		Logger()
	logger.Info().Msgf("adding productId=%s", reqBody.ProductID)
	c = logger.WithContext(c)
	cartSession := t.service.CartSession(c, sessionID.String())
	snapshot, err := t.service.AddToCart(c, cartSession, reqBody.ProductID, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed adding productId=%s with error=%w", reqBody.ProductID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadRequest
		if errors.Is(err, inErrors.ErrCartBusy) {
			statusCode = http.StatusConflict
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("added productId=%s", reqBody.ProductID)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("productId=%s added to cart", reqBody.ProductID),
		"data": map[string]interface{}{
			"cart": response.CartFromSnapshot(snapshot),
		},
	})
}

func (t CartController) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CartController UpdateItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController UpdateItemQuantity").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "getting path values").Logger()
	pathValues := mux.Vars(r)
	productID := pathValues["productId"]
	logger = logger.With().Str(log.KEY_PRODUCT_ID, productID).Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.UpdateQuantity{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KEY_PROCESS, "getting sessionId").Logger()
	sessionID, ok := session.FromContext(c)
	if !ok {
		otel.RecordError(inErrors.ErrTokenInvalid, span)
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    inErrors.ErrTokenInvalid.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KEY_SESSION_ID, sessionID.String()).Logger()

	logger = logger.With().
		Str(log.KEY_PROCESS, fmt.Sprintf("updating quantity of productId=%s", productID)).
		Logger()
	logger.Info().Msgf("updating quantity of productId=%s to %d", productID, reqBody.Quantity)
	c = logger.WithContext(c)
	cartSession := t.service.CartSession(c, sessionID.String())
	err := cartSession.UpdateItemQuantity(c, productID, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf(
			"failed updating quantity of productId=%s with error=%w",
			productID,
			err,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadRequest
		if errors.Is(err, inErrors.ErrCartBusy) {
			statusCode = http.StatusConflict
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("updated quantity of productId=%s", productID)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("quantity of productId=%s updated", productID),
		"data": map[string]interface{}{
			"cart": response.CartFromSnapshot(cartSession.Snapshot()),
		},
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController RemoveItem").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "getting path values").Logger()
	pathValues := mux.Vars(r)
	productID := pathValues["productId"]
	logger = logger.With().Str(log.KEY_PRODUCT_ID, productID).Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "getting sessionId").Logger()
	sessionID, ok := session.FromContext(c)
	if !ok {
		otel.RecordError(inErrors.ErrTokenInvalid, span)
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    inErrors.ErrTokenInvalid.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KEY_SESSION_ID, sessionID.String()).Logger()

	logger = logger.With().
		Str(log.KEY_PROCESS, fmt.Sprintf("removing productId=%s", productID)).
		Logger()
	logger.Info().Msgf("removing productId=%s", productID)
	c = logger.WithContext(c)
	cartSession := t.service.CartSession(c, sessionID.String())
	err := cartSession.RemoveFromCart(c, productID)
	if err != nil {
		err = fmt.Errorf("failed removing productId=%s with error=%w", productID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadRequest
		if errors.Is(err, inErrors.ErrCartBusy) {
			statusCode = http.StatusConflict
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("removed productId=%s", productID)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("productId=%s removed from cart", productID),
		"data": map[string]interface{}{
			"cart": response.CartFromSnapshot(cartSession.Snapshot()),
		},
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartController ClearCart").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "getting sessionId").Logger()
	sessionID, ok := session.FromContext(c)
	if !ok {
		otel.RecordError(inErrors.ErrTokenInvalid, span)
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    inErrors.ErrTokenInvalid.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KEY_SESSION_ID, sessionID.String()).Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	cartSession := t.service.CartSession(c, sessionID.String())
	err := cartSession.ClearCart(c)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrCartBusy) {
			statusCode = http.StatusConflict
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart cleared",
		"data": map[string]interface{}{
			"cart": response.CartFromSnapshot(cartSession.Snapshot()),
		},
	})
}
