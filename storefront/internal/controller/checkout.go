package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pradiptha/bookstore/internal/checkout"
	inErrors "github.com/pradiptha/bookstore/internal/errors"
	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/middleware"
	"github.com/pradiptha/bookstore/internal/otel"
	"github.com/pradiptha/bookstore/internal/session"
	commonOtel "github.com/pradiptha/bookstore/storefront/internal/common/otel"
	"github.com/pradiptha/bookstore/storefront/internal/service"
	"github.com/pradiptha/bookstore/storefront/pkg/request"
)

type CheckoutController struct {
	service *service.StorefrontService
}

func AttachCheckoutController(
	router *mux.Router,
	svc *service.StorefrontService,
	secretKey string,
) {
	controller := CheckoutController{service: svc}

	subrouter := router.PathPrefix("/checkout").Subrouter()
	subrouter.Use(middleware.GuestSession(secretKey))
	subrouter.HandleFunc("", controller.FindCheckout).Methods(http.MethodGet)
	subrouter.HandleFunc("", controller.SubmitCheckout).Methods(http.MethodPost)
	subrouter.HandleFunc("/begin", controller.BeginCheckout).Methods(http.MethodPost)
	subrouter.HandleFunc("/ready", controller.PaymentReady).Methods(http.MethodPost)
}

func (t CheckoutController) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CheckoutController BeginCheckout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CheckoutController BeginCheckout").
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

	logger = logger.With().Str(log.KEY_PROCESS, "beginning checkout").Logger()
	logger.Info().Msg("beginning checkout")
	c = logger.WithContext(c)
	cartSession := t.service.CartSession(c, sessionID.String())
	flow := t.service.Flow(cartSession)
	if err := flow.Begin(); err != nil {
		err = fmt.Errorf("failed beginning checkout with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusConflict,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("began checkout")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "checkout started",
		"data": map[string]interface{}{
			"state": flow.State(),
		},
	})
}

// PaymentReady tells the client whether the external payment button may be
// shown for the submitted form values.
func (t CheckoutController) PaymentReady(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CheckoutController PaymentReady")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CheckoutController PaymentReady").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Checkout{}
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

	logger = logger.With().Str(log.KEY_PROCESS, "checking payment readiness").Logger()
	logger.Info().Msg("checking payment readiness")
	c = logger.WithContext(c)
	cartSession := t.service.CartSession(c, sessionID.String())
	flow := t.service.Flow(cartSession)
	ready := flow.PaymentReady(checkout.GuestInfo{
		Phone:   reqBody.Phone,
		Address: reqBody.Address,
		Name:    reqBody.Name,
		Email:   reqBody.Email,
	})
	logger.Info().Msgf("payment ready=%t", ready)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "payment readiness checked",
		"data": map[string]interface{}{
			"ready": ready,
			"state": flow.State(),
		},
	})
}

func (t CheckoutController) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CheckoutController SubmitCheckout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CheckoutController SubmitCheckout").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Checkout{}
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

	logger = logger.With().Str(log.KEY_PROCESS, "submitting checkout").Logger()
	logger.Info().Msg("submitting checkout")
	c = logger.WithContext(c)
	cartSession := t.service.CartSession(c, sessionID.String())
	flow := t.service.Flow(cartSession)
	confirmation, err := flow.Submit(
		c,
		checkout.GuestInfo{
			Phone:   reqBody.Phone,
			Address: reqBody.Address,
			Name:    reqBody.Name,
			Email:   reqBody.Email,
		},
		checkout.PaymentMethod(reqBody.PaymentMethod),
		reqBody.ApprovalRef,
	)
	if err != nil {
		err = fmt.Errorf("failed submitting checkout with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadRequest
		if errors.Is(err, inErrors.ErrOrderRejected) {
			statusCode = http.StatusUnprocessableEntity
		} else if errors.Is(err, inErrors.ErrCheckoutState) {
			statusCode = http.StatusConflict
		}
		message := flow.LastError()
		if message == "" {
			message = err.Error()
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    message,
			"data": map[string]interface{}{
				"state": flow.State(),
			},
		})
		return
	}
	logger.Info().Str(log.KEY_ORDER_ID, confirmation.OrderID).Msg("submitted checkout")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("orderId=%s placed", confirmation.OrderID),
		"data": map[string]interface{}{
			"state":        flow.State(),
			"confirmation": confirmation,
		},
	})
}

func (t CheckoutController) FindCheckout(w http.ResponseWriter, r *http.Request) {
	c, span := commonOtel.Tracer.Start(r.Context(), "CheckoutController FindCheckout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CheckoutController FindCheckout").
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

	flow := t.service.CurrentFlow(sessionID.String())
	if flow == nil {
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "success",
			"statusCode": http.StatusOK,
			"message":    "checkout not started",
			"data": map[string]interface{}{
				"state": checkout.StateIdle,
			},
		})
		return
	}

	data := map[string]interface{}{
		"state": flow.State(),
	}
	if confirmation := flow.Confirmation(); confirmation != nil {
		data["confirmation"] = confirmation
	}
	if lastError := flow.LastError(); lastError != "" {
		data["lastError"] = lastError
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "checkout found",
		"data":       data,
	})
}
