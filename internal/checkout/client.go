package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/otel"
)

// GuestOrderPayload is the outbound guest order submission. Field casing
// follows the order service contract.
type GuestOrderPayload struct {
	GuestPhone      string          `json:"GuestPhone"`
	ShippingAddress string          `json:"ShippingAddress"`
	GuestName       string          `json:"GuestName"`
	GuestEmail      string          `json:"GuestEmail"`
	TotalAmount     decimal.Decimal `json:"TotalAmount"`
	PaymentMethod   string          `json:"PaymentMethod"`
	Items           []OrderItem     `json:"items"`
}

type OrderItem struct {
	BookID   string          `json:"BookID"`
	Quantity int32           `json:"Quantity"`
	Price    decimal.Decimal `json:"Price"`
}

type SubmitResult struct {
	Accepted bool
	OrderID  string
	Message  string
}

// OrderClient submits guest orders to the order service.
type OrderClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOrderClient(baseURL string) *OrderClient {
	return &OrderClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Submit posts the order and interprets the response envelope. A transport
// error is returned as-is; an explicit rejection comes back as a SubmitResult
// with Accepted false and a user-safe message.
func (cl *OrderClient) Submit(
	c context.Context,
	payload GuestOrderPayload,
) (SubmitResult, error) {
	c, span := otel.Tracer.Start(c, "OrderClient Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "OrderClient Submit").
		Str(log.KEY_PROCESS, "submitting guest order").
		Logger()

	logger.Info().Msg("marshaling guest order")
	body, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("failed marshaling guest order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SubmitResult{}, err
	}
	logger.Info().Msg("marshaled guest order")

	logger = logger.With().Str(log.KEY_PROCESS, "sending guest order").Logger()
	logger.Info().Msg("sending guest order")
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cl.baseURL+"/orders/guest",
		bytes.NewBuffer(body),
	)
	if err != nil {
		err = fmt.Errorf("failed creating guest order request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SubmitResult{}, err
	}
	req.Header.Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.KEY_HEADER_REQUEST_ID, requestID)
	}
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed submitting guest order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SubmitResult{}, err
	}
	defer resp.Body.Close()
	logger.Info().Msg("sent guest order")

	logger = logger.With().Str(log.KEY_PROCESS, "unmarshaling order response").Logger()
	logger.Info().Msg("unmarshaling order response")
	envelope := map[string]interface{}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		err = fmt.Errorf("failed unmarshaling order response with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SubmitResult{}, err
	}
	logger.Info().Msg("unmarshaled order response")

	if !successShaped(envelope) {
		message := filterRestrictionMessage(messageFromEnvelope(envelope))
		logger.Warn().
			Int("statusCode", resp.StatusCode).
			Str("upstreamMessage", messageFromEnvelope(envelope)).
			Msg("order service rejected guest order")
		return SubmitResult{Accepted: false, Message: message}, nil
	}

	orderID := orderIDFromEnvelope(envelope)
	logger.Info().Str(log.KEY_ORDER_ID, orderID).Msg("guest order accepted")
	return SubmitResult{Accepted: true, OrderID: orderID}, nil
}
