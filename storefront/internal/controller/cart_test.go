package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pradiptha/bookstore/internal/bus"
	"github.com/pradiptha/bookstore/internal/cart"
	"github.com/pradiptha/bookstore/internal/catalog"
	"github.com/pradiptha/bookstore/internal/checkout"
	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/storage"
	"github.com/pradiptha/bookstore/internal/toast"
	"github.com/pradiptha/bookstore/storefront/internal/service"
)

type fixture struct {
	router  *mux.Router
	service *service.StorefrontService
}

func newFixture(t *testing.T, orderHandler http.HandlerFunc) *fixture {
	t.Helper()

	catalogServer := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/books/7":
				_, err := w.Write(
					[]byte(`{"id": "7", "bookId": "dune-1965", "title": "Dune", "author": "Frank Herbert", "price": 12.5}`),
				)
				assert.NoError(t, err)
			default:
				w.WriteHeader(http.StatusNotFound)
				_, err := w.Write([]byte(`{"message": "not found"}`))
				assert.NoError(t, err)
			}
		}),
	)
	t.Cleanup(catalogServer.Close)

	orderServer := httptest.NewServer(orderHandler)
	t.Cleanup(orderServer.Close)

	eventBus := bus.NewMemory()
	manager := cart.NewManager(cart.NewStore(storage.NewMemory()), eventBus)
	t.Cleanup(manager.Close)
	center := toast.NewCenter(eventBus)
	t.Cleanup(center.Close)

	svc := service.NewStorefrontService(
		manager,
		center,
		catalog.NewClient(catalogServer.URL),
		checkout.NewOrderClient(orderServer.URL),
		decimal.RequireFromString("1.00"),
	)

	router := mux.NewRouter()
	AttachCartController(router, &svc, "secret")
	AttachCheckoutController(router, &svc, "secret")
	AttachContentController(router, &svc, "")
	return &fixture{router: router, service: &svc}
}

func acceptingOrderHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "success",
			"orderId": "ord-9",
		}))
	}
}

func (f *fixture) do(
	t *testing.T,
	method string,
	path string,
	token string,
	body interface{},
) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	if token != "" {
		request.Header.Set(inHttp.KEY_HEADER_SESSION_TOKEN, token)
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)

	envelope := map[string]interface{}{}
	assert.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	return recorder, envelope
}

func cartFromEnvelope(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := envelope["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("envelope has no data: %v", envelope)
	}
	c, ok := data["cart"].(map[string]interface{})
	if !ok {
		t.Fatalf("data has no cart: %v", data)
	}
	return c
}

func TestCartEndpointsIssueAndReuseGuestSession(t *testing.T) {
	f := newFixture(t, acceptingOrderHandler(t))

	recorder, envelope := f.do(t, http.MethodGet, "/carts", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "success", envelope["status"])

	token := recorder.Header().Get(inHttp.KEY_HEADER_SESSION_TOKEN)
	assert.NotEmpty(t, token)

	recorder, envelope = f.do(t, http.MethodPost, "/carts/items", token,
		map[string]interface{}{"product_id": "7", "quantity": 2})
	assert.Equal(t, http.StatusOK, recorder.Code)

	cartBody := cartFromEnvelope(t, envelope)
	assert.EqualValues(t, 2, cartBody["count"])
	assert.Equal(t, "25", cartBody["total"])

	// The same session sees its cart on a later read.
	recorder, envelope = f.do(t, http.MethodGet, "/carts", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 2, cartFromEnvelope(t, envelope)["count"])

	// A different visitor starts empty.
	recorder, envelope = f.do(t, http.MethodGet, "/carts", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 0, cartFromEnvelope(t, envelope)["count"])
}

func TestCartAddUnknownProduct(t *testing.T) {
	f := newFixture(t, acceptingOrderHandler(t))

	recorder, envelope := f.do(t, http.MethodPost, "/carts/items", "",
		map[string]interface{}{"product_id": "404"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "failed", envelope["status"])
}

func TestCartUpdateRemoveAndClear(t *testing.T) {
	f := newFixture(t, acceptingOrderHandler(t))

	recorder, _ := f.do(t, http.MethodGet, "/carts", "", nil)
	token := recorder.Header().Get(inHttp.KEY_HEADER_SESSION_TOKEN)

	recorder, _ = f.do(t, http.MethodPost, "/carts/items", token,
		map[string]interface{}{"product_id": "7", "quantity": 2})
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, envelope := f.do(t, http.MethodPut, "/carts/items/7", token,
		map[string]interface{}{"quantity": 5})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 5, cartFromEnvelope(t, envelope)["count"])

	recorder, envelope = f.do(t, http.MethodPut, "/carts/items/404", token,
		map[string]interface{}{"quantity": 5})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "failed", envelope["status"])

	recorder, envelope = f.do(t, http.MethodDelete, "/carts/items/7", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 0, cartFromEnvelope(t, envelope)["count"])

	recorder, _ = f.do(t, http.MethodPost, "/carts/items", token,
		map[string]interface{}{"product_id": "7"})
	assert.Equal(t, http.StatusOK, recorder.Code)
	recorder, envelope = f.do(t, http.MethodDelete, "/carts", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 0, cartFromEnvelope(t, envelope)["count"])
}

func TestCheckoutHappyPathOverHttp(t *testing.T) {
	f := newFixture(t, acceptingOrderHandler(t))

	recorder, _ := f.do(t, http.MethodGet, "/carts", "", nil)
	token := recorder.Header().Get(inHttp.KEY_HEADER_SESSION_TOKEN)

	recorder, _ = f.do(t, http.MethodPost, "/carts/items", token,
		map[string]interface{}{"product_id": "7", "quantity": 3})
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, envelope := f.do(t, http.MethodGet, "/checkout", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "idle", data["state"])

	recorder, envelope = f.do(t, http.MethodPost, "/checkout/begin", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, "collecting-guest-info", data["state"])

	recorder, envelope = f.do(t, http.MethodPost, "/checkout/ready", token,
		map[string]interface{}{"phone": "+62812", "address": "Jl. Braga 12"})
	assert.Equal(t, http.StatusOK, recorder.Code)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["ready"])

	recorder, envelope = f.do(t, http.MethodPost, "/checkout", token, map[string]interface{}{
		"phone":          "+62812",
		"address":        "Jl. Braga 12",
		"payment_method": "cash",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, "succeeded", data["state"])
	confirmation := data["confirmation"].(map[string]interface{})
	assert.Equal(t, "ord-9", confirmation["orderId"])
	assert.Equal(t, "38.5", confirmation["total"])

	// The accepted order emptied the cart.
	recorder, envelope = f.do(t, http.MethodGet, "/carts", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 0, cartFromEnvelope(t, envelope)["count"])
}

func TestCheckoutRejectionOverHttp(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "failed",
			"message": "Please login to continue checkout",
		}))
	})

	recorder, _ := f.do(t, http.MethodGet, "/carts", "", nil)
	token := recorder.Header().Get(inHttp.KEY_HEADER_SESSION_TOKEN)

	recorder, _ = f.do(t, http.MethodPost, "/carts/items", token,
		map[string]interface{}{"product_id": "7"})
	assert.Equal(t, http.StatusOK, recorder.Code)
	recorder, _ = f.do(t, http.MethodPost, "/checkout/begin", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, envelope := f.do(t, http.MethodPost, "/checkout", token, map[string]interface{}{
		"phone":          "+62812",
		"address":        "Jl. Braga 12",
		"payment_method": "cash",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Equal(t, "failed", envelope["status"])

	// Account-restriction wording never reaches the guest.
	message := envelope["message"].(string)
	assert.NotContains(t, message, "login")
	assert.Contains(t, message, "try again")

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "failed", data["state"])

	// The cart survives the rejection.
	recorder, envelope = f.do(t, http.MethodGet, "/carts", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 1, cartFromEnvelope(t, envelope)["count"])
}

func TestCheckoutSubmitWithoutBeginOverHttp(t *testing.T) {
	f := newFixture(t, acceptingOrderHandler(t))

	recorder, _ := f.do(t, http.MethodGet, "/carts", "", nil)
	token := recorder.Header().Get(inHttp.KEY_HEADER_SESSION_TOKEN)

	recorder, _ = f.do(t, http.MethodPost, "/carts/items", token, map[string]interface{}{
		"product_id": "7",
		"quantity":   2,
	})
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, envelope := f.do(t, http.MethodPost, "/checkout", token, map[string]interface{}{
		"phone":          "0811111111",
		"address":        "Jl. Braga 12",
		"payment_method": "cash",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "failed", envelope["status"])
	assert.NotEmpty(t, envelope["message"])
}

func TestCheckoutSubmitPaypalWithoutApprovalOverHttp(t *testing.T) {
	f := newFixture(t, acceptingOrderHandler(t))

	recorder, _ := f.do(t, http.MethodGet, "/carts", "", nil)
	token := recorder.Header().Get(inHttp.KEY_HEADER_SESSION_TOKEN)

	recorder, _ = f.do(t, http.MethodPost, "/carts/items", token, map[string]interface{}{
		"product_id": "7",
		"quantity":   1,
	})
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = f.do(t, http.MethodPost, "/checkout/begin", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, envelope := f.do(t, http.MethodPost, "/checkout", token, map[string]interface{}{
		"phone":          "0811111111",
		"address":        "Jl. Braga 12",
		"payment_method": "paypal",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "failed", envelope["status"])
	assert.NotEmpty(t, envelope["message"])
}

func TestCheckoutSubmitValidationOverHttp(t *testing.T) {
	f := newFixture(t, acceptingOrderHandler(t))

	recorder, _ := f.do(t, http.MethodGet, "/carts", "", nil)
	token := recorder.Header().Get(inHttp.KEY_HEADER_SESSION_TOKEN)

	recorder, envelope := f.do(t, http.MethodPost, "/checkout", token, map[string]interface{}{
		"address": "Jl. Braga 12",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "failed", envelope["status"])
}
