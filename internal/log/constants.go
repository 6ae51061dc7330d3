package log

const (
	KEY_APP_NAME       = "app"
	KEY_TAG            = "tag"
	KEY_PROCESS        = "process"
	KEY_CONFIG         = "config"
	KEY_REQUEST_ID     = "requestId"
	KEY_REQUEST_BODY   = "requestBody"
	KEY_REQUEST_HEADER = "requestHeader"
	KEY_REQUEST_HOST   = "host"
	KEY_REQUEST_IP     = "requesterIP"
	KEY_REQUEST_METHOD = "requestMethod"
	KEY_REQUEST_URI    = "requestURI"
	KEY_REQUEST_URL    = "requestURL"

	KEY_SESSION_ID   = "sessionId"
	KEY_CART_KEY     = "cartKey"
	KEY_CART_ITEMS   = "cartItems"
	KEY_CART_COUNT   = "cartCount"
	KEY_CART_TOTAL   = "cartTotal"
	KEY_PRODUCT_ID   = "productId"
	KEY_QUANTITY     = "quantity"
	KEY_ORDER_ID     = "orderId"
	KEY_EVENT_TOPIC  = "eventTopic"
	KEY_EVENT_ORIGIN = "eventOrigin"
	KEY_TOAST_ID     = "toastId"
	KEY_PAGE_SLUG    = "pageSlug"
	KEY_STORAGE      = "storage"
)
