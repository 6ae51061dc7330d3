package checkout

import (
	"strconv"
	"strings"
)

// successShaped recognizes the order service's success signal wherever it
// lands in the payload. The upstream has shipped at least four envelope
// variants; accept any of them rather than chasing its releases.
func successShaped(envelope map[string]interface{}) bool {
	if ok, isBool := envelope["success"].(bool); isBool && ok {
		return true
	}
	if status, isString := envelope["status"].(string); isString &&
		strings.EqualFold(strings.TrimSpace(status), "success") {
		return true
	}
	if message, isString := envelope["message"].(string); isString &&
		strings.Contains(strings.ToLower(message), "success") {
		return true
	}
	if data, isMap := envelope["data"].(map[string]interface{}); isMap {
		if ok, isBool := data["success"].(bool); isBool && ok {
			return true
		}
	}
	return false
}

func messageFromEnvelope(envelope map[string]interface{}) string {
	if message, ok := envelope["message"].(string); ok && message != "" {
		return message
	}
	if e, ok := envelope["error"].(string); ok && e != "" {
		return e
	}
	if data, ok := envelope["data"].(map[string]interface{}); ok {
		if message, ok := data["message"].(string); ok && message != "" {
			return message
		}
	}
	return ""
}

// orderIDFromEnvelope digs the order id out of the envelope variants.
// Returns empty when the upstream supplied none; the flow then mints a local
// id for the confirmation view.
func orderIDFromEnvelope(envelope map[string]interface{}) string {
	candidates := []map[string]interface{}{envelope}
	if data, ok := envelope["data"].(map[string]interface{}); ok {
		candidates = append(candidates, data)
	}
	for _, m := range candidates {
		for _, key := range []string{"order_id", "orderId", "OrderID", "id"} {
			switch v := m[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
	}
	return ""
}
