// Package bus is the change-notification fabric of the cart subsystem. The
// in-memory bus fans events out to subscribers in the same process; the redis
// bridge extends the same interface across storefront instances. Events carry
// the origin instance id so a receiving instance can refresh without
// re-broadcasting what it just heard.
package bus

import (
	"context"
	"encoding/json"
)

const (
	TopicCartUpdated = "cart.updated"
	TopicCartCleared = "cart.cleared"
	TopicToastShow   = "toast.show"
)

type Event struct {
	Topic string `json:"topic"`
	// Origin identifies the publishing cart session, Instance the storefront
	// process it ran in. The redis bridge drops echoes by Instance; sessions
	// skip their own events by Origin.
	Origin   string          `json:"origin"`
	Instance string          `json:"instance,omitempty"`
	Key      string          `json:"key"`
	Detail   json.RawMessage `json:"detail,omitempty"`
}

// ToastDetail is the wire shape of a toast.show event.
type ToastDetail struct {
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	DurationMs int64  `json:"durationMs"`
}

type Handler func(c context.Context, e Event)

type Bus interface {
	// Publish delivers e to every subscriber of e.Topic. Delivery happens
	// strictly after the storage write the event describes.
	Publish(c context.Context, e Event) error
	// Subscribe registers h for topic and returns an unsubscribe func.
	Subscribe(topic string, h Handler) func()
}
