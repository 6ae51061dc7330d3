package toast

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pradiptha/bookstore/internal/bus"
)

func TestPushAssignsMonotonicIds(t *testing.T) {
	center := NewCenter(bus.NewMemory())
	defer center.Close()

	first := center.Push("Dune added to cart", SeveritySuccess, time.Minute)
	second := center.Push("The Hobbit added to cart", SeveritySuccess, time.Minute)
	third := center.Push("Checkout failed", SeverityError, time.Minute)

	assert.Less(t, first, second)
	assert.Less(t, second, third)

	active := center.Active()
	assert.Len(t, active, 3)
	assert.Equal(t, first, active[0].ID)
	assert.Equal(t, third, active[2].ID)
}

func TestDismissRemovesToast(t *testing.T) {
	center := NewCenter(bus.NewMemory())
	defer center.Close()

	id := center.Push("Dune added to cart", SeveritySuccess, time.Minute)

	assert.True(t, center.Dismiss(id))
	assert.False(t, center.Dismiss(id))
	assert.Empty(t, center.Active())
}

func TestToastExpiresAfterDurationAndFadeGrace(t *testing.T) {
	center := NewCenter(bus.NewMemory())
	defer center.Close()

	id := center.Push("Dune added to cart", SeveritySuccess, 10*time.Millisecond)
	assert.Len(t, center.Active(), 1)

	assert.Eventually(t, func() bool {
		return len(center.Active()) == 0
	}, time.Second, 10*time.Millisecond)
	assert.False(t, center.Dismiss(id))
}

func TestCenterPushesToastFromBusEvent(t *testing.T) {
	c := context.Background()
	b := bus.NewMemory()
	center := NewCenter(b)
	defer center.Close()

	detail, err := json.Marshal(bus.ToastDetail{
		Message:    "Dune added to cart",
		Severity:   SeveritySuccess,
		DurationMs: time.Minute.Milliseconds(),
	})
	assert.NoError(t, err)
	assert.NoError(t, b.Publish(c, bus.Event{
		Topic:  bus.TopicToastShow,
		Origin: "session-a",
		Key:    "guest",
		Detail: detail,
	}))

	active := center.Active()
	assert.Len(t, active, 1)
	assert.Equal(t, "Dune added to cart", active[0].Message)
	assert.Equal(t, SeveritySuccess, active[0].Severity)
	assert.Equal(t, time.Minute, active[0].Duration)
}

func TestCenterIgnoresMalformedDetail(t *testing.T) {
	c := context.Background()
	b := bus.NewMemory()
	center := NewCenter(b)
	defer center.Close()

	assert.NoError(t, b.Publish(c, bus.Event{
		Topic:  bus.TopicToastShow,
		Detail: []byte("{not json"),
	}))

	assert.Empty(t, center.Active())
}
