// Package toast keeps the ephemeral notifications raised by cart and
// checkout events. Toasts are process-scoped, never persisted, and remove
// themselves once their duration plus a fixed fade grace has passed.
package toast

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pradiptha/bookstore/internal/bus"
	"github.com/pradiptha/bookstore/internal/log"
)

// fade grace keeps a toast addressable while the UI animates it out.
const fadeGrace = 300 * time.Millisecond

const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)

type Toast struct {
	ID       int64         `json:"id"`
	Message  string        `json:"message"`
	Severity string        `json:"severity"`
	Duration time.Duration `json:"durationMs"`
}

type entry struct {
	toast Toast
	timer *time.Timer
}

type Center struct {
	mu          sync.RWMutex
	nextID      int64
	active      map[int64]entry
	unsubscribe func()
}

func NewCenter(b bus.Bus) *Center {
	center := &Center{active: map[int64]entry{}}
	center.unsubscribe = b.Subscribe(bus.TopicToastShow, center.handleEvent)
	return center
}

func (t *Center) Close() {
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, e := range t.active {
		e.timer.Stop()
		delete(t.active, id)
	}
}

// Push registers a toast and schedules its removal. Ids increase
// monotonically for the life of the process; no two toasts share one.
func (t *Center) Push(message string, severity string, duration time.Duration) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	timer := time.AfterFunc(duration+fadeGrace, func() {
		t.expire(id)
	})
	t.active[id] = entry{
		toast: Toast{ID: id, Message: message, Severity: severity, Duration: duration},
		timer: timer,
	}
	return id
}

// Dismiss removes a toast before its scheduled expiry. Returns false when the
// toast already expired.
func (t *Center) Dismiss(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.active[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(t.active, id)
	return true
}

func (t *Center) Active() []Toast {
	t.mu.RLock()
	defer t.mu.RUnlock()
	toasts := make([]Toast, 0, len(t.active))
	for _, e := range t.active {
		toasts = append(toasts, e.toast)
	}
	sort.Slice(toasts, func(i, j int) bool { return toasts[i].ID < toasts[j].ID })
	return toasts
}

func (t *Center) expire(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, id)
}

func (t *Center) handleEvent(c context.Context, e bus.Event) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "ToastCenter handleEvent").
		Logger()

	detail := bus.ToastDetail{}
	if err := json.Unmarshal(e.Detail, &detail); err != nil {
		err = fmt.Errorf("failed unmarshaling toast.show detail with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	id := t.Push(detail.Message, detail.Severity, time.Duration(detail.DurationMs)*time.Millisecond)
	logger.Debug().Int64(log.KEY_TOAST_ID, id).Msg("pushed toast")
}
