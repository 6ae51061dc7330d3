package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pradiptha/bookstore/internal/log"
)

const channelCartEvents = "bookstore:cart-events"

// Redis bridges the local bus to other storefront instances over a pub/sub
// channel. Events published by this instance come back on the channel and are
// dropped by instance id, so an incoming foreign event is delivered locally
// exactly once and never re-broadcast.
type Redis struct {
	client   *redis.Client
	local    *Memory
	instance string
	sub      *redis.PubSub
}

func NewRedis(c context.Context, client *redis.Client, instance string) *Redis {
	b := &Redis{
		client:   client,
		local:    NewMemory(),
		instance: instance,
		sub:      client.Subscribe(c, channelCartEvents),
	}
	go b.pump(c)
	return b
}

func (b *Redis) Publish(c context.Context, e Event) error {
	e.Instance = b.instance
	if err := b.local.Publish(c, e); err != nil {
		return err
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed marshaling event with error=%w", err)
	}
	if err := b.client.Publish(c, channelCartEvents, payload).Err(); err != nil {
		return fmt.Errorf("failed publishing event to redis with error=%w", err)
	}
	return nil
}

func (b *Redis) Subscribe(topic string, h Handler) func() {
	return b.local.Subscribe(topic, h)
}

func (b *Redis) Close() error {
	return b.sub.Close()
}

func (b *Redis) pump(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "bus Redis pump").
		Logger()

	for msg := range b.sub.Channel() {
		var e Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			err = fmt.Errorf("failed unmarshaling event with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			continue
		}
		if e.Instance == b.instance {
			continue
		}
		logger.Debug().
			Str(log.KEY_EVENT_TOPIC, e.Topic).
			Str(log.KEY_EVENT_ORIGIN, e.Origin).
			Msg("delivering foreign event")
		if err := b.local.Publish(c, e); err != nil {
			logger.Error().Err(err).Msg(err.Error())
		}
	}
}
