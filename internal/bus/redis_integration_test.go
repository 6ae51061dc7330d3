package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisClient(t *testing.T, c context.Context) *redis.Client {
	t.Helper()
	redisContainer, err := testRedis.Run(
		c,
		"redis:7.4.2-alpine3.21",
		testRedis.WithLogLevel(testRedis.LogLevelVerbose),
	)
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	t.Cleanup(func() { redisClient.Close() })
	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	return redisClient
}

type countingHandler struct {
	mu     sync.Mutex
	events []Event
}

func (h *countingHandler) handle(_ context.Context, e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestRedisBridgeDeliversAcrossInstancesWithoutEcho(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed bus tests in short mode")
	}
	c := context.Background()
	client := setupRedisClient(t, c)

	first := NewRedis(c, client, "instance-a")
	t.Cleanup(func() { first.Close() })
	second := NewRedis(c, client, "instance-b")
	t.Cleanup(func() { second.Close() })

	firstHandler := &countingHandler{}
	secondHandler := &countingHandler{}
	first.Subscribe(TopicCartUpdated, firstHandler.handle)
	second.Subscribe(TopicCartUpdated, secondHandler.handle)

	// Subscriptions register asynchronously on the server side.
	time.Sleep(200 * time.Millisecond)

	assert.NoError(t, first.Publish(c, Event{
		Topic:  TopicCartUpdated,
		Origin: "session-a",
		Key:    "guest",
	}))

	assert.Eventually(t, func() bool {
		return secondHandler.count() == 1
	}, 5*time.Second, 50*time.Millisecond)

	// The publisher saw its own event locally once; the echo coming back on
	// the channel was dropped by instance id.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, firstHandler.count())
	assert.Equal(t, 1, secondHandler.count())

	secondHandler.mu.Lock()
	delivered := secondHandler.events[0]
	secondHandler.mu.Unlock()
	assert.Equal(t, "session-a", delivered.Origin)
	assert.Equal(t, "instance-a", delivered.Instance)
	assert.Equal(t, "guest", delivered.Key)
}
