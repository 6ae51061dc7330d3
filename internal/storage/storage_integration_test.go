package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupPostgres(t *testing.T, c context.Context) *Postgres {
	t.Helper()
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_PORT":     "5432",
			"POSTGRES_USER":     "postgres",
		}),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "..", "migrations", "20250814093012_create_table_cart_blobs.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, pgConnStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	t.Cleanup(pool.Close)

	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}
	return NewPostgres(pool)
}

func setupRedis(t *testing.T, c context.Context) *Redis {
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
	return NewRedis(redisClient)
}

func TestStorageBackends(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed storage tests in short mode")
	}
	c := context.Background()

	backends := map[string]Storage{
		"redis":    setupRedis(t, c),
		"postgres": setupPostgres(t, c),
	}

	for name, backend := range backends {
		t.Run(name+" read missing key returns not found", func(t *testing.T) {
			_, err := backend.Read(c, uuid.NewString())
			assert.ErrorIs(t, err, ErrNotFound)
		})

		t.Run(name+" write then read round trips", func(t *testing.T) {
			key := uuid.NewString()
			assert.NoError(t, backend.Write(c, key, []byte(`[{"id":"7","quantity":2}]`)))

			blob, err := backend.Read(c, key)
			assert.NoError(t, err)
			assert.JSONEq(t, `[{"id":"7","quantity":2}]`, string(blob))
		})

		t.Run(name+" write overwrites existing blob", func(t *testing.T) {
			key := uuid.NewString()
			assert.NoError(t, backend.Write(c, key, []byte(`[{"id":"7","quantity":2}]`)))
			assert.NoError(t, backend.Write(c, key, []byte(`[{"id":"7","quantity":5}]`)))

			blob, err := backend.Read(c, key)
			assert.NoError(t, err)
			assert.JSONEq(t, `[{"id":"7","quantity":5}]`, string(blob))
		})

		t.Run(name+" delete removes blob and is idempotent", func(t *testing.T) {
			key := uuid.NewString()
			assert.NoError(t, backend.Write(c, key, []byte(`[]`)))
			assert.NoError(t, backend.Delete(c, key))

			_, err := backend.Read(c, key)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, backend.Delete(c, key))
		})
	}
}

func TestPostgresRejectsNonUuidKey(t *testing.T) {
	backend := NewPostgres(nil)

	_, err := backend.Read(context.Background(), "not-a-uuid")
	assert.Error(t, err)
	assert.Error(t, backend.Write(context.Background(), "not-a-uuid", []byte("[]")))
	assert.Error(t, backend.Delete(context.Background(), "not-a-uuid"))
}
