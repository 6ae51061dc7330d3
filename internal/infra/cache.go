package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pradiptha/bookstore/internal/config"
	"github.com/pradiptha/bookstore/internal/log"
)

func NewCacheClient(c context.Context, cfg config.Cache) *redis.Client {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "main NewCacheClient").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "initializing redis client").Logger()
	logger.Info().Msg("initializing redis client")
	cache := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Database,
	})
	logger.Info().Msg("initialized redis client")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing redis otel").Logger()
	logger.Info().Msg("initializing redis otel")
	if err := redisotel.InstrumentTracing(cache); err != nil {
		err = fmt.Errorf("failed instrumenting redis tracing with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	if err := redisotel.InstrumentMetrics(cache); err != nil {
		err = fmt.Errorf("failed instrumenting redis metrics with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("initialized redis otel")

	logger = logger.With().Str(log.KEY_PROCESS, "pinging connection to redis").Logger()
	logger.Info().Msg("pinging connection to redis")
	if err := cache.Ping(c).Err(); err != nil {
		err = fmt.Errorf("failed pinging redis with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("pinged connection to redis")

	return cache
}
