package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/pradiptha/bookstore/internal/bus"
	"github.com/pradiptha/bookstore/internal/cart"
	"github.com/pradiptha/bookstore/internal/catalog"
	"github.com/pradiptha/bookstore/internal/checkout"
	"github.com/pradiptha/bookstore/internal/config"
	"github.com/pradiptha/bookstore/internal/constants"
	inHttp "github.com/pradiptha/bookstore/internal/http"
	"github.com/pradiptha/bookstore/internal/infra"
	"github.com/pradiptha/bookstore/internal/log"
	"github.com/pradiptha/bookstore/internal/middleware"
	"github.com/pradiptha/bookstore/internal/otel"
	"github.com/pradiptha/bookstore/internal/storage"
	"github.com/pradiptha/bookstore/internal/toast"
	commonOtel "github.com/pradiptha/bookstore/storefront/internal/common/otel"
	"github.com/pradiptha/bookstore/storefront/internal/controller"
	"github.com/pradiptha/bookstore/storefront/internal/service"
)

func RunStorefrontService(c context.Context) {
	c, span := commonOtel.Tracer.Start(c, "RunStorefrontService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_APP_NAME, constants.APP_STOREFRONT_SERVICE).
		Str(log.KEY_TAG, "main RunStorefrontService").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.APP_STOREFRONT_SERVICE)
	logger = logger.With().Any(log.KEY_CONFIG, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.APP_STOREFRONT_SERVICE),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.APP_STOREFRONT_SERVICE, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = otel.ShutdownOtel(c, otelShutdowns)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger = logger.With().Str(log.KEY_PROCESS, "shutting down cache").Logger()
		logger.Info().Msg("shutting down cache")
		err = cache.Close()
		if err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing cart storage").Logger()
	logger.Info().Str(log.KEY_STORAGE, cfg.Storefront.Storage).Msg("initializing cart storage")
	var cartStorage storage.Storage
	switch cfg.Storefront.Storage {
	case "postgres":
		c = logger.WithContext(c)
		db := infra.NewDatabaseClient(c, cfg.Database)
		defer func() {
			logger = logger.With().Str(log.KEY_PROCESS, "shutting down database").Logger()
			logger.Info().Msg("shutting down database")
			db.Close()
			logger.Info().Msg("shutdown database")
		}()
		cartStorage = storage.NewPostgres(db)
	case "memory":
		cartStorage = storage.NewMemory()
	default:
		cartStorage = storage.NewRedis(cache)
	}
	logger.Info().Msg("initialized cart storage")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing event bus").Logger()
	logger.Info().Msg("initializing event bus")
	c = logger.WithContext(c)
	eventBus := bus.NewRedis(c, cache, uuid.NewString())
	defer func() {
		logger = logger.With().Str(log.KEY_PROCESS, "shutting down event bus").Logger()
		logger.Info().Msg("shutting down event bus")
		if err := eventBus.Close(); err != nil {
			err = fmt.Errorf("failed shutting down event bus with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown event bus")
	}()
	logger.Info().Msg("initialized event bus")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing storefront service").Logger()
	logger.Info().Msg("initializing storefront service")
	deliveryFee, err := decimal.NewFromString(cfg.Storefront.DeliveryFee)
	if err != nil {
		err = fmt.Errorf(
			"failed parsing delivery_fee=%s with error=%w",
			cfg.Storefront.DeliveryFee,
			err,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	cartManager := cart.NewManager(cart.NewStore(cartStorage), eventBus)
	defer cartManager.Close()
	toastCenter := toast.NewCenter(eventBus)
	defer toastCenter.Close()
	catalogClient := catalog.NewClient(cfg.Storefront.CatalogBaseUrl)
	orderClient := checkout.NewOrderClient(cfg.Storefront.OrderBaseUrl)
	storefrontService := service.NewStorefrontService(
		cartManager,
		toastCenter,
		catalogClient,
		orderClient,
		deliveryFee,
	)
	logger.Info().Msg("initialized storefront service")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing controllers").Logger()
	logger.Info().Msg("initializing controllers")
	controller.AttachCartController(router, &storefrontService, cfg.Application.SecretKey)
	controller.AttachCheckoutController(router, &storefrontService, cfg.Application.SecretKey)
	controller.AttachContentController(router, &storefrontService, cfg.Application.AdminKeyHash)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, map[string]interface{}{
			"status":     "success",
			"statusCode": http.StatusOK,
			"message":    "ok",
		})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	logger.Info().Msg("initialized controllers")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(log.KEY_PROCESS, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)

		logger = logger.With().Str(log.KEY_PROCESS, "shutdown server").Logger()
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())

			c = logger.WithContext(c)
			if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
				err = fmt.Errorf("failed shutting down otel with error=%w", err)
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			return
		}
		logger.Info().Msg("shutdown server")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KEY_PROCESS, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")

	logger = logger.With().Str(log.KEY_PROCESS, "shutting down http server").Logger()
	logger.Info().Msg("shutting down http server")
	err = httpServer.Shutdown(c)
	if err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
