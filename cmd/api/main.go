package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/drucklab/backend-shop/internal/cart"
	"github.com/drucklab/backend-shop/internal/catalog"
	"github.com/drucklab/backend-shop/internal/checkout"
	"github.com/drucklab/backend-shop/internal/config"
	"github.com/drucklab/backend-shop/internal/db"
	"github.com/drucklab/backend-shop/internal/events"
	"github.com/drucklab/backend-shop/internal/health"
	"github.com/drucklab/backend-shop/internal/identity"
	"github.com/drucklab/backend-shop/internal/notify"
	"github.com/drucklab/backend-shop/internal/obs"
	"github.com/drucklab/backend-shop/internal/quote"
	"github.com/drucklab/backend-shop/internal/ratelimit"
	"github.com/drucklab/backend-shop/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "shop")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "shop-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cfg.AutoMigrate {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "shop-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisOpts.Addr, Password: redisOpts.Password, DB: redisOpts.DB})
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	validate := validator.New()

	productsRepo := repo.Products{Pool: pool}
	cartsRepo := repo.Carts{Pool: pool}
	ordersRepo := repo.Orders{Pool: pool}
	eventsRepo := repo.Events{Pool: pool}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Products: productsRepo,
		Cache:    catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalogService)

	quoteService, err := quote.NewService(quote.ServiceConfig{
		Products: catalogService,
		Sink:     obs.AnomalySink(logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise quote service")
	}
	quoteHandler := quote.NewHandler(quoteService, validate, cfg.VATRate)

	cartService := &cart.Service{Store: cartsRepo, Quotes: quoteService, TTL: cfg.CartTTL}
	cartHandler := &cart.Handler{Svc: cartService, Validate: validate, VATRate: cfg.VATRate}

	bus := &events.Bus{
		Store: eventsRepo,
		Notifiers: []events.Notifier{
			notify.Enqueuer{Client: taskClient, Logger: logger},
		},
	}
	checkoutService := &checkout.Service{
		DB:       pool,
		Carts:    cartsRepo,
		Orders:   ordersRepo,
		Products: catalogService,
		Bus:      bus,
		Currency: cfg.Currency,
		Logger:   logger,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutService, Validate: validate}

	identityResolver := identity.Resolver{
		Secret:  []byte(cfg.SessionJWTSecret),
		VATRate: cfg.VATRate,
	}

	quoteLimiter, err := ratelimit.New(redisClient, cfg.QuoteRateLimit, "quote", logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(identityResolver.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{handle}", catalogHandler.ProductDetail)

		v.With(quoteLimiter.Middleware).Post("/quote", quoteHandler.Quote)

		v.Route("/carts", func(c chi.Router) {
			c.Post("/", cartHandler.Create)
			c.Get("/{id}", cartHandler.Get)
			c.Post("/{id}/items", cartHandler.AddItem)
			c.Delete("/{id}/items/{itemId}", cartHandler.RemoveItem)
		})

		v.Post("/checkout", checkoutHandler.PlaceOrder)
	})

	var handler http.Handler = r
	if tracingEnabled {
		handler = otelhttp.NewHandler(r, "shop-api")
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: handler,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-shutdownCtx.Done()
		graceCtx, graceCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer graceCancel()
		if err := srv.Shutdown(graceCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server shutdown complete")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
