package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/drucklab/backend-shop/internal/config"
	"github.com/drucklab/backend-shop/internal/notify"
	"github.com/drucklab/backend-shop/internal/obs"
	"github.com/drucklab/backend-shop/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisOpts.Addr, Password: redisOpts.Password, DB: redisOpts.DB},
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 10 * time.Second,
		},
	)

	handler := notify.ConfirmationHandler{
		Mail:   notify.LogSender{Logger: logger},
		Orders: repo.Orders{Pool: pool},
		Logger: logger,
	}
	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TaskOrderConfirmation, handler.HandleTask)

	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	logger.Info().Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
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
