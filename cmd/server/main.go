package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/adapter/cloudinary"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/adapter/httpserver"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/adapter/postgres"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/adapter/redis"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/app"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/crypto"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/domain"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/config"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/platform/logging"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/qrimage"
	"github.com/qrgetsemani-cmyk/QrGetsemani/internal/token"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// setupRedis is optional: without REDIS_URL every lookup goes straight to
// PostgreSQL.
func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, record cache disabled")
		return nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupHealthChecks(pool *pgxpool.Pool, redisClient *goredis.Client) []httpserver.HealthCheck {
	checks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
	}
	if redisClient != nil {
		checks = append(checks, httpserver.HealthCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		})
	}
	return checks
}

func runGracefulShutdown(srv *httpserver.Server, timeout time.Duration) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	storage, err := cloudinary.NewStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		slog.Error("Failed to create file storage", "error", err)
		os.Exit(1)
	}

	// Pass nil explicitly to avoid a typed-nil interface value
	var cache domain.RecordCache
	if redisClient != nil {
		cache = redis.NewRecordCache(redisClient)
	}

	appSvc := app.NewService(
		postgres.NewRecordRepo(pool),
		cache,
		storage,
		qrimage.NewCodec(),
		token.NewGenerator(clock),
		crypto.NewAesCbcCipher(),
		clock,
		cfg.PublicBaseURL,
		cfg.PayloadMode,
	)

	srv := httpserver.NewServer(cfg, appSvc, setupHealthChecks(pool, redisClient))

	done := runGracefulShutdown(srv, cfg.ShutdownTimeout)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
