package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/okian/nitecap/internal/adapters/cache"
	"github.com/okian/nitecap/internal/adapters/providers"
	"github.com/okian/nitecap/internal/adapters/ratelimit"
	"github.com/okian/nitecap/internal/adapters/repository"
	app "github.com/okian/nitecap/internal/app"
	"github.com/okian/nitecap/internal/config"
	"github.com/okian/nitecap/pkg/logger"
	"github.com/okian/nitecap/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// One limiter for the whole process: the service and every enrichment
	// collaborator draw from the same admission budget.
	limiter := ratelimit.New(
		ratelimit.WithWindow(time.Duration(cfg.RateWindowSeconds)*time.Second),
		ratelimit.WithLimit(cfg.RateLimit),
	)

	opts := []app.Option{
		app.WithLogger(log),
		app.WithLimiter(limiter),
		app.WithCacheTTLHours(cfg.CacheTTLHours),
		app.WithSingleFlight(cfg.CacheSingleFlight),
		app.WithRadiusStep(cfg.RadiusStepMeters),
		app.WithMaxWidenings(cfg.MaxWidenings),
		app.WithDefaultPageSize(cfg.DefaultPageSize),
		app.WithMaxPageSize(cfg.MaxPageSize),
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		opts = append(opts, app.WithCacheBackend(cache.NewRedisBackend(rdb)))
		log.Info(ctx, "using redis cache backend", logger.String("addr", cfg.RedisAddr))
	}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			os.Stderr.WriteString("failed to connect to database: " + err.Error() + "\n")
			return
		}
		defer pool.Close()
		opts = append(opts, app.WithStore(repository.NewPostgresStore(pool)))
		log.Info(ctx, "using postgres venue store")
	}

	if cfg.SocialToken != "" {
		validator := providers.NewSocialValidator(
			providers.WithToken(cfg.SocialToken),
			providers.WithGate(limiter),
			providers.WithSocialLogger(log.Named("social")),
		)
		opts = append(opts, app.WithSocialValidator(validator))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Metrics listener. The venues API itself is served by an external
	// collaborator; this process only exposes observability.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "stopped")
}
