package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mortgage-service/config"
	httpLayer "mortgage-service/http"
	"mortgage-service/logging"
	"mortgage-service/metrics"
	"mortgage-service/repository"
	"mortgage-service/service"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:          "mortgage-service",
		Short:        "Mortgage calculation HTTP service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cobra.OnInitialize(func() {
		if err := config.LoadDotEnv(".env"); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	})
	if err := config.BindFlags(cmd, v); err != nil {
		panic(err)
	}
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cache, closeCache, err := newCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := service.NewMortgageService(
		service.NewCalculator(service.WithRates(cfg.Rates())),
		repository.NewMortgageRegistryMemory(),
		cache,
		log,
		m,
	)

	var limiter *httpLayer.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = httpLayer.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		defer limiter.Stop()
	}

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpLayer.NewRouter(httpLayer.RouterDeps{
			Service:     svc,
			Logger:      log,
			Metrics:     m,
			Gatherer:    reg,
			RateLimiter: limiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":      cfg.Addr(),
			"rates":     fmt.Sprintf("%+v", cfg.Rates()),
			"ratelimit": cfg.RateLimit.RPS,
			"mirror":    mirrorName(cfg),
		}).Info("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped with error")
		return err
	}
	log.Info("server exited")
	return nil
}

// newCache returns the Redis mirror when configured, the in-memory one
// otherwise.
func newCache(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (repository.CacheRepository, func(), error) {
	if cfg.Redis.Addr == "" {
		return repository.NewMemoryCache(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cache := repository.NewRedisCache(rdb,
		repository.WithKeyPrefix(cfg.Redis.Prefix),
		repository.WithTTL(cfg.Redis.TTL),
	)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		_ = cache.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}

	return cache, func() {
		if err := cache.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis client")
		}
	}, nil
}

func mirrorName(cfg config.Config) string {
	if cfg.Redis.Addr == "" {
		return "memory"
	}
	return "redis"
}
