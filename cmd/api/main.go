package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	httpadp "loan-calculator/internal/adapter/http"
	cachemw "loan-calculator/internal/adapter/middleware"
	"loan-calculator/internal/config"
	"loan-calculator/internal/infrastructure/cache"
	"loan-calculator/internal/observability/metrics"
	"loan-calculator/internal/usecase/schedule"
	"loan-calculator/pkg/id"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	metrics.Init(nil)

	var rdb *redis.Client
	if cfg.CacheEnabled {
		rdb, err = cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			// the cache is an optimisation; serve without it
			log.Printf("response cache disabled: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	usecase := schedule.NewUsecase(schedule.Limits{
		MaxPrincipal:  cfg.Limits.MaxPrincipal,
		MaxTermMonths: cfg.Limits.MaxTermMonths,
		MaxAnnualRate: cfg.Limits.MaxAnnualRate,
	})
	h := httpadp.NewHandler()
	sh := httpadp.NewScheduleHandler(usecase)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: id.NewID32}),
		middleware.Logger(),
		middleware.Recover(),
	)
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))))
	}

	// routes
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	httpadp.RegisterRoutes(e, h, sh, cachemw.ResponseCache(rdb, time.Duration(cfg.CacheTTLSecs)*time.Second))

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Printf("server error: %v", err)
		return
	case <-quit:
		log.Println("shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("server exited")
}
