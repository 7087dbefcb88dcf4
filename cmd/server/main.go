package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"rvmanagement/internal/cache"
	"rvmanagement/internal/config"
	"rvmanagement/internal/httpapi"
	"rvmanagement/internal/logger"
	"rvmanagement/internal/metrics"
	"rvmanagement/internal/service"
	"rvmanagement/internal/store"
	"rvmanagement/internal/store/memory"
	"rvmanagement/internal/store/remote"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := validateConfig(cfg); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 1)

	if cfg.BackendURL != "" {
		rs, err := remote.New(cfg.BackendURL, cfg.BackendToken, time.Duration(cfg.BackendTimeoutSeconds)*time.Second)
		if err != nil {
			log.Error("backend client", "error", err)
			os.Exit(1)
		}
		repo = rs
		log.Info("repository: remote backend", "url", cfg.BackendURL)
	} else {
		repo = memory.NewSeeded()
		log.Info("repository: in-memory")
	}

	productCache := cache.ProductCache(cache.NoopProductCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisProductCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, using noop cache", "error", err)
			_ = redisCache.Close()
		} else {
			productCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Info("cache: redis", "addr", cfg.RedisAddr)
		}
	} else {
		log.Info("cache: noop")
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	svc := service.New(repo, productCache, m, log, cfg.DefaultMargin, time.Duration(cfg.ProductCacheTTLSeconds)*time.Second)
	api := httpapi.New(svc, m, log, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("management API listening", "addr", cfg.Address())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", "error", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn("close error", "error", err)
		}
	}

	log.Info("server stopped")
}

func validateConfig(cfg config.Config) error {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", cfg.Port)
	}
	if math.IsNaN(cfg.DefaultMargin) || cfg.DefaultMargin < 0 || cfg.DefaultMargin > 10 {
		return fmt.Errorf("DEFAULT_MARGIN must be between 0 and 10, got %v", cfg.DefaultMargin)
	}
	if cfg.BackendURL != "" {
		u, err := url.Parse(cfg.BackendURL)
		if err != nil {
			return fmt.Errorf("BACKEND_URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("BACKEND_URL must use http or https, got %q", cfg.BackendURL)
		}
		if u.Scheme == "http" && cfg.Env == "production" && cfg.BackendToken != "" {
			return errors.New("BACKEND_URL must use https when a BACKEND_TOKEN is sent in production")
		}
	}
	return nil
}
