// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpAdapter "github.com/leseb/jobsearch-gw/pkg/adapters/http"
	"github.com/leseb/jobsearch-gw/pkg/core/config"
	"github.com/leseb/jobsearch-gw/pkg/core/services"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/ratelimit"
	"github.com/leseb/jobsearch-gw/pkg/scheduler"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code, so deferred cleanup runs before exit.
func run() int {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	envPath := flag.String("env-file", ".env", "Path to a .env file loaded before the configuration")
	port := flag.Int("port", 0, "HTTP port to listen on (overrides config and PORT)")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Print version
	if *version {
		fmt.Printf("Job Search Gateway Server\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		return 0
	}

	// Bootstrap logger until the configuration says otherwise
	logger := logging.New(logging.Config{Level: "info", Format: "json"})

	if err := config.LoadDotEnv(*envPath); err != nil {
		logger.Error("Failed to load env file", "error", err)
		return 1
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "path", *configPath, "error", err)
		return 1
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger = logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger.Info("Starting Job Search Gateway Server",
		"version", Version,
		"build_time", BuildTime)
	if cfg.Source == "" {
		logger.Warn("Config file not found, using defaults and environment", "path", *configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics registry with the runtime collectors
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rt, err := services.NewRuntime(ctx, cfg, logger, reg)
	if err != nil {
		logger.Error("Failed to initialize search runtime", "error", err)
		return 1
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Failed to release resources", "error", err)
		}
	}()

	// Rate limiter
	var limiter ratelimit.Limiter
	switch {
	case cfg.RateLimit.Requests <= 0:
		logger.Info("Rate limiting disabled")
	case cfg.RateLimit.RedisURL != "":
		rl, err := ratelimit.NewRedis(cfg.RateLimit.RedisURL, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger.Component("ratelimit"))
		if err != nil {
			logger.Error("Failed to initialize Redis rate limiter", "error", err)
			return 1
		}
		defer rl.Close()
		limiter = rl
		logger.Info("Initialized Redis rate limiter", "requests", cfg.RateLimit.Requests, "window", cfg.RateLimit.Window)
	default:
		limiter = ratelimit.NewMemory(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		logger.Info("Initialized in-memory rate limiter", "requests", cfg.RateLimit.Requests, "window", cfg.RateLimit.Window)
	}

	// Canary
	if cfg.Canary.Enabled {
		canary := scheduler.NewCanary(rt.Search, cfg.Canary.Schedule, cfg.Canary.Keyword, logger)
		if err := canary.Start(ctx); err != nil {
			logger.Error("Failed to start canary", "error", err)
			return 1
		}
		defer func() { <-canary.Stop().Done() }()
	}

	// Initialize HTTP adapter
	handler := httpAdapter.New(rt.Search, logger, httpAdapter.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		Limiter:        limiter,
		TrustForwarded: cfg.RateLimit.TrustForwarded,
		Metrics:        rt.Metrics,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	code := 0
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
		code = 1
		stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		return 1
	}

	logger.Info("Server stopped gracefully")
	return code
}
