package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/authui/internal"
	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/gotrue"
	"github.com/DukeRupert/authui/internal/handler"
	"github.com/DukeRupert/authui/internal/i18n"
	"github.com/DukeRupert/authui/internal/metrics"
	"github.com/DukeRupert/authui/internal/middleware"
	"github.com/DukeRupert/authui/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Load widget labels
	labels, err := i18n.NewStore(afero.NewOsFs(), cfg.I18nFile, logger)
	if err != nil {
		return fmt.Errorf("label initialization failed: %w", err)
	}
	if cfg.Env == "development" && cfg.I18nFile != "" {
		go func() {
			if err := labels.Watch(ctx); err != nil {
				logger.Warn("Label hot reload disabled", "error", err)
			}
		}()
	}

	// Initialize identity backend client
	client, err := gotrue.New(gotrue.Config{
		URL:     cfg.AuthURL,
		APIKey:  cfg.AuthAPIKey,
		Timeout: cfg.AuthTimeout,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("auth client initialization failed: %w", err)
	}
	logger.Info("Auth backend configured", "url", cfg.AuthURL)

	isSecure := cfg.IsProduction()
	sessionStore := session.NewStore([]byte(cfg.SessionSecret), isSecure)

	// Initialize middleware
	backendOrigin, err := origin(cfg.AuthURL)
	if err != nil {
		return fmt.Errorf("AUTH_URL: %w", err)
	}
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure, backendOrigin)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	sessionMw := middleware.NewSessionMiddleware(sessionStore, logger)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword, logger)

	submitLimiter := middleware.NewSubmitRateLimiter(logger)
	defer submitLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(
		func(s *domain.Session) handler.Backend { return client.Auth(s) },
		sessionStore,
		handler.AuthConfig{
			Options:        cfg.WidgetOptions(),
			Labels:         labels.Get,
			Appearance:     cfg.Appearance(),
			Stylesheet:     cfg.Stylesheet,
			AfterSignInURL: cfg.AfterSignInURL,
			IsSecure:       isSecure,
		},
		logger,
	)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	if cfg.MetricsUsername == "" && cfg.MetricsPassword == "" {
		logger.Warn("Metrics endpoint is not protected, set METRICS_USERNAME and METRICS_PASSWORD")
	}
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Auth widget routes
	authHandler.RegisterRoutes(mux, submitLimiter.Limit)

	stack := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
		sessionMw.WithSession,
	)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "base_url", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// origin returns the scheme and host of rawURL, as used in CSP sources.
func origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Scheme + "://" + u.Host, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
