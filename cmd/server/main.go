/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the commission engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (environment, optional .env)
  2. Build the logger and metrics registry
  3. Build the rule book (configured default, optional rules file)
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -rules   Rule book JSON file (overrides COMMISSION_RULES_FILE)

ENVIRONMENT:
  APP_ENV, PORT, LOG_LEVEL, LOG_FORMAT, CORS_ALLOWED_ORIGINS,
  COMMISSION_RATE, COMMISSION_MINIMUM, COMMISSION_CURRENCY, COMMISSION_LOCALE,
  COMMISSION_RULES_FILE, COMMISSION_RULES_RELOAD, METRICS_NAMESPACE,
  SHUTDOWN_TIMEOUT. See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the rule reloader
  2. Stop accepting new connections
  3. Wait for active requests to complete (SHUTDOWN_TIMEOUT)
  4. Exit

EXAMPLES:
  # Defaults: 15%, minimum 50, GBP, en-GB
  ./server

  # Partner overrides from a file, checked every 30 seconds
  COMMISSION_RULES_RELOAD=30s ./server -rules=./rules.json

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Configuration keys
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/warp/commission-engine/api"
	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/factory"
	"github.com/warp/commission-engine/obs"
)

func main() {
	// Flags
	port := flag.String("port", "", "HTTP server port (overrides PORT)")
	rulesFile := flag.String("rules", "", "rule book JSON file (overrides COMMISSION_RULES_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *rulesFile != "" {
		cfg.RulesFile = *rulesFile
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, registry)
	engineMetrics := obs.NewEngineMetrics(cfg.MetricsNamespace, registry)

	// Rules
	defaultRule, err := cfg.DefaultRule()
	if err != nil {
		logger.Fatal().Err(err).Msg("default rule")
	}
	book := commission.NewRuleBook(defaultRule)
	ruleFactory := factory.NewRuleFactory().WithFallback(defaultRule)

	var reloader *api.RuleReloader
	if cfg.RulesFile != "" {
		reloader = api.NewRuleReloader(cfg.RulesFile, book, ruleFactory)
		reloader.Interval = cfg.RulesReload
		reloader.Logger = logger
		if _, err := reloader.Reload(); err != nil {
			logger.Fatal().Err(err).Str("path", cfg.RulesFile).Msg("load rule book")
		}
		reloader.Start()
	}

	// Initialize handler
	handler := api.NewHandler(book)
	handler.Factory = ruleFactory
	handler.Currency = cfg.CommissionCurrency
	handler.Locale = cfg.CommissionLocale
	handler.Metrics = engineMetrics
	handler.Logger = logger

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		HTTPMetrics:    httpMetrics,
		Gatherer:       registry,
	})

	// Create server
	server := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("default_rule", book.Default().String()).
			Int("overrides", len(book.Partners())).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	if reloader != nil {
		reloader.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
