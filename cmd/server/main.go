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

	"github.com/helousound/site/internal/catalog"
	"github.com/helousound/site/internal/config"
	"github.com/helousound/site/internal/db"
	"github.com/helousound/site/internal/logger"
	"github.com/helousound/site/internal/metrics"
	"github.com/helousound/site/internal/migrations"
	"github.com/helousound/site/internal/pricing"
	"github.com/helousound/site/internal/quote"
	"github.com/helousound/site/internal/ratelimit"
	"github.com/helousound/site/internal/seed"
	"github.com/helousound/site/internal/transport"
)

const serviceName = "helousound-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server.exit", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	for _, warning := range cfg.Warnings() {
		logg.Warn(ctx, warning)
	}

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}
	stats, err := seed.RunCanonical(ctx, database)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"inserts": stats.Inserts, "updates": stats.Updates}), "catalog.seeded")

	cat, err := catalog.Load(ctx, database)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	engine := pricing.NewEngine(cat, pricing.Options{
		SeedIncluded: cfg.Pricing.SeedIncluded,
		StrictAddons: cfg.Pricing.StrictAddons,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	quoteMetrics := metrics.NewQuoteMetrics(registry)

	tr, err := newTransport(cfg)
	if err != nil {
		return fmt.Errorf("configure quote transport: %w", err)
	}
	logg.Info(logg.WithField(ctx, "transport", tr.Name()), "quote.transport_selected")

	srv := &server{
		engine:      engine,
		gateway:     quote.NewGateway(tr, logg, quoteMetrics),
		logg:        logg,
		metrics:     quoteMetrics,
		registry:    registry,
		frontendURL: cfg.App.FrontendURL,
		limitPolicy: ratelimit.Policy{
			Name:       "quote",
			Window:     cfg.RateLimit.Window,
			Limit:      cfg.RateLimit.Max,
			TrustProxy: cfg.RateLimit.TrustProxy,
		},
		pingers: map[string]pingFunc{"sqlite": pingCheck(database)},
	}

	if cfg.Redis.URL != "" {
		store, err := ratelimit.NewRedisStore(ctx, cfg.Redis.URL)
		if err != nil {
			logg.Error(ctx, "redis.unavailable", err)
		} else {
			defer store.Close()
			srv.limitStore = store
			srv.pingers["redis"] = store.Ping
		}
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", httpServer.Addr), "server.listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(ctx, "server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type namedTransport interface {
	quote.Transport
	Name() string
}

// newTransport picks the first configured delivery channel.
func newTransport(cfg *config.Config) (namedTransport, error) {
	switch {
	case cfg.Mail.ResendAPIKey != "":
		return transport.NewResend(transport.ResendOptions{
			APIKey:  cfg.Mail.ResendAPIKey,
			From:    cfg.Mail.From,
			To:      cfg.Mail.To,
			Timeout: cfg.Mail.Timeout,
		})
	case cfg.Relay.URL != "":
		return transport.NewRelay(transport.RelayOptions{
			BaseURL: cfg.Relay.URL,
			Timeout: cfg.Mail.Timeout,
		})
	case cfg.Form.Endpoint != "":
		return transport.NewForm(transport.FormOptions{
			Endpoint: cfg.Form.Endpoint,
			FormName: cfg.Form.Name,
			Timeout:  cfg.Mail.Timeout,
		})
	}
	return transport.Disabled{}, nil
}
