package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helousound/site/internal/db"
	"github.com/helousound/site/internal/logger"
	"github.com/helousound/site/internal/metrics"
	"github.com/helousound/site/internal/pricing"
	"github.com/helousound/site/internal/quote"
	"github.com/helousound/site/internal/ratelimit"
)

const maxBodyBytes = 64 << 10

type pingFunc func(ctx context.Context) error

func pingCheck(p db.Pinger) pingFunc {
	return p.PingContext
}

type server struct {
	engine      *pricing.Engine
	gateway     *quote.Gateway
	logg        *logger.Logger
	metrics     *metrics.QuoteMetrics
	registry    *prometheus.Registry
	frontendURL string
	limitStore  ratelimit.Store
	limitPolicy ratelimit.Policy
	// readiness checks keyed by dependency name
	pingers map[string]pingFunc
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID(s.logg))
	r.Use(requestLogging(s.logg))
	r.Use(recoverer(s.logg))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReady)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Post("/estimate", s.handleEstimate)
		r.With(ratelimit.Middleware(s.limitPolicy, s.limitStore, s.logg, s.metrics)).
			Post("/request-quote", s.handleRequestQuote)
	})

	return r
}

func (s *server) ready(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, ping := range s.pingers {
		if err := ping(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	return failures
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}
