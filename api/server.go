/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in logs
  2. Logger:     Structured request logging (zerolog)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus request counters and latency
  5. CORS:       Cross-origin requests for the dashboards

ROUTE GROUPS:
  /api/rules/*          Rule book
  /api/commissions/*    Calculation, reports, tier tables
  /api/currency/*       Formatting
  /api/scenarios/*      Demo data sets
  /healthz              Liveness
  /metrics              Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware. All endpoints are read-only computations
  over the request body or built-in demo data.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/commission-engine/obs"
)

// RouterOptions configures the cross-cutting parts of the router.
type RouterOptions struct {
	AllowedOrigins []string
	HTTPMetrics    *obs.HTTPMetrics
	Gatherer       prometheus.Gatherer // nil: no /metrics route
}

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(obs.RequestLogger{Logger: h.Logger}.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(obs.HTTPObs{Metrics: opts.HTTPMetrics}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Get("/default", h.GetDefaultRule)
			r.Get("/partners/{id}", h.GetPartnerRule)
		})

		r.Route("/commissions", func(r chi.Router) {
			r.Post("/calculate", h.Calculate)
			r.Post("/report", h.Report)
			r.Get("/tiers", h.Tiers)
		})

		r.Route("/currency", func(r chi.Router) {
			r.Post("/format", h.FormatCurrency)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/{id}/report", h.GetScenarioReport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found", map[string]string{"path": r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	return r
}
