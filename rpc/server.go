package rpc

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"celebmint/core"
	"celebmint/rpc/middleware"
	"celebmint/services/indexer"
)

const moduleName = "celebmint-api"

// EventSource serves committed ledger events.
type EventSource interface {
	Query(ctx context.Context, filter indexer.Filter) ([]indexer.Event, error)
}

// Config captures the dependencies required to construct the server.
type Config struct {
	Ledger    *core.Ledger
	Events    EventSource
	Auth      middleware.AuthConfig
	RateLimit middleware.RateLimit
	Logger    *slog.Logger
}

// Server exposes the ledger over a JSON HTTP API.
type Server struct {
	ledger  *core.Ledger
	events  EventSource
	logger  *slog.Logger
	auth    *middleware.Authenticator
	limiter *middleware.RateLimiter

	router http.Handler
}

// New constructs the router with authentication, rate limiting and
// instrumentation.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		ledger:  cfg.Ledger,
		events:  cfg.Events,
		logger:  logger,
		auth:    middleware.NewAuthenticator(cfg.Auth, logger),
		limiter: middleware.NewRateLimiter(cfg.RateLimit, logger),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Handler exposes the configured HTTP router wrapped for tracing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, moduleName)
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observe(moduleName))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(api chi.Router) {
		api.Get("/capabilities/{code}", s.handleCapability)
		api.Get("/authorizations/{address}", s.handleGetAuthorization)
		api.Get("/requests", s.handleListRequests)
		api.Get("/requests/{id}", s.handleGetRequest)
		api.Get("/assets/{id}", s.handleGetAsset)
		api.Get("/assets/{id}/royalty", s.handleRoyaltyQuote)
		api.Get("/splitters/{address}", s.handleGetSplitter)
		api.Get("/accounts/{address}", s.handleGetAccount)
		api.Get("/events", s.handleListEvents)

		api.Group(func(protected chi.Router) {
			protected.Use(s.auth.Middleware)
			protected.Use(s.limiter.Middleware(moduleName))
			protected.Post("/ownership", s.handleTransferOwnership)
			protected.Post("/authorizations", s.handleSetAuthorization)
			protected.Post("/requests", s.handleSubmitRequest)
			protected.Post("/requests/{id}/mint", s.handleMint)
			protected.Post("/assets/{id}/transfer", s.handleTransferAsset)
			protected.Post("/payments", s.handleSend)
			protected.Post("/splitters/{address}/resettle", s.handleResettle)
			protected.Post("/accounts/{address}/credit", s.handleCredit)
			protected.Post("/accounts/{address}/freeze", s.handleFreeze)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
