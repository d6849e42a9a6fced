// Package rest wires the HTTP surface of the backend: routing, middleware
// and handler construction.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"scandex-backend/application/commands/bus"
	querybus "scandex-backend/application/queries/bus"
	"scandex-backend/infrastructure/config"
	"scandex-backend/interfaces/http/rest/handlers"
	"scandex-backend/interfaces/http/rest/middleware"
	"scandex-backend/pkg/auth"
	pkgerrors "scandex-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	cfg          *config.Config
	validator    *auth.JWTValidator
	scanLimiter  auth.RateLimiter
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	validator *auth.JWTValidator,
	scanLimiter auth.RateLimiter,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		cfg:          cfg,
		validator:    validator,
		scanLimiter:  scanLimiter,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.scandex.app"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))

		playerHandler := handlers.NewPlayerHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
		r.Route("/players", func(r chi.Router) {
			r.Post("/register", playerHandler.Register)
			r.Get("/me", playerHandler.GetMe)
		})

		scanHandler := handlers.NewScanHandler(rt.commandBus, rt.queryBus, rt.scanLimiter, rt.errorHandler, rt.logger)
		r.Post("/scans", scanHandler.Scan)

		itemHandler := handlers.NewItemHandler(rt.queryBus, rt.errorHandler, rt.logger)
		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.ListItems)
			r.Get("/{itemID}", itemHandler.GetItem)
		})

		catalogHandler := handlers.NewCatalogHandler(rt.commandBus, rt.queryBus, rt.cfg.DefaultCatalogSize, rt.errorHandler, rt.logger)
		r.Get("/collectables", catalogHandler.ListCollectables)
		r.Get("/rarities", catalogHandler.ListRarities)

		tradeHandler := handlers.NewTradeHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
		r.Route("/trades", func(r chi.Router) {
			r.Post("/", tradeHandler.CreateTrade)
			r.Get("/", tradeHandler.ListTrades)
			r.Get("/{tradeID}", tradeHandler.GetTrade)
			r.Post("/{tradeID}/accept", tradeHandler.AcceptTrade)
			r.Post("/{tradeID}/reject", tradeHandler.RejectTrade)
			r.Post("/{tradeID}/cancel", tradeHandler.CancelTrade)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin"))
			r.Post("/catalog/generate", catalogHandler.GenerateCatalog)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
