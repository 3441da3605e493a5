package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avanzatt/portfolio-tracker-backend/internal/api/handlers"
	custommiddleware "github.com/avanzatt/portfolio-tracker-backend/internal/api/middleware"
	"github.com/avanzatt/portfolio-tracker-backend/internal/avanza"
	"github.com/avanzatt/portfolio-tracker-backend/internal/config"
	"github.com/avanzatt/portfolio-tracker-backend/internal/service"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	System    *service.SystemService
	Holdings  *service.HoldingsService
	Valuation *service.ValuationService
	History   *service.HistoryService
	Settings  *service.SettingsService
	Scheduler *service.Scheduler
	Market    avanza.Client
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		holdingsHandler := handlers.NewHoldingsHandler(services.Holdings)
		r.Route("/holdings", func(r chi.Router) {
			r.Get("/", holdingsHandler.Holdings)
			r.Put("/{id}", holdingsHandler.SetHolding)
			r.Delete("/{id}", holdingsHandler.DeleteHolding)
		})
		r.Route("/currency-pairs", func(r chi.Router) {
			r.Get("/", holdingsHandler.CurrencyPairs)
			r.Put("/{id}", holdingsHandler.SetCurrencyPair)
			r.Delete("/{id}", holdingsHandler.DeleteCurrencyPair)
		})

		valuationHandler := handlers.NewValuationHandler(services.Valuation, services.Settings, services.Market)
		r.Route("/valuation", func(r chi.Router) {
			r.Get("/", valuationHandler.Valuation)
			r.Post("/refresh", valuationHandler.Refresh)
		})
		r.Get("/instruments/{id}", valuationHandler.Instrument)
		r.Get("/calendar/dividends", valuationHandler.Dividends)

		balanceHandler := handlers.NewBalanceHandler(services.History, services.Settings, cfg.Portfolio.BaseCurrency)
		r.Route("/balance", func(r chi.Router) {
			r.Get("/history", balanceHandler.History)
			r.Post("/reconstruct", balanceHandler.Reconstruct)
			r.Get("/chart", balanceHandler.Chart)
		})

		settingsHandler := handlers.NewSettingsHandler(services.Settings, services.Scheduler)
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Settings)
			r.Put("/", settingsHandler.UpdateSettings)
		})
	})

	return r
}
