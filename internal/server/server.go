package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/meridianlane/loanvaluer/internal/config"
	"github.com/meridianlane/loanvaluer/internal/database"
	"github.com/meridianlane/loanvaluer/internal/modules/curves"
	"github.com/meridianlane/loanvaluer/internal/modules/portfolio"
	"github.com/meridianlane/loanvaluer/internal/modules/valuation"
)

// Config holds server configuration
type Config struct {
	Port             int
	Log              zerolog.Logger
	PortfolioDB      *database.DB
	ReferenceDB      *database.DB
	Config           *config.Config
	DevMode          bool
	ValuationHandler *valuation.Handler
	PortfolioHandler *portfolio.Handler
	ReferenceHandler *curves.Handler
}

// Server represents the HTTP server
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	portfolioDB *database.DB
	referenceDB *database.DB
	cfg         *config.Config
	valuationH  *valuation.Handler
	portfolioH  *portfolio.Handler
	referenceH  *curves.Handler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		portfolioDB: cfg.PortfolioDB,
		referenceDB: cfg.ReferenceDB,
		cfg:         cfg.Config,
		valuationH:  cfg.ValuationHandler,
		portfolioH:  cfg.PortfolioHandler,
		referenceH:  cfg.ReferenceHandler,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// System
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		// Ad-hoc valuation of a loan supplied in the request body
		r.Route("/valuation", func(r chi.Router) {
			r.Post("/value", s.valuationH.HandleValue)
		})

		// Portfolio store and stored valuations
		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/loans", s.portfolioH.HandleListLoans)
			r.Get("/loans/{id}", s.portfolioH.HandleGetLoan)
			r.Post("/loans/{id}/value", s.portfolioH.HandleValueLoan)
			r.Get("/loans/{id}/valuations", s.portfolioH.HandleValuationHistory)
			r.Put("/loans/{id}/override", s.portfolioH.HandleSetOverride)
			r.Delete("/loans/{id}/override", s.portfolioH.HandleClearOverride)
			r.Post("/revalue", s.portfolioH.HandleRevalueAll)
			r.Get("/valuations", s.portfolioH.HandleLatestValuations)
		})

		// Reference data (risk curves, adjustments, school tiers)
		r.Route("/reference", func(r chi.Router) {
			r.Get("/curves", s.referenceH.HandleGetCurves)
			r.Post("/reload", s.referenceH.HandleReload)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
