package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridianlane/loanvaluer/internal/config"
	"github.com/meridianlane/loanvaluer/internal/database"
	"github.com/meridianlane/loanvaluer/internal/modules/amortization"
	"github.com/meridianlane/loanvaluer/internal/modules/curves"
	"github.com/meridianlane/loanvaluer/internal/modules/portfolio"
	"github.com/meridianlane/loanvaluer/internal/modules/risk"
	"github.com/meridianlane/loanvaluer/internal/modules/schools"
	"github.com/meridianlane/loanvaluer/internal/modules/valuation"
	"github.com/meridianlane/loanvaluer/internal/scheduler"
	"github.com/meridianlane/loanvaluer/internal/server"
	"github.com/meridianlane/loanvaluer/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting loan valuer")

	// Initialize databases
	portfolioDB, err := database.New(cfg.PortfolioDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	referenceDB, err := database.New(cfg.ReferenceDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open reference database")
	}
	defer referenceDB.Close()

	// Ensure schemas
	if err := portfolio.InitSchema(portfolioDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize portfolio schema")
	}
	if err := curves.InitSchema(referenceDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize curve schema")
	}
	if err := schools.InitSchema(referenceDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize school schema")
	}

	// Reference data provider with an initial snapshot. A missing
	// snapshot is not fatal; valuation endpoints report 503 until a
	// reload succeeds.
	curveRepo := curves.NewRepository(referenceDB.Conn(), log)
	schoolRepo := schools.NewRepository(referenceDB.Conn(), log)
	provider := curves.NewProvider(curveRepo, schoolRepo, log)
	if err := provider.Reload(); err != nil {
		log.Warn().Err(err).Msg("Reference data not loaded yet")
	}

	// Core valuation pipeline
	builder := amortization.NewBuilder(log)
	classifier := risk.NewClassifier(log)
	valuationService := valuation.NewService(builder, classifier, provider, log)

	// Portfolio store and batch service
	portfolioRepo := portfolio.NewRepository(portfolioDB.Conn(), log)
	portfolioService := portfolio.NewService(portfolioRepo, valuationService, cfg.RiskFreeRate, log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Register background jobs
	if err := sched.AddJob(cfg.RevalueSchedule, scheduler.NewRevaluationJob(portfolioService, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register revaluation job")
	}
	if err := sched.AddJob(cfg.ReloadSchedule, scheduler.NewReferenceReloadJob(provider, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register reference reload job")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		PortfolioDB:      portfolioDB,
		ReferenceDB:      referenceDB,
		Config:           cfg,
		DevMode:          cfg.DevMode,
		ValuationHandler: valuation.NewHandler(valuationService, cfg.RiskFreeRate, log),
		PortfolioHandler: portfolio.NewHandler(portfolioService, portfolioRepo, log),
		ReferenceHandler: curves.NewHandler(provider, log),
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
