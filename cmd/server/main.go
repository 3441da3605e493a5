package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/api"
	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/avanza"
	"github.com/avanzatt/portfolio-tracker-backend/internal/config"
	"github.com/avanzatt/portfolio-tracker-backend/internal/database"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
	"github.com/avanzatt/portfolio-tracker-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create market-data client
	market, err := avanza.NewMarketClient(cfg.Avanza.ProxyURL)
	if err != nil {
		log.Fatalf("Failed to create market client: %v", err)
	}

	// Create repositories
	holdingsRepo := repository.NewHoldingsRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	holdingsService := service.NewHoldingsService(holdingsRepo)
	ratesService := service.NewRatesService(holdingsRepo, market, cfg.Portfolio.BaseCurrency)
	valuationService := service.NewValuationService(
		holdingsRepo,
		snapshotRepo,
		balanceRepo,
		ratesService,
		market,
		cfg.Portfolio.BaseCurrency,
	)
	historyService := service.NewHistoryService(
		snapshotRepo,
		balanceRepo,
		ratesService,
		valuationService,
		market,
		cfg.Portfolio.BaseCurrency,
	)
	settingsService := service.NewSettingsService(
		settingsRepo,
		cfg.Portfolio.WarningThreshold,
		cfg.Portfolio.RefreshIntervalMinutes,
	)

	// An empty holdings table on a database that has snapshot history means
	// the configuration tables are new; seed them from the last recorded run.
	if err := seedFromLastSnapshot(holdingsRepo, snapshotRepo); err != nil {
		log.Fatalf("Failed to seed holdings from snapshot history: %v", err)
	}

	scheduler := service.NewScheduler(valuationService, settingsService)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Holdings:  holdingsService,
		Valuation: valuationService,
		History:   historyService,
		Settings:  settingsService,
		Scheduler: scheduler,
		Market:    market,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// seedFromLastSnapshot populates an empty holdings table from the most
// recent snapshot day, so an upgraded or restored database keeps valuing the
// portfolio it last knew about.
func seedFromLastSnapshot(holdingsRepo *repository.HoldingsRepository, snapshotRepo *repository.SnapshotRepository) error {
	holdings, err := holdingsRepo.GetHoldings()
	if err != nil {
		return err
	}
	if len(holdings) > 0 {
		return nil
	}

	rows, err := snapshotRepo.LatestSnapshotBefore(0)
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return nil // fresh database, nothing to seed
	}
	if err != nil {
		return err
	}

	for _, row := range rows {
		err := holdingsRepo.UpsertHolding(model.Holding{
			InstrumentID: row.InstrumentID,
			Quantity:     row.Quantity,
		})
		if err != nil {
			return err
		}
	}

	log.Printf("Seeded %d holdings from snapshot history", len(rows))
	return nil
}
