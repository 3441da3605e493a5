package testutil

import (
	"database/sql"
	"testing"

	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
	"github.com/avanzatt/portfolio-tracker-backend/internal/service"
)

// NewTestSystemService wires a SystemService over the test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// NewTestHoldingsService wires a HoldingsService over the test database.
func NewTestHoldingsService(t *testing.T, db *sql.DB) *service.HoldingsService {
	t.Helper()

	holdingsRepo := repository.NewHoldingsRepository(db)
	return service.NewHoldingsService(holdingsRepo)
}

// NewTestRatesService wires a RatesService over the test database and mock
// market client.
func NewTestRatesService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.RatesService {
	t.Helper()

	holdingsRepo := repository.NewHoldingsRepository(db)
	return service.NewRatesService(holdingsRepo, market, "SEK")
}

// NewTestValuationService wires a ValuationService over the test database
// and mock market client, with SEK as the base currency.
func NewTestValuationService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.ValuationService {
	t.Helper()

	holdingsRepo := repository.NewHoldingsRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	rates := service.NewRatesService(holdingsRepo, market, "SEK")

	return service.NewValuationService(
		holdingsRepo,
		snapshotRepo,
		balanceRepo,
		rates,
		market,
		"SEK",
	)
}

// NewTestHistoryService wires a HistoryService (and the valuation it
// refreshes) over the test database and mock market client.
func NewTestHistoryService(t *testing.T, db *sql.DB, market *MockMarketClient) *service.HistoryService {
	t.Helper()

	holdingsRepo := repository.NewHoldingsRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	rates := service.NewRatesService(holdingsRepo, market, "SEK")
	valuation := service.NewValuationService(
		holdingsRepo,
		snapshotRepo,
		balanceRepo,
		rates,
		market,
		"SEK",
	)

	return service.NewHistoryService(
		snapshotRepo,
		balanceRepo,
		rates,
		valuation,
		market,
		"SEK",
	)
}

// NewTestSettingsService wires a SettingsService over the test database with
// the default threshold and interval used throughout the tests.
func NewTestSettingsService(t *testing.T, db *sql.DB) *service.SettingsService {
	t.Helper()

	settingsRepo := repository.NewSettingsRepository(db)
	return service.NewSettingsService(settingsRepo, -2.0, 0)
}
