package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
	"github.com/avanzatt/portfolio-tracker-backend/internal/testutil"
)

// TestValuationService_Refresh tests the live valuation pass.
//
// WHY: The valuation is the core read path of the application. This ensures
// conversion into the base currency, the formatted balance string, and the
// snapshot/balance side effects all behave over realistic portfolios.
func TestValuationService_Refresh(t *testing.T) {
	t.Run("values a single base-currency holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(200, 0.5).Build())
		svc := testutil.NewTestValuationService(t, db, market)

		testutil.InsertHolding(t, db, 5361, 10)

		result, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		if result.Balance.Total != "2000 SEK" {
			t.Errorf("Expected balance '2000 SEK', got %q", result.Balance.Total)
		}
		if result.Balance.IsPartial {
			t.Error("Expected a complete balance, got partial")
		}
		if len(result.Rows) != 1 {
			t.Fatalf("Expected 1 row, got %d", len(result.Rows))
		}
		if result.Rows[0].Total != 2000 {
			t.Errorf("Expected row total 2000, got %v", result.Rows[0].Total)
		}
		if !result.Rows[0].Converted {
			t.Error("Base-currency holding should count as converted")
		}
	})

	t.Run("converts foreign holdings through the rate table", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(3323).WithName("Apple").WithCurrency("USD").WithPrice(10, 0).Build()).
			WithInstrument(testutil.NewInstrument(19000).WithName("USD/SEK").WithPrice(10.5, 0).Build())
		svc := testutil.NewTestValuationService(t, db, market)

		testutil.InsertHolding(t, db, 3323, 10)
		testutil.InsertCurrencyPair(t, db, 19000, "USD/SEK")

		result, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		if result.Balance.Total != "1050 SEK" {
			t.Errorf("Expected balance '1050 SEK', got %q", result.Balance.Total)
		}
		if result.Balance.IsPartial {
			t.Error("Expected a complete balance, got partial")
		}
		if len(result.MissingRates) != 0 {
			t.Errorf("Expected no missing rates, got %v", result.MissingRates)
		}
		if result.Rows[0].Currency != "SEK" {
			t.Errorf("Expected converted row in SEK, got %s", result.Rows[0].Currency)
		}
	})

	t.Run("folds converted holdings into the base bucket", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(100, 0).Build()).
			WithInstrument(testutil.NewInstrument(3323).WithName("Apple").WithCurrency("USD").WithPrice(20, 0).Build()).
			WithInstrument(testutil.NewInstrument(19000).WithName("USD/SEK").WithPrice(10, 0).Build())
		svc := testutil.NewTestValuationService(t, db, market)

		testutil.InsertHolding(t, db, 5361, 10)
		testutil.InsertHolding(t, db, 3323, 5)
		testutil.InsertCurrencyPair(t, db, 19000, "USD/SEK")

		result, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		// 10*100 SEK directly, 5*20 USD at 10 = 1000 SEK more.
		if result.Balance.Total != "2000 SEK" {
			t.Errorf("Expected balance '2000 SEK', got %q", result.Balance.Total)
		}
	})

	t.Run("keeps unconvertible holdings in their own bucket", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(100, 0).Build()).
			WithInstrument(testutil.NewInstrument(3323).WithName("Apple").WithCurrency("USD").WithPrice(10, 0).Build())
		svc := testutil.NewTestValuationService(t, db, market)

		testutil.InsertHolding(t, db, 5361, 10)
		testutil.InsertHolding(t, db, 3323, 10)

		result, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		if result.Balance.Total != "1000 SEK + 100 USD" {
			t.Errorf("Expected balance '1000 SEK + 100 USD', got %q", result.Balance.Total)
		}
		if !result.Balance.IsPartial {
			t.Error("Mixed-currency balance should be partial")
		}
		if len(result.MissingRates) != 1 {
			t.Fatalf("Expected 1 missing-rate advisory, got %d", len(result.MissingRates))
		}
		if !strings.Contains(result.MissingRates[0], "USD/SEK") {
			t.Errorf("Advisory should name the missing pair, got %q", result.MissingRates[0])
		}
	})

	t.Run("deduplicates missing-rate advisories per pair", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(3323).WithName("Apple").WithCurrency("USD").WithPrice(10, 0).Build()).
			WithInstrument(testutil.NewInstrument(3324).WithName("Microsoft").WithCurrency("USD").WithPrice(20, 0).Build())
		svc := testutil.NewTestValuationService(t, db, market)

		testutil.InsertHolding(t, db, 3323, 10)
		testutil.InsertHolding(t, db, 3324, 10)

		result, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		if len(result.MissingRates) != 1 {
			t.Errorf("Expected 1 advisory for 2 USD holdings, got %d", len(result.MissingRates))
		}
		if result.Balance.Total != "300 USD" {
			t.Errorf("Expected balance '300 USD', got %q", result.Balance.Total)
		}
	})

	t.Run("flags holdings below the warning threshold", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(100, -3.1).Build()).
			WithInstrument(testutil.NewInstrument(5362).WithName("Volvo B").WithPrice(100, -1.9).Build())
		svc := testutil.NewTestValuationService(t, db, market)

		testutil.InsertHolding(t, db, 5361, 1)
		testutil.InsertHolding(t, db, 5362, 1)

		result, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		if len(result.Warnings) != 1 {
			t.Fatalf("Expected 1 warning, got %d", len(result.Warnings))
		}
		if result.Warnings[0].Name != "Investor B" {
			t.Errorf("Expected warning for 'Investor B', got %q", result.Warnings[0].Name)
		}
	})

	t.Run("omits holdings whose fetch failed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(100, 0).Build()).
			WithError(5362, errors.New("connection reset"))
		svc := testutil.NewTestValuationService(t, db, market)

		testutil.InsertHolding(t, db, 5361, 10)
		testutil.InsertHolding(t, db, 5362, 10)

		result, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("Refresh should not fail on a single fetch error: %v", err)
		}

		if len(result.Rows) != 1 {
			t.Fatalf("Expected 1 row, got %d", len(result.Rows))
		}
		if result.Balance.Total != "1000 SEK" {
			t.Errorf("Expected balance '1000 SEK', got %q", result.Balance.Total)
		}
	})

	t.Run("produces an identical balance over fixed inputs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(100, 0).Build()).
			WithInstrument(testutil.NewInstrument(3323).WithName("Apple").WithCurrency("USD").WithPrice(10, 0).Build()).
			WithInstrument(testutil.NewInstrument(4401).WithName("Nestle").WithCurrency("CHF").WithPrice(5, 0).Build())
		svc := testutil.NewTestValuationService(t, db, market)

		testutil.InsertHolding(t, db, 5361, 10)
		testutil.InsertHolding(t, db, 3323, 10)
		testutil.InsertHolding(t, db, 4401, 10)

		first, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("First refresh failed: %v", err)
		}
		second, err := svc.Refresh(-2.0)
		if err != nil {
			t.Fatalf("Second refresh failed: %v", err)
		}

		if first.Balance.Total != second.Balance.Total {
			t.Errorf("Balance changed between identical passes: %q then %q",
				first.Balance.Total, second.Balance.Total)
		}
	})

	t.Run("records the snapshot and balance for today", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(200, 0).Build())
		svc := testutil.NewTestValuationService(t, db, market)
		svc.SetNow(func() time.Time { return testutil.Date(2026, time.August, 28) })

		testutil.InsertHolding(t, db, 5361, 10)

		if _, err := svc.Refresh(-2.0); err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}

		snapshotRepo := repository.NewSnapshotRepository(db)
		rows, err := snapshotRepo.GetSnapshots()
		if err != nil {
			t.Fatalf("Failed to read snapshots: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected 1 snapshot row, got %d", len(rows))
		}
		if !rows[0].Date.Equal(testutil.Date(2026, time.August, 28)) {
			t.Errorf("Snapshot dated %v, expected 2026-08-28", rows[0].Date)
		}
		if rows[0].Currency != "SEK" {
			t.Errorf("Snapshot currency %q, expected SEK", rows[0].Currency)
		}

		balanceRepo := repository.NewBalanceRepository(db)
		series, err := balanceRepo.GetBalanceSeries()
		if err != nil {
			t.Fatalf("Failed to read balance series: %v", err)
		}
		if len(series) != 1 {
			t.Fatalf("Expected 1 balance row, got %d", len(series))
		}
		if series[0].Total != "2000 SEK" {
			t.Errorf("Stored balance %q, expected '2000 SEK'", series[0].Total)
		}
	})

	t.Run("rerunning on the same day overwrites that day's rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		market := testutil.NewMockMarketClient().
			WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(200, 0).Build())
		svc := testutil.NewTestValuationService(t, db, market)
		svc.SetNow(func() time.Time { return testutil.Date(2026, time.August, 28) })

		testutil.InsertHolding(t, db, 5361, 10)
		if _, err := svc.Refresh(-2.0); err != nil {
			t.Fatalf("First refresh failed: %v", err)
		}

		// Price moves intraday; the second pass replaces the same date.
		market.WithInstrument(testutil.NewInstrument(5361).WithName("Investor B").WithPrice(210, 0).Build())
		if _, err := svc.Refresh(-2.0); err != nil {
			t.Fatalf("Second refresh failed: %v", err)
		}

		balanceRepo := repository.NewBalanceRepository(db)
		series, err := balanceRepo.GetBalanceSeries()
		if err != nil {
			t.Fatalf("Failed to read balance series: %v", err)
		}
		if len(series) != 1 {
			t.Fatalf("Expected 1 balance row after rerun, got %d", len(series))
		}
		if series[0].Total != "2100 SEK" {
			t.Errorf("Stored balance %q, expected '2100 SEK'", series[0].Total)
		}
	})
}
