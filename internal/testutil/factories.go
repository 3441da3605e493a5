package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
)

// InstrumentBuilder provides a fluent interface for creating test instrument
// records.
//
// Example usage:
//
//	inst := testutil.NewInstrument(5361).
//	    WithName("Investor B").
//	    WithPrice(200, 1.5).
//	    Build()
type InstrumentBuilder struct {
	inst model.Instrument
}

// NewInstrument creates an InstrumentBuilder with sensible defaults.
func NewInstrument(id int64) *InstrumentBuilder {
	return &InstrumentBuilder{
		inst: model.Instrument{
			ID:            id,
			Name:          "Test Instrument",
			Currency:      "SEK",
			Country:       "SE",
			LastPrice:     100,
			ChangePercent: 0,
			LastUpdated:   time.Date(2026, 8, 28, 17, 29, 0, 0, time.UTC),
		},
	}
}

// WithName sets the instrument name.
func (b *InstrumentBuilder) WithName(name string) *InstrumentBuilder {
	b.inst.Name = name
	return b
}

// WithCurrency sets the quote currency.
func (b *InstrumentBuilder) WithCurrency(currency string) *InstrumentBuilder {
	b.inst.Currency = currency
	return b
}

// WithPrice sets the last price and change percent.
func (b *InstrumentBuilder) WithPrice(price, changePercent float64) *InstrumentBuilder {
	b.inst.LastPrice = price
	b.inst.ChangePercent = changePercent
	return b
}

// WithHistory sets the daily price history.
func (b *InstrumentBuilder) WithHistory(history []model.PricePoint) *InstrumentBuilder {
	b.inst.PriceHistory = history
	return b
}

// WithDividend appends one dividend entry.
func (b *InstrumentBuilder) WithDividend(exDate time.Time, amount float64) *InstrumentBuilder {
	b.inst.Dividends = append(b.inst.Dividends, model.Dividend{
		ExDate:         exDate,
		AmountPerShare: amount,
	})
	return b
}

// Build returns the instrument record.
func (b *InstrumentBuilder) Build() model.Instrument {
	return b.inst
}

// InsertHolding stores a holding row, failing the test on error.
func InsertHolding(t *testing.T, db *sql.DB, instrumentID, quantity int64) {
	t.Helper()

	repo := repository.NewHoldingsRepository(db)
	err := repo.UpsertHolding(model.Holding{InstrumentID: instrumentID, Quantity: quantity})
	if err != nil {
		t.Fatalf("Failed to insert holding: %v", err)
	}
}

// InsertCurrencyPair stores a currency-pair row, failing the test on error.
func InsertCurrencyPair(t *testing.T, db *sql.DB, instrumentID int64, name string) {
	t.Helper()

	repo := repository.NewHoldingsRepository(db)
	err := repo.UpsertCurrencyPair(model.CurrencyPair{InstrumentID: instrumentID, Name: name})
	if err != nil {
		t.Fatalf("Failed to insert currency pair: %v", err)
	}
}

// InsertSnapshot stores one day's snapshot rows, failing the test on error.
func InsertSnapshot(t *testing.T, db *sql.DB, date time.Time, rows ...model.SnapshotRow) {
	t.Helper()

	for i := range rows {
		rows[i].Date = date
	}
	repo := repository.NewSnapshotRepository(db)
	if err := repo.RecordSnapshot(date, rows); err != nil {
		t.Fatalf("Failed to insert snapshot: %v", err)
	}
}

// Snap is shorthand for one snapshot row; the date is filled in by
// InsertSnapshot.
func Snap(instrumentID, quantity int64, currency string) model.SnapshotRow {
	return model.SnapshotRow{
		InstrumentID: instrumentID,
		Quantity:     quantity,
		Currency:     currency,
	}
}
