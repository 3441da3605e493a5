package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
)

// HoldingsRepository provides data access methods for the holding and
// currency_pair configuration tables.
type HoldingsRepository struct {
	db *sql.DB
}

// NewHoldingsRepository creates a new HoldingsRepository with the provided database connection.
func NewHoldingsRepository(db *sql.DB) *HoldingsRepository {
	return &HoldingsRepository{db: db}
}

// GetHoldings returns all configured holdings ordered by instrument ID.
// The ordering is the iteration order used by the valuation, so it must be
// stable between calls.
func (r *HoldingsRepository) GetHoldings() ([]model.Holding, error) {
	rows, err := r.db.Query(`
		SELECT instrument_id, quantity
		FROM holding
		ORDER BY instrument_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.InstrumentID, &h.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// UpsertHolding inserts or updates the quantity for one instrument.
func (r *HoldingsRepository) UpsertHolding(holding model.Holding) error {
	_, err := r.db.Exec(`
		INSERT INTO holding (id, instrument_id, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT(instrument_id) DO UPDATE SET quantity = excluded.quantity
	`, uuid.New().String(), holding.InstrumentID, holding.Quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert holding %d: %w", holding.InstrumentID, err)
	}
	return nil
}

// DeleteHolding removes the holding for one instrument.
func (r *HoldingsRepository) DeleteHolding(instrumentID int64) error {
	result, err := r.db.Exec(`DELETE FROM holding WHERE instrument_id = ?`, instrumentID)
	if err != nil {
		return fmt.Errorf("failed to delete holding %d: %w", instrumentID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted holding: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrHoldingNotFound
	}
	return nil
}

// GetCurrencyPairs returns all configured currency-pair quote sources
// ordered by instrument ID.
func (r *HoldingsRepository) GetCurrencyPairs() ([]model.CurrencyPair, error) {
	rows, err := r.db.Query(`
		SELECT instrument_id, name
		FROM currency_pair
		ORDER BY instrument_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency_pair table: %w", err)
	}
	defer rows.Close()

	pairs := []model.CurrencyPair{}
	for rows.Next() {
		var p model.CurrencyPair
		if err := rows.Scan(&p.InstrumentID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan currency pair: %w", err)
		}
		pairs = append(pairs, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency_pair table: %w", err)
	}

	return pairs, nil
}

// UpsertCurrencyPair inserts or updates one currency-pair quote source.
// Name is the pair quoted by the instrument, e.g. "USD/SEK".
func (r *HoldingsRepository) UpsertCurrencyPair(pair model.CurrencyPair) error {
	_, err := r.db.Exec(`
		INSERT INTO currency_pair (id, instrument_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT(instrument_id) DO UPDATE SET name = excluded.name
	`, uuid.New().String(), pair.InstrumentID, pair.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert currency pair %d: %w", pair.InstrumentID, err)
	}
	return nil
}

// DeleteCurrencyPair removes one currency-pair quote source.
func (r *HoldingsRepository) DeleteCurrencyPair(instrumentID int64) error {
	result, err := r.db.Exec(`DELETE FROM currency_pair WHERE instrument_id = ?`, instrumentID)
	if err != nil {
		return fmt.Errorf("failed to delete currency pair %d: %w", instrumentID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted currency pair: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrCurrencyPairNotFound
	}
	return nil
}
