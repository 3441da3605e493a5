package service

import (
	"fmt"

	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
)

// HoldingsService manages the configured holdings and currency-pair quote
// sources that drive every valuation pass.
type HoldingsService struct {
	holdingsRepo *repository.HoldingsRepository
}

// NewHoldingsService creates a new HoldingsService with the provided dependencies.
func NewHoldingsService(holdingsRepo *repository.HoldingsRepository) *HoldingsService {
	return &HoldingsService{holdingsRepo: holdingsRepo}
}

// GetHoldings returns the configured holdings in instrument-id order.
func (s *HoldingsService) GetHoldings() ([]model.Holding, error) {
	return s.holdingsRepo.GetHoldings()
}

// SetHolding adds or updates the quantity held of one instrument.
func (s *HoldingsService) SetHolding(instrumentID, quantity int64) error {
	if instrumentID <= 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidInstrumentID, instrumentID)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidQuantity, quantity)
	}
	return s.holdingsRepo.UpsertHolding(model.Holding{
		InstrumentID: instrumentID,
		Quantity:     quantity,
	})
}

// RemoveHolding deletes one holding by instrument id.
func (s *HoldingsService) RemoveHolding(instrumentID int64) error {
	return s.holdingsRepo.DeleteHolding(instrumentID)
}

// GetCurrencyPairs returns the configured rate quote sources.
func (s *HoldingsService) GetCurrencyPairs() ([]model.CurrencyPair, error) {
	return s.holdingsRepo.GetCurrencyPairs()
}

// SetCurrencyPair adds or updates one rate quote source. Name is the quoted
// pair, e.g. "USD/SEK".
func (s *HoldingsService) SetCurrencyPair(instrumentID int64, name string) error {
	if instrumentID <= 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidInstrumentID, instrumentID)
	}
	return s.holdingsRepo.UpsertCurrencyPair(model.CurrencyPair{
		InstrumentID: instrumentID,
		Name:         name,
	})
}

// RemoveCurrencyPair deletes one rate quote source by instrument id.
func (s *HoldingsService) RemoveCurrencyPair(instrumentID int64) error {
	return s.holdingsRepo.DeleteCurrencyPair(instrumentID)
}
