package service

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/avanzatt/portfolio-tracker-backend/internal/avanza"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
)

// maxConcurrentFetches bounds how many market-data requests are in flight at
// once during a valuation or history rebuild.
const maxConcurrentFetches = 8

// RatesService builds the currency rate table from the configured
// currency-pair quote sources.
type RatesService struct {
	holdingsRepo *repository.HoldingsRepository
	market       avanza.Client
	baseCurrency string
}

// NewRatesService creates a new RatesService with the provided dependencies.
func NewRatesService(holdingsRepo *repository.HoldingsRepository, market avanza.Client, baseCurrency string) *RatesService {
	return &RatesService{
		holdingsRepo: holdingsRepo,
		market:       market,
		baseCurrency: baseCurrency,
	}
}

// BuildRateTable fetches every configured currency-pair instrument and maps
// its quoted name to its last price. The table is rebuilt in full on every
// call, never patched incrementally.
//
// A pair that fails to fetch is omitted; the valuation detects the gap as a
// missing-rate condition on lookup, so the failure is not raised here. The
// identity pair of the base currency is never stored.
func (s *RatesService) BuildRateTable() (model.RateTable, error) {
	pairs, err := s.holdingsRepo.GetCurrencyPairs()
	if err != nil {
		return nil, err
	}

	// One result slot per pair; the goroutines never touch shared state.
	slots := make([]*model.Instrument, len(pairs))

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentFetches)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			record, err := s.market.GetInstrument(pair.InstrumentID)
			if err != nil {
				log.Printf("currency pair %d (%s) failed to fetch: %v", pair.InstrumentID, pair.Name, err)
				return nil
			}
			slots[i] = &record
			return nil
		})
	}
	_ = g.Wait() // join barrier only; fetch failures leave nil slots

	table := model.RateTable{}
	identity := s.baseCurrency + "/" + s.baseCurrency
	for _, record := range slots {
		if record == nil || record.Name == identity {
			continue
		}
		table[record.Name] = model.CurrencyRate{
			Rate:     record.LastPrice,
			SourceID: record.ID,
		}
	}

	return table, nil
}

// RateHistories fetches the daily rate history of every configured currency
// pair, keyed by the foreign currency code ("USD/SEK" becomes "USD").
//
// Unlike BuildRateTable, a fetch failure here is fatal: the caller is the
// historical reconstruction, which must not write a series built from
// incomplete rate data.
func (s *RatesService) RateHistories() (map[string][]model.PricePoint, error) {
	pairs, err := s.holdingsRepo.GetCurrencyPairs()
	if err != nil {
		return nil, err
	}

	histories := make(map[string][]model.PricePoint, len(pairs))
	for _, pair := range pairs {
		currency := strings.TrimSuffix(pair.Name, "/"+s.baseCurrency)
		if currency == pair.Name || currency == s.baseCurrency {
			// Not a <code>/<base> quote; it cannot contribute conversions.
			continue
		}

		history, err := s.market.GetPriceHistory(pair.InstrumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch rate history for %s: %w", pair.Name, err)
		}
		histories[currency] = history
	}

	return histories, nil
}
