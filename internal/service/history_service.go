package service

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/avanza"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
)

// HistoryService rebuilds the daily balance series from the holdings
// snapshot log and the instruments' daily closing prices.
type HistoryService struct {
	snapshotRepo *repository.SnapshotRepository
	balanceRepo  *repository.BalanceRepository
	rates        *RatesService
	valuation    *ValuationService
	market       avanza.Client
	baseCurrency string
	now          func() time.Time
}

// NewHistoryService creates a new HistoryService with the provided dependencies.
func NewHistoryService(
	snapshotRepo *repository.SnapshotRepository,
	balanceRepo *repository.BalanceRepository,
	rates *RatesService,
	valuation *ValuationService,
	market avanza.Client,
	baseCurrency string,
) *HistoryService {
	return &HistoryService{
		snapshotRepo: snapshotRepo,
		balanceRepo:  balanceRepo,
		rates:        rates,
		valuation:    valuation,
		market:       market,
		baseCurrency: baseCurrency,
		now:          time.Now,
	}
}

// RebuildHistory gathers reconstruction inputs and replaces the stored
// balance series with one recomputed from scratch.
//
// Price histories fetched by the most recent valuation pass are reused;
// instruments that appear in old snapshots but are no longer held are fetched
// on demand during reconstruction. Rate histories always come from the
// configured currency pairs. After a successful rebuild a fresh valuation
// pass restores today's row, which the rebuild deliberately leaves out.
//
// The boolean reports whether a rebuild actually happened: fewer than two
// distinct snapshot days leave the stored series untouched.
func (s *HistoryService) RebuildHistory(warningThreshold float64) (bool, error) {
	// Cheap pre-check: skip the rate-history fetches when the rebuild would
	// decline anyway.
	days, err := s.snapshotRepo.CountSnapshotDates()
	if err != nil {
		return false, err
	}
	if days < 2 {
		return false, nil
	}

	priceHistories := map[int64][]model.PricePoint{}
	for _, inst := range s.valuation.CurrentInstruments() {
		if len(inst.PriceHistory) > 0 {
			priceHistories[inst.ID] = inst.PriceHistory
		}
	}

	rateHistories, err := s.rates.RateHistories()
	if err != nil {
		return false, err
	}

	rebuilt, err := s.Reconstruct(priceHistories, rateHistories)
	if err != nil || !rebuilt {
		return rebuilt, err
	}

	if _, err := s.valuation.Refresh(warningThreshold); err != nil {
		return true, fmt.Errorf("history rebuilt but valuation refresh failed: %w", err)
	}
	return true, nil
}

// SetNow overrides the clock used to decide which day counts as "today".
func (s *HistoryService) SetNow(now func() time.Time) {
	s.now = now
}

// BalanceSeries returns the stored balance series ordered by date.
func (s *HistoryService) BalanceSeries() ([]model.BalanceRecord, error) {
	return s.balanceRepo.GetBalanceSeries()
}

// BalanceSince returns the stored balance series from startDate onward.
func (s *HistoryService) BalanceSince(startDate time.Time) ([]model.BalanceRecord, error) {
	return s.balanceRepo.GetBalanceSince(startDate)
}

// Reconstruct recomputes the full balance series from the snapshot log.
//
// The algorithm:
//  1. Load every snapshot row and group by day. Fewer than two distinct days
//     is a no-op: there is nothing to interpolate between.
//  2. Build the day calendar: every weekday from the first snapshot day
//     through today, plus any snapshot day itself (a snapshot recorded on a
//     weekend still anchors its own date). Extending past the last snapshot
//     keeps the forward-fill running when the program has not been started
//     for a while.
//  3. Forward-fill: a day without its own snapshot carries the most recent
//     earlier one, so holdings persist until the next recorded change.
//  4. Attach closing prices. An instrument missing from priceHistories is
//     fetched once on demand; a failed fetch aborts the rebuild. A day where
//     any held instrument has no price is treated as a market holiday and
//     dropped whole, as is the most recent day (its close is not final).
//  5. Convert each surviving day into the base currency via the rate history
//     and sum. A missing rate on a surviving day aborts the rebuild; nothing
//     is written.
//  6. Atomically replace the stored balance series with the rebuilt one.
//
// Reconstruction is idempotent: rerunning it over unchanged snapshots and
// histories produces an identical series.
func (s *HistoryService) Reconstruct(
	priceHistories map[int64][]model.PricePoint,
	rateHistories map[string][]model.PricePoint,
) (bool, error) {
	snapshotRows, err := s.snapshotRepo.GetSnapshots()
	if err != nil {
		return false, err
	}

	byDay := map[string][]model.SnapshotRow{}
	for _, row := range snapshotRows {
		key := repository.DateKey(row.Date)
		byDay[key] = append(byDay[key], row)
	}
	if len(byDay) < 2 {
		return false, nil
	}

	// The most recent day's close is still moving; it is recomputed by the
	// live valuation instead.
	cutoff := midnight(s.now())

	calendar := buildCalendar(byDay, cutoff)

	// On-demand histories for instruments no longer held.
	prices := map[int64]map[string]float64{}
	priceFor := func(id int64, day string) (float64, bool, error) {
		table, ok := prices[id]
		if !ok {
			history, exists := priceHistories[id]
			if !exists {
				fetched, fetchErr := s.market.GetPriceHistory(id)
				if fetchErr != nil {
					return 0, false, fmt.Errorf("failed to fetch price history for instrument %d: %w", id, fetchErr)
				}
				history = fetched
			}
			table = indexByDay(history)
			prices[id] = table
		}
		price, ok := table[day]
		return price, ok, nil
	}

	rates := map[string]map[string]float64{}
	for currency, history := range rateHistories {
		rates[currency] = indexByDay(history)
	}

	series := []model.BalanceRecord{}
	var current []model.SnapshotRow
	for _, day := range calendar {
		if rows, ok := byDay[repository.DateKey(day)]; ok {
			current = rows
		}
		if current == nil || !day.Before(cutoff) {
			continue
		}

		key := repository.DateKey(day)

		// First pass: a single missing price marks the day a holiday and
		// drops it before any rate lookup can fail on it.
		dayPrices := make([]float64, len(current))
		holiday := false
		for i, row := range current {
			price, ok, err := priceFor(row.InstrumentID, key)
			if err != nil {
				return false, err
			}
			if !ok {
				holiday = true
				break
			}
			dayPrices[i] = price
		}
		if holiday {
			continue
		}

		total := 0.0
		for i, row := range current {
			factor := 1.0
			if row.Currency != s.baseCurrency {
				rate, ok := rates[row.Currency][key]
				if !ok {
					return false, fmt.Errorf("%w: %s/%s on %s",
						apperrors.ErrMissingRate, row.Currency, s.baseCurrency, key)
				}
				factor = rate
			}
			total += dayPrices[i] * float64(row.Quantity) * factor
		}

		series = append(series, model.BalanceRecord{
			Date:  day,
			Total: fmt.Sprintf("%d %s", int64(math.Round(total)), s.baseCurrency),
		})
	}

	if err := s.balanceRepo.ReplaceBalanceSeries(series); err != nil {
		return false, err
	}

	log.Printf("balance history rebuilt: %d days from %d snapshot days", len(series), len(byDay))
	return true, nil
}

// buildCalendar returns every weekday from the first snapshot day through
// until, plus every snapshot day itself, sorted ascending.
func buildCalendar(byDay map[string][]model.SnapshotRow, until time.Time) []time.Time {
	days := map[string]time.Time{}
	var first, last time.Time
	for key, rows := range byDay {
		day := midnight(rows[0].Date)
		days[key] = day
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}
	if until.After(last) {
		last = until
	}

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days[repository.DateKey(day)] = day
	}

	calendar := make([]time.Time, 0, len(days))
	for _, day := range days {
		calendar = append(calendar, day)
	}
	sort.Slice(calendar, func(i, j int) bool { return calendar[i].Before(calendar[j]) })
	return calendar
}

// indexByDay maps a daily price history by its "2006-01-02" date key. Later
// entries for the same day win, matching how the feed reports corrections.
func indexByDay(history []model.PricePoint) map[string]float64 {
	index := make(map[string]float64, len(history))
	for _, point := range history {
		index[repository.DateKey(point.Date)] = point.Price
	}
	return index
}
