package service

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avanzatt/portfolio-tracker-backend/internal/avanza"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
)

// HoldingRow is one holding's display row produced by a valuation pass.
// Price and Total are expressed in Currency: the base currency when the
// holding could be converted, the holding's native currency otherwise.
type HoldingRow struct {
	InstrumentID  int64
	Name          string
	Country       string
	Updated       time.Time
	PERatio       *float64
	ChangePercent float64
	Price         float64
	Quantity      int64
	Total         float64
	Currency      string
	Converted     bool
}

// DropWarning flags one holding whose change percent fell below the
// configured warning threshold. Purely advisory output.
type DropWarning struct {
	Name          string
	ChangePercent float64
}

// ValuationResult is the outcome of one live valuation pass.
type ValuationResult struct {
	Rows         []HoldingRow
	Balance      model.BalanceRecord
	MissingRates []string
	Warnings     []DropWarning
}

// ValuationService runs the live valuation cycle: fetch every holding's
// instrument record, convert into the base currency through the rate table,
// and persist the day's snapshot and balance row.
type ValuationService struct {
	holdingsRepo *repository.HoldingsRepository
	snapshotRepo *repository.SnapshotRepository
	balanceRepo  *repository.BalanceRepository
	rates        *RatesService
	market       avanza.Client
	baseCurrency string
	now          func() time.Time

	mu              sync.Mutex
	lastInstruments []model.Instrument
	lastResult      *ValuationResult
}

// NewValuationService creates a new ValuationService with the provided dependencies.
func NewValuationService(
	holdingsRepo *repository.HoldingsRepository,
	snapshotRepo *repository.SnapshotRepository,
	balanceRepo *repository.BalanceRepository,
	rates *RatesService,
	market avanza.Client,
	baseCurrency string,
) *ValuationService {
	return &ValuationService{
		holdingsRepo: holdingsRepo,
		snapshotRepo: snapshotRepo,
		balanceRepo:  balanceRepo,
		rates:        rates,
		market:       market,
		baseCurrency: baseCurrency,
		now:          time.Now,
	}
}

// SetNow overrides the clock used to date snapshots and balance rows.
func (s *ValuationService) SetNow(now func() time.Time) {
	s.now = now
}

// Refresh runs one valuation pass over the configured holdings.
//
// Every holding's instrument record is fetched concurrently, one result slot
// per holding; aggregation starts only after all fetches have completed. A
// holding whose fetch failed is omitted from this cycle (logged, not fatal).
//
// Conversion rules per holding:
//   - base-currency holdings convert at 1;
//   - a matching "<code>/<base>" rate converts price and total into the base
//     bucket (the total rounded to a whole amount);
//   - a missing rate leaves the holding in its native-currency bucket and
//     produces an advisory missing-rate message.
//
// The balance string concatenates every non-zero bucket as
// "<amount> <currency>" joined by " + ". Bucket order is the base currency
// first, then first occurrence over the holdings, so repeated calls over
// fixed inputs produce identical strings.
//
// As a side effect the pass records today's holdings snapshot and appends
// (or overwrites) today's balance row.
func (s *ValuationService) Refresh(warningThreshold float64) (ValuationResult, error) {
	holdings, err := s.holdingsRepo.GetHoldings()
	if err != nil {
		return ValuationResult{}, err
	}

	rateTable, err := s.rates.BuildRateTable()
	if err != nil {
		return ValuationResult{}, err
	}

	type fetchResult struct {
		instrument model.Instrument
		err        error
	}

	// One slot per holding; goroutines never share a collection.
	results := make([]fetchResult, len(holdings))

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentFetches)
	for i, holding := range holdings {
		i, holding := i, holding
		g.Go(func() error {
			inst, err := s.market.GetInstrument(holding.InstrumentID)
			results[i] = fetchResult{instrument: inst, err: err}
			return nil
		})
	}
	_ = g.Wait() // wait for every fetch, success or failure, before aggregating

	today := midnight(s.now())
	buckets := newCurrencyBuckets(s.baseCurrency)
	result := ValuationResult{}
	instruments := make([]model.Instrument, 0, len(holdings))
	snapshotRows := make([]model.SnapshotRow, 0, len(holdings))
	missingSeen := map[string]bool{}

	for i, holding := range holdings {
		if results[i].err != nil {
			log.Printf("instrument %d omitted from valuation: %v", holding.InstrumentID, results[i].err)
			continue
		}
		inst := results[i].instrument
		instruments = append(instruments, inst)

		row := HoldingRow{
			InstrumentID:  inst.ID,
			Name:          inst.Name,
			Country:       inst.Country,
			Updated:       inst.LastUpdated,
			PERatio:       inst.PERatio,
			ChangePercent: inst.ChangePercent,
			Quantity:      holding.Quantity,
		}

		factor, converted := 1.0, true
		if inst.Currency != s.baseCurrency {
			rate, ok := rateTable[inst.Currency+"/"+s.baseCurrency]
			if ok {
				factor = rate.Rate
			} else {
				converted = false
			}
		}

		if converted {
			total := math.Round(inst.LastPrice * float64(holding.Quantity) * factor)
			row.Price = round2(inst.LastPrice * factor)
			row.Total = total
			row.Currency = s.baseCurrency
			row.Converted = true
			buckets.add(s.baseCurrency, int64(total))
		} else {
			pair := inst.Currency + "/" + s.baseCurrency
			if !missingSeen[pair] {
				missingSeen[pair] = true
				result.MissingRates = append(result.MissingRates,
					fmt.Sprintf("missing currency ticker (%s)", pair))
			}
			row.Price = inst.LastPrice
			row.Total = round2(inst.LastPrice * float64(holding.Quantity))
			row.Currency = inst.Currency
			buckets.add(inst.Currency, int64(math.Round(inst.LastPrice*float64(holding.Quantity))))
		}

		if inst.ChangePercent < warningThreshold {
			result.Warnings = append(result.Warnings, DropWarning{
				Name:          inst.Name,
				ChangePercent: inst.ChangePercent,
			})
		}

		result.Rows = append(result.Rows, row)
		snapshotRows = append(snapshotRows, model.SnapshotRow{
			Date:         today,
			InstrumentID: inst.ID,
			Quantity:     holding.Quantity,
			Currency:     inst.Currency,
		})
	}

	result.Balance = model.BalanceRecord{
		Date:      today,
		Total:     buckets.format(),
		IsPartial: buckets.hasForeign(),
	}

	if err := s.snapshotRepo.RecordSnapshot(today, snapshotRows); err != nil {
		return ValuationResult{}, err
	}
	if err := s.balanceRepo.AppendBalance(result.Balance); err != nil {
		return ValuationResult{}, err
	}

	s.mu.Lock()
	s.lastInstruments = instruments
	s.lastResult = &result
	s.mu.Unlock()

	return result, nil
}

// CurrentInstruments returns the instrument records fetched by the most
// recent valuation pass. The history rebuild reuses their price histories
// instead of fetching them again.
func (s *ValuationService) CurrentInstruments() []model.Instrument {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Instrument, len(s.lastInstruments))
	copy(out, s.lastInstruments)
	return out
}

// LastResult returns the most recent valuation result, if any pass has run.
func (s *ValuationService) LastResult() (ValuationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastResult == nil {
		return ValuationResult{}, false
	}
	return *s.lastResult, true
}

// currencyBuckets accumulates whole-currency amounts per currency while
// preserving a deterministic bucket order: the base currency first, then
// first occurrence.
type currencyBuckets struct {
	base    string
	order   []string
	amounts map[string]int64
}

func newCurrencyBuckets(base string) *currencyBuckets {
	return &currencyBuckets{
		base:    base,
		order:   []string{base},
		amounts: map[string]int64{base: 0},
	}
}

func (b *currencyBuckets) add(currency string, amount int64) {
	if _, ok := b.amounts[currency]; !ok {
		b.order = append(b.order, currency)
	}
	b.amounts[currency] += amount
}

// format renders every non-zero bucket as "<amount> <currency>" joined by
// " + ". An all-zero set renders as "0 <base>".
func (b *currencyBuckets) format() string {
	out := ""
	for _, currency := range b.order {
		if b.amounts[currency] == 0 {
			continue
		}
		if out != "" {
			out += " + "
		}
		out += fmt.Sprintf("%d %s", b.amounts[currency], currency)
	}
	if out == "" {
		return "0 " + b.base
	}
	return out
}

// hasForeign reports whether any non-base bucket holds a non-zero amount.
func (b *currencyBuckets) hasForeign() bool {
	for currency, amount := range b.amounts {
		if currency != b.base && amount != 0 {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func midnight(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
