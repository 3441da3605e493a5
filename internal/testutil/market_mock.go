package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
)

// MockMarketClient is a mock implementation of avanza.Client for testing.
// It returns predefined instrument records instead of making API calls, and
// is safe for the concurrent fetches the services perform.
type MockMarketClient struct {
	mu sync.Mutex

	// Instruments maps instrument id to the record GetInstrument returns
	Instruments map[int64]model.Instrument
	// Histories maps instrument id to the series GetPriceHistory returns.
	// An instrument without an entry falls back to its record's PriceHistory.
	Histories map[int64][]model.PricePoint
	// Errs maps instrument id to an error returned by both methods
	Errs map[int64]error
	// FetchCount tracks calls to GetInstrument per instrument id
	FetchCount map[int64]int
	// HistoryCount tracks calls to GetPriceHistory per instrument id
	HistoryCount map[int64]int
}

// NewMockMarketClient creates an empty mock market client.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		Instruments:  map[int64]model.Instrument{},
		Histories:    map[int64][]model.PricePoint{},
		Errs:         map[int64]error{},
		FetchCount:   map[int64]int{},
		HistoryCount: map[int64]int{},
	}
}

// WithInstrument registers the record returned for its id.
func (m *MockMarketClient) WithInstrument(inst model.Instrument) *MockMarketClient {
	m.Instruments[inst.ID] = inst
	return m
}

// WithHistory registers a price history for an instrument id.
func (m *MockMarketClient) WithHistory(id int64, history []model.PricePoint) *MockMarketClient {
	m.Histories[id] = history
	return m
}

// WithError makes both methods fail for an instrument id.
func (m *MockMarketClient) WithError(id int64, err error) *MockMarketClient {
	m.Errs[id] = err
	return m
}

// GetInstrument returns the registered record for id.
func (m *MockMarketClient) GetInstrument(id int64) (model.Instrument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCount[id]++
	if err := m.Errs[id]; err != nil {
		return model.Instrument{}, err
	}
	inst, ok := m.Instruments[id]
	if !ok {
		return model.Instrument{}, fmt.Errorf("no mock instrument registered for id %d", id)
	}
	return inst, nil
}

// GetPriceHistory returns the registered history for id.
func (m *MockMarketClient) GetPriceHistory(id int64) ([]model.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.HistoryCount[id]++
	if err := m.Errs[id]; err != nil {
		return nil, err
	}
	if history, ok := m.Histories[id]; ok {
		return history, nil
	}
	if inst, ok := m.Instruments[id]; ok {
		return inst.PriceHistory, nil
	}
	return nil, fmt.Errorf("no mock price history registered for id %d", id)
}

// Date is shorthand for a UTC midnight timestamp in tests.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Points builds a daily price series starting at start, one point per price.
// Weekends are skipped, matching how the market feed reports closes.
func Points(start time.Time, prices ...float64) []model.PricePoint {
	points := make([]model.PricePoint, 0, len(prices))
	day := start
	for _, price := range prices {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		points = append(points, model.PricePoint{Date: day, Price: price})
		day = day.AddDate(0, 0, 1)
	}
	return points
}
