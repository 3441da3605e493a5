package model

import "time"

// Instrument is a normalized snapshot of one tradable instrument as returned
// by the market-data provider. It covers both equities and currency-pair quote
// sources (for a currency pair, Name is the pair, e.g. "USD/SEK").
//
// An Instrument is immutable once fetched; a refresh produces a new value.
type Instrument struct {
	ID            int64
	Name          string
	Currency      string
	Country       string
	Sector        string
	LastPrice     float64
	ChangePercent float64
	LastUpdated   time.Time

	// Key ratios are not published for every instrument. A nil pointer means
	// the provider did not report the value, which is distinct from zero.
	PERatio     *float64
	Volatility  *float64
	DirectYield *float64

	Dividends    []Dividend
	PriceHistory []PricePoint
}

// Dividend is one announced dividend payment for an instrument.
type Dividend struct {
	ExDate         time.Time
	AmountPerShare float64
}

// PricePoint is one (date, price) observation in a daily price or
// currency-rate history. Date is truncated to midnight UTC.
type PricePoint struct {
	Date  time.Time
	Price float64
}
