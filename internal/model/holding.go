package model

import "time"

// Holding is one configured (instrument, quantity) pair in the portfolio.
type Holding struct {
	InstrumentID int64
	Quantity     int64
}

// CurrencyPair is a configured quote source for one currency conversion,
// e.g. instrument 19000 quoting "USD/SEK".
type CurrencyPair struct {
	InstrumentID int64
	Name         string
}

// SnapshotRow is one instrument's entry in the holdings snapshot recorded for
// a calendar day. Snapshots are append-only: once a day has passed its rows
// are never mutated, only read back by the history reconstruction.
type SnapshotRow struct {
	Date         time.Time
	InstrumentID int64
	Quantity     int64
	Currency     string
}

// CurrencyRate is one entry of the currency rate table, keyed externally by
// pair name ("USD/SEK"). SourceID records which instrument quoted the rate.
type CurrencyRate struct {
	Rate     float64
	SourceID int64
}

// RateTable maps a currency pair name to its latest quoted rate. It is
// rebuilt in full on every valuation cycle; the base currency is an implicit
// identity entry and is never stored.
type RateTable map[string]CurrencyRate
