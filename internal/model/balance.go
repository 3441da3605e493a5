package model

import "time"

// BalanceRecord is one day's total portfolio value. Total is the formatted
// display string, e.g. "2000 SEK" for a fully converted day or
// "1000 SEK + 100 USD" when one or more currencies could not be converted.
// IsPartial is true in the latter case.
type BalanceRecord struct {
	Date      time.Time
	Total     string
	IsPartial bool
}
