package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrHoldingNotFound indicates that no holding is configured for the given instrument.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrCurrencyPairNotFound indicates that no currency pair is configured for the given instrument.
	ErrCurrencyPairNotFound = errors.New("currency pair not found")

	// ErrSnapshotNotFound indicates that no holdings snapshot exists for the requested position.
	ErrSnapshotNotFound = errors.New("holdings snapshot not found")

	// ErrInstrumentNotFound indicates that an instrument lookup returned no data.
	ErrInstrumentNotFound = errors.New("instrument not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidQuantity indicates that a holding quantity is not a positive whole number.
	ErrInvalidQuantity = errors.New("quantity must be a positive whole number")

	// ErrInvalidInstrumentID indicates that an instrument ID is not a positive whole number.
	ErrInvalidInstrumentID = errors.New("instrument ID must be a positive whole number")

	// ErrInvalidInterval indicates that a refresh interval is negative.
	ErrInvalidInterval = errors.New("refresh interval must be zero or more minutes")
)

// Reconstruction errors represent conditions that abort the historical
// rebuild. No partial series is ever written when one of these occurs.
var (
	// ErrMissingRate indicates that a currency rate was absent for a date
	// that survived the holiday filter.
	ErrMissingRate = errors.New("missing currency rate")
)
