package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
)

// SnapshotRepository provides data access methods for the holdings_snapshot
// table: the append-only, date-keyed log of what was held when.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// RecordSnapshot upserts the full snapshot set for one calendar day.
// Re-running the valuation on the same day replaces that day's rows, so the
// operation is idempotent per date. The replace happens in one transaction.
func (r *SnapshotRepository) RecordSnapshot(date time.Time, snapshotRows []model.SnapshotRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(`DELETE FROM holdings_snapshot WHERE date = ?`, DateKey(date)); err != nil {
		return fmt.Errorf("failed to clear snapshot for %s: %w", DateKey(date), err)
	}

	for _, row := range snapshotRows {
		_, err := tx.Exec(`
			INSERT INTO holdings_snapshot (id, date, instrument_id, quantity, currency)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.New().String(), DateKey(date), row.InstrumentID, row.Quantity, row.Currency)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// GetSnapshots returns every snapshot row ordered by date, then instrument.
// This is the flattened input of the historical reconstruction.
func (r *SnapshotRepository) GetSnapshots() ([]model.SnapshotRow, error) {
	rows, err := r.db.Query(`
		SELECT date, instrument_id, quantity, currency
		FROM holdings_snapshot
		ORDER BY date ASC, instrument_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings_snapshot table: %w", err)
	}
	defer rows.Close()

	return scanSnapshotRows(rows)
}

// CountSnapshotDates returns the number of distinct days with a snapshot.
func (r *SnapshotRepository) CountSnapshotDates() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(DISTINCT date) FROM holdings_snapshot`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshot dates: %w", err)
	}
	return count, nil
}

// LatestSnapshotBefore returns the rows of the nth-most-recent snapshot day
// (n = 0 is the most recent). Used at startup to seed the holdings and
// currency configuration from the last recorded run.
func (r *SnapshotRepository) LatestSnapshotBefore(n int) ([]model.SnapshotRow, error) {
	var dateStr string
	err := r.db.QueryRow(`
		SELECT DISTINCT date
		FROM holdings_snapshot
		ORDER BY date DESC
		LIMIT 1 OFFSET ?
	`, n).Scan(&dateStr)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot date: %w", err)
	}

	// The driver may hand the DATE column back in a richer format than the
	// stored key, so normalize before matching on it.
	date, err := ParseTime(dateStr)
	if err != nil {
		return nil, err
	}
	key := DateKey(date)

	rows, err := r.db.Query(`
		SELECT date, instrument_id, quantity, currency
		FROM holdings_snapshot
		WHERE date = ?
		ORDER BY instrument_id ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot for %s: %w", key, err)
	}
	defer rows.Close()

	return scanSnapshotRows(rows)
}

func scanSnapshotRows(rows *sql.Rows) ([]model.SnapshotRow, error) {
	result := []model.SnapshotRow{}
	for rows.Next() {
		var row model.SnapshotRow
		var dateStr string

		if err := rows.Scan(&dateStr, &row.InstrumentID, &row.Quantity, &row.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		date, err := ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		row.Date = date

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings_snapshot table: %w", err)
	}

	return result, nil
}
