package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
)

// BalanceRepository provides data access methods for the balance table: the
// date-keyed series of formatted daily portfolio totals.
type BalanceRepository struct {
	db *sql.DB
}

// NewBalanceRepository creates a new BalanceRepository with the provided database connection.
func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// AppendBalance inserts the record for one day, overwriting any existing row
// for the same date. The date UNIQUE constraint keeps the series at one row
// per day; ordering comes from the date column, so the series stays sorted
// regardless of insert order.
func (r *BalanceRepository) AppendBalance(record model.BalanceRecord) error {
	_, err := r.db.Exec(`
		INSERT INTO balance (id, date, total, is_partial)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET total = excluded.total, is_partial = excluded.is_partial
	`, uuid.New().String(), DateKey(record.Date), record.Total, record.IsPartial)
	if err != nil {
		return fmt.Errorf("failed to append balance for %s: %w", DateKey(record.Date), err)
	}
	return nil
}

// GetBalanceSeries returns the full series ordered by date.
func (r *BalanceRepository) GetBalanceSeries() ([]model.BalanceRecord, error) {
	rows, err := r.db.Query(`
		SELECT date, total, is_partial
		FROM balance
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance table: %w", err)
	}
	defer rows.Close()

	series := []model.BalanceRecord{}
	for rows.Next() {
		record, err := scanBalanceRecord(rows)
		if err != nil {
			return nil, err
		}
		series = append(series, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance table: %w", err)
	}

	return series, nil
}

// GetBalanceSince returns the series from startDate (inclusive) onward.
func (r *BalanceRepository) GetBalanceSince(startDate time.Time) ([]model.BalanceRecord, error) {
	rows, err := r.db.Query(`
		SELECT date, total, is_partial
		FROM balance
		WHERE date >= ?
		ORDER BY date ASC
	`, DateKey(startDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query balance table: %w", err)
	}
	defer rows.Close()

	series := []model.BalanceRecord{}
	for rows.Next() {
		record, err := scanBalanceRecord(rows)
		if err != nil {
			return nil, err
		}
		series = append(series, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance table: %w", err)
	}

	return series, nil
}

// ReplaceBalanceSeries atomically discards the stored series and writes the
// given one. Readers either see the old series or the new one, never a
// partially written mix; the whole swap is a single transaction.
func (r *BalanceRepository) ReplaceBalanceSeries(series []model.BalanceRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin balance transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(`DELETE FROM balance`); err != nil {
		return fmt.Errorf("failed to clear balance series: %w", err)
	}

	for _, record := range series {
		_, err := tx.Exec(`
			INSERT INTO balance (id, date, total, is_partial)
			VALUES (?, ?, ?, ?)
		`, uuid.New().String(), DateKey(record.Date), record.Total, record.IsPartial)
		if err != nil {
			return fmt.Errorf("failed to insert balance for %s: %w", DateKey(record.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit balance series: %w", err)
	}
	return nil
}

func scanBalanceRecord(rows *sql.Rows) (model.BalanceRecord, error) {
	var record model.BalanceRecord
	var dateStr string

	if err := rows.Scan(&dateStr, &record.Total, &record.IsPartial); err != nil {
		return model.BalanceRecord{}, fmt.Errorf("failed to scan balance row: %w", err)
	}

	date, err := ParseTime(dateStr)
	if err != nil {
		return model.BalanceRecord{}, err
	}
	record.Date = date

	return record, nil
}
