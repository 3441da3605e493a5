package service_test

import (
	"errors"
	"testing"

	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/testutil"
)

// TestSettingsService tests runtime-setting reads, writes and validation.
func TestSettingsService(t *testing.T) {
	t.Run("falls back to defaults when nothing is stored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingsService(t, db)

		threshold, err := svc.WarningThreshold()
		if err != nil {
			t.Fatalf("WarningThreshold failed: %v", err)
		}
		if threshold != -2.0 {
			t.Errorf("Expected default -2.0, got %v", threshold)
		}

		interval, err := svc.RefreshInterval()
		if err != nil {
			t.Fatalf("RefreshInterval failed: %v", err)
		}
		if interval != 0 {
			t.Errorf("Expected default 0, got %d", interval)
		}
	})

	t.Run("round-trips stored values", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingsService(t, db)

		if err := svc.SetWarningThreshold(-3.5); err != nil {
			t.Fatalf("SetWarningThreshold failed: %v", err)
		}
		if err := svc.SetRefreshInterval(15); err != nil {
			t.Fatalf("SetRefreshInterval failed: %v", err)
		}

		threshold, _ := svc.WarningThreshold()
		if threshold != -3.5 {
			t.Errorf("Expected -3.5, got %v", threshold)
		}
		interval, _ := svc.RefreshInterval()
		if interval != 15 {
			t.Errorf("Expected 15, got %d", interval)
		}
	})

	t.Run("accepts a positive warning threshold", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingsService(t, db)

		if err := svc.SetWarningThreshold(1.5); err != nil {
			t.Fatalf("SetWarningThreshold failed: %v", err)
		}

		threshold, _ := svc.WarningThreshold()
		if threshold != 1.5 {
			t.Errorf("Expected 1.5, got %v", threshold)
		}
	})

	t.Run("rejects a negative refresh interval", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSettingsService(t, db)

		err := svc.SetRefreshInterval(-5)
		if !errors.Is(err, apperrors.ErrInvalidInterval) {
			t.Fatalf("Expected ErrInvalidInterval, got %v", err)
		}
	})
}
