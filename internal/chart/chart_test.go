package chart_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/chart"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
	"github.com/avanzatt/portfolio-tracker-backend/internal/testutil"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderBalance(t *testing.T) {
	t.Run("renders a PNG from the series", func(t *testing.T) {
		series := []model.BalanceRecord{
			{Date: testutil.Date(2026, time.August, 3), Total: "1000 SEK"},
			{Date: testutil.Date(2026, time.August, 4), Total: "1050 SEK"},
			{Date: testutil.Date(2026, time.August, 5), Total: "1020 SEK"},
		}

		png, err := chart.RenderBalance(series, "SEK")
		if err != nil {
			t.Fatalf("RenderBalance failed: %v", err)
		}
		if !bytes.HasPrefix(png, pngMagic) {
			t.Error("Output does not start with the PNG signature")
		}
	})

	t.Run("skips partial records", func(t *testing.T) {
		series := []model.BalanceRecord{
			{Date: testutil.Date(2026, time.August, 3), Total: "1000 SEK"},
			{Date: testutil.Date(2026, time.August, 4), Total: "1000 SEK + 100 USD", IsPartial: true},
			{Date: testutil.Date(2026, time.August, 5), Total: "1020 SEK"},
		}

		if _, err := chart.RenderBalance(series, "SEK"); err != nil {
			t.Fatalf("RenderBalance should skip partial rows, got: %v", err)
		}
	})

	t.Run("fails with nothing to plot", func(t *testing.T) {
		series := []model.BalanceRecord{
			{Date: testutil.Date(2026, time.August, 4), Total: "1000 SEK + 100 USD", IsPartial: true},
		}

		if _, err := chart.RenderBalance(series, "SEK"); err == nil {
			t.Fatal("Expected an error with only partial rows")
		}
	})
}
