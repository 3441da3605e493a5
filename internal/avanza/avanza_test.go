package avanza

import (
	"testing"
	"time"
)

func TestParseInstrument(t *testing.T) {
	t.Run("maps the full market response", func(t *testing.T) {
		pe := 22.5
		raw := marketResponse{
			Name:             "Investor B",
			Currency:         "SEK",
			FlagCode:         "SE",
			LastPrice:        201.5,
			ChangePercent:    -1.2,
			LastPriceUpdated: "2026-08-28T17:29:45.123+0200",
			KeyRatios:        &keyRatios{PriceEarningsRatio: &pe},
			Company:          &company{Sector: "Investment Companies"},
			Dividends: []dividend{
				{ExDate: "2026-11-10", AmountPerShare: 1.2},
				{ExDate: "not-a-date", AmountPerShare: 9},
			},
		}

		inst := parseInstrument(5361, raw, nil)

		if inst.ID != 5361 || inst.Name != "Investor B" {
			t.Errorf("Unexpected identity: %+v", inst)
		}
		if inst.Country != "SE" || inst.Sector != "Investment Companies" {
			t.Errorf("Unexpected classification: %+v", inst)
		}
		if inst.PERatio == nil || *inst.PERatio != 22.5 {
			t.Errorf("Expected P/E 22.5, got %v", inst.PERatio)
		}
		if inst.Volatility != nil {
			t.Error("Unreported volatility should stay nil")
		}
		expected := time.Date(2026, 8, 28, 17, 29, 45, 0, time.UTC)
		if !inst.LastUpdated.Equal(expected) {
			t.Errorf("Expected updated %v, got %v", expected, inst.LastUpdated)
		}
		if len(inst.Dividends) != 1 {
			t.Fatalf("Expected 1 parseable dividend, got %d", len(inst.Dividends))
		}
		if inst.Dividends[0].AmountPerShare != 1.2 {
			t.Errorf("Unexpected dividend: %+v", inst.Dividends[0])
		}
	})

	t.Run("tolerates missing optional sections", func(t *testing.T) {
		raw := marketResponse{Name: "Minimal", Currency: "SEK", LastPrice: 10}

		inst := parseInstrument(1, raw, nil)

		if inst.PERatio != nil || inst.Volatility != nil || inst.DirectYield != nil {
			t.Errorf("Missing key ratios should stay nil: %+v", inst)
		}
		if inst.Sector != "" {
			t.Errorf("Missing company should leave sector empty, got %q", inst.Sector)
		}
	})
}

func TestParseChart(t *testing.T) {
	ms := func(year int, month time.Month, day int) *float64 {
		v := float64(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).UnixMilli())
		return &v
	}
	price := func(v float64) *float64 { return &v }

	t.Run("converts timestamps and drops null closes", func(t *testing.T) {
		raw := chartResponse{DataPoints: [][]*float64{
			{ms(2026, time.August, 3), price(100)},
			{ms(2026, time.August, 4), nil}, // non-trading day
			{ms(2026, time.August, 5), price(102)},
		}}

		points := parseChart(raw)

		if len(points) != 2 {
			t.Fatalf("Expected 2 points, got %d", len(points))
		}
		if !points[0].Date.Equal(time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Unexpected date: %v", points[0].Date)
		}
		if points[1].Price != 102 {
			t.Errorf("Expected 102, got %v", points[1].Price)
		}
	})

	t.Run("handles an empty response", func(t *testing.T) {
		if points := parseChart(chartResponse{}); len(points) != 0 {
			t.Errorf("Expected no points, got %v", points)
		}
	})
}
