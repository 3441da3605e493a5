// Package chart renders the stored balance series as a PNG line chart.
package chart

import (
	"fmt"
	"strconv"
	"strings"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
)

// RenderBalance renders the balance series as a PNG line chart. Partial rows
// (mixed-currency totals) carry no single plottable number and are skipped.
func RenderBalance(series []model.BalanceRecord, baseCurrency string) ([]byte, error) {
	var labels []string
	var values []float64
	for _, record := range series {
		if record.IsPartial {
			continue
		}
		amount, ok := parseTotal(record.Total)
		if !ok {
			continue
		}
		labels = append(labels, record.Date.Format("Jan 02"))
		values = append(values, amount)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("no plottable balance records")
	}

	minVal, maxVal := values[0], values[0]
	for _, val := range values {
		if val < minVal {
			minVal = val
		}
		if val > maxVal {
			maxVal = val
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	splitNum := 6
	if len(labels) <= 30 {
		splitNum = len(labels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(fmt.Sprintf("Portfolio balance (%s)", baseCurrency)),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// parseTotal reads the amount out of a single-currency "<amount> <code>"
// balance string.
func parseTotal(total string) (float64, bool) {
	fields := strings.Fields(total)
	if len(fields) != 2 {
		return 0, false
	}
	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
