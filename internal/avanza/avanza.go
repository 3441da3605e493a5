// Package avanza fetches instrument metadata, live quotes and daily price
// histories from the Avanza market-data API.
package avanza

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
)

const (
	marketURL = "https://www.avanza.se/_mobile/market/stock/%d"
	chartURL  = "https://www.avanza.se/ab/component/highstockchart/getchart/orderbook"

	// chartPeriod is the horizon requested for price histories. Three years
	// comfortably covers the reconstruction window for a tracker that is
	// used at least a few times a year.
	chartPeriod = "three_years"
)

// Client is the market-data capability the services depend on. It is
// implemented by MarketClient and by the test mock.
type Client interface {
	// GetInstrument fetches the live record for one instrument, including
	// its daily price history.
	GetInstrument(id int64) (model.Instrument, error)

	// GetPriceHistory fetches only the daily price history for an
	// instrument. Used for divested instruments that still appear in
	// historical snapshots.
	GetPriceHistory(id int64) ([]model.PricePoint, error)
}

// MarketClient is the production Client backed by the Avanza HTTP API.
type MarketClient struct {
	httpClient *http.Client
}

// NewMarketClient creates a client. proxyURL may be empty; when set, all
// requests are routed through that HTTP proxy.
func NewMarketClient(proxyURL string) (*MarketClient, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", proxyURL, err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
	}

	return &MarketClient{httpClient: client}, nil
}

// GetInstrument fetches the market record and the price history for id and
// normalizes them into a model.Instrument.
func (c *MarketClient) GetInstrument(id int64) (model.Instrument, error) {
	var raw marketResponse
	if err := c.getJSON(fmt.Sprintf(marketURL, id), &raw); err != nil {
		return model.Instrument{}, fmt.Errorf("failed to fetch instrument %d: %w", id, err)
	}

	history, err := c.GetPriceHistory(id)
	if err != nil {
		return model.Instrument{}, err
	}

	return parseInstrument(id, raw, history), nil
}

// GetPriceHistory fetches the daily close-price series for id. Days without
// a close (null data points) are filtered out.
func (c *MarketClient) GetPriceHistory(id int64) ([]model.PricePoint, error) {
	body, err := json.Marshal(chartRequest{
		OrderbookID:     id,
		ChartType:       "AREA",
		ChartResolution: "DAY",
		TimePeriod:      chartPeriod,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, chartURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history for %d: %w", id, err)
	}

	var raw chartResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode price history for %d: %w", id, err)
	}

	return parseChart(raw), nil
}

// parseInstrument maps the raw market response onto the domain record.
// Missing optional sections stay nil so downstream code can tell "not
// reported" from zero.
func parseInstrument(id int64, raw marketResponse, history []model.PricePoint) model.Instrument {
	inst := model.Instrument{
		ID:            id,
		Name:          raw.Name,
		Currency:      raw.Currency,
		Country:       raw.FlagCode,
		LastPrice:     raw.LastPrice,
		ChangePercent: raw.ChangePercent,
		PriceHistory:  history,
	}

	// lastPriceUpdated carries fractional seconds and an offset; the leading
	// 19 characters are a plain local timestamp.
	if len(raw.LastPriceUpdated) >= 19 {
		if ts, err := time.Parse("2006-01-02T15:04:05", raw.LastPriceUpdated[:19]); err == nil {
			inst.LastUpdated = ts
		}
	}

	if raw.KeyRatios != nil {
		inst.PERatio = raw.KeyRatios.PriceEarningsRatio
		inst.Volatility = raw.KeyRatios.Volatility
		inst.DirectYield = raw.KeyRatios.DirectYield
	}
	if raw.Company != nil {
		inst.Sector = raw.Company.Sector
	}

	for _, d := range raw.Dividends {
		exDate, err := time.Parse("2006-01-02", d.ExDate)
		if err != nil {
			continue
		}
		inst.Dividends = append(inst.Dividends, model.Dividend{
			ExDate:         exDate,
			AmountPerShare: d.AmountPerShare,
		})
	}

	return inst
}

// parseChart converts raw [msSinceEpoch, price] pairs into dated points,
// dropping null prices (non-trading days).
func parseChart(raw chartResponse) []model.PricePoint {
	points := make([]model.PricePoint, 0, len(raw.DataPoints))
	for _, dp := range raw.DataPoints {
		if len(dp) < 2 || dp[0] == nil || dp[1] == nil {
			continue
		}
		ts := time.UnixMilli(int64(*dp[0])).UTC().Truncate(24 * time.Hour)
		points = append(points, model.PricePoint{Date: ts, Price: *dp[1]})
	}
	return points
}

func (c *MarketClient) getJSON(url string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	data, err := c.do(req)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

func (c *MarketClient) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}

	return io.ReadAll(resp.Body)
}
