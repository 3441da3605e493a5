package avanza

// marketResponse mirrors the subset of the Avanza mobile market endpoint that
// the tracker consumes. Key ratios and company info are missing for some
// instruments (and for all currency pairs), hence the pointer fields.
type marketResponse struct {
	Name             string  `json:"name"`
	Currency         string  `json:"currency"`
	FlagCode         string  `json:"flagCode"`
	LastPrice        float64 `json:"lastPrice"`
	ChangePercent    float64 `json:"changePercent"`
	LastPriceUpdated string  `json:"lastPriceUpdated"`

	KeyRatios *keyRatios `json:"keyRatios"`
	Company   *company   `json:"company"`
	Dividends []dividend `json:"dividends"`
}

type keyRatios struct {
	PriceEarningsRatio *float64 `json:"priceEarningsRatio"`
	Volatility         *float64 `json:"volatility"`
	DirectYield        *float64 `json:"directYield"`
}

type company struct {
	Sector string `json:"sector"`
}

type dividend struct {
	ExDate         string  `json:"exDate"`
	AmountPerShare float64 `json:"amountPerShare"`
}

// chartRequest is the body of the highstock chart endpoint.
type chartRequest struct {
	OrderbookID     int64  `json:"orderbookId"`
	ChartType       string `json:"chartType"`
	ChartResolution string `json:"chartResolution"`
	TimePeriod      string `json:"timePeriod"`
}

// chartResponse carries daily close prices as [msSinceEpoch, price] pairs.
// The price element is null on days the instrument did not trade.
type chartResponse struct {
	DataPoints [][]*float64 `json:"dataPoints"`
}
