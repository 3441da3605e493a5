package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/avanza"
	"github.com/avanzatt/portfolio-tracker-backend/internal/service"
)

// ValuationHandler handles live-valuation and instrument HTTP requests
type ValuationHandler struct {
	valuationService *service.ValuationService
	settingsService  *service.SettingsService
	market           avanza.Client
}

// NewValuationHandler creates a new ValuationHandler
func NewValuationHandler(
	valuationService *service.ValuationService,
	settingsService *service.SettingsService,
	market avanza.Client,
) *ValuationHandler {
	return &ValuationHandler{
		valuationService: valuationService,
		settingsService:  settingsService,
		market:           market,
	}
}

// HoldingRowResponse represents one valued holding row
type HoldingRowResponse struct {
	InstrumentID  int64    `json:"instrument_id"`
	Name          string   `json:"name"`
	Country       string   `json:"country"`
	Updated       string   `json:"updated"`
	PERatio       *float64 `json:"pe_ratio"`
	ChangePercent float64  `json:"change_percent"`
	Price         float64  `json:"price"`
	Quantity      int64    `json:"quantity"`
	Total         float64  `json:"total"`
	Currency      string   `json:"currency"`
	Converted     bool     `json:"converted"`
}

// WarningResponse represents one drop warning
type WarningResponse struct {
	Name          string  `json:"name"`
	ChangePercent float64 `json:"change_percent"`
}

// ValuationResponse represents the outcome of one valuation pass
type ValuationResponse struct {
	Rows         []HoldingRowResponse `json:"rows"`
	Balance      string               `json:"balance"`
	IsPartial    bool                 `json:"is_partial"`
	Date         string               `json:"date"`
	MissingRates []string             `json:"missing_rates"`
	Warnings     []WarningResponse    `json:"warnings"`
}

// Refresh handles POST requests to run one live valuation pass
func (h *ValuationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	threshold, err := h.settingsService.WarningThreshold()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read warning threshold", err)
		return
	}

	result, err := h.valuationService.Refresh(threshold)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Valuation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, valuationResponse(result))
}

// Valuation handles GET requests for the most recent valuation result
func (h *ValuationHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	result, ok := h.valuationService.LastResult()
	if !ok {
		respondError(w, http.StatusNotFound, "No valuation has run yet", nil)
		return
	}
	respondJSON(w, http.StatusOK, valuationResponse(result))
}

func valuationResponse(result service.ValuationResult) ValuationResponse {
	response := ValuationResponse{
		Rows:         make([]HoldingRowResponse, len(result.Rows)),
		Balance:      result.Balance.Total,
		IsPartial:    result.Balance.IsPartial,
		Date:         result.Balance.Date.Format("2006-01-02"),
		MissingRates: result.MissingRates,
		Warnings:     make([]WarningResponse, len(result.Warnings)),
	}
	for i, row := range result.Rows {
		response.Rows[i] = HoldingRowResponse{
			InstrumentID:  row.InstrumentID,
			Name:          row.Name,
			Country:       row.Country,
			Updated:       row.Updated.Format(time.RFC3339),
			PERatio:       row.PERatio,
			ChangePercent: row.ChangePercent,
			Price:         row.Price,
			Quantity:      row.Quantity,
			Total:         row.Total,
			Currency:      row.Currency,
			Converted:     row.Converted,
		}
	}
	for i, warning := range result.Warnings {
		response.Warnings[i] = WarningResponse{
			Name:          warning.Name,
			ChangePercent: warning.ChangePercent,
		}
	}
	return response
}

// PricePointResponse represents one daily closing price
type PricePointResponse struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// InstrumentDetailResponse represents one instrument's full record
type InstrumentDetailResponse struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Currency      string               `json:"currency"`
	Country       string               `json:"country"`
	Sector        string               `json:"sector"`
	LastPrice     float64              `json:"last_price"`
	ChangePercent float64              `json:"change_percent"`
	LastUpdated   string               `json:"last_updated"`
	PERatio       *float64             `json:"pe_ratio"`
	Volatility    *float64             `json:"volatility"`
	DirectYield   *float64             `json:"direct_yield"`
	PriceHistory  []PricePointResponse `json:"price_history"`
}

// Instrument handles GET requests for one instrument's detail record,
// including key ratios and the daily price history.
func (h *ValuationHandler) Instrument(w http.ResponseWriter, r *http.Request) {
	instrumentID, ok := parseInstrumentID(w, r)
	if !ok {
		return
	}

	instrument, err := h.market.GetInstrument(instrumentID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch instrument", err)
		return
	}

	history, err := h.market.GetPriceHistory(instrumentID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to fetch price history", err)
		return
	}

	response := InstrumentDetailResponse{
		ID:            instrument.ID,
		Name:          instrument.Name,
		Currency:      instrument.Currency,
		Country:       instrument.Country,
		Sector:        instrument.Sector,
		LastPrice:     instrument.LastPrice,
		ChangePercent: instrument.ChangePercent,
		LastUpdated:   instrument.LastUpdated.Format(time.RFC3339),
		PERatio:       instrument.PERatio,
		Volatility:    instrument.Volatility,
		DirectYield:   instrument.DirectYield,
		PriceHistory:  make([]PricePointResponse, len(history)),
	}
	for i, point := range history {
		response.PriceHistory[i] = PricePointResponse{
			Date:  point.Date.Format("2006-01-02"),
			Price: point.Price,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// DividendEntryResponse represents one upcoming or past dividend payout
type DividendEntryResponse struct {
	Instrument     string  `json:"instrument"`
	ExDate         string  `json:"ex_date"`
	AmountPerShare float64 `json:"amount_per_share"`
	Currency       string  `json:"currency"`
}

// Dividends handles GET requests for the dividend calendar, flattened from
// the instrument records of the most recent valuation pass.
func (h *ValuationHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	instruments := h.valuationService.CurrentInstruments()

	calendar := []DividendEntryResponse{}
	for _, instrument := range instruments {
		for _, dividend := range instrument.Dividends {
			calendar = append(calendar, DividendEntryResponse{
				Instrument:     instrument.Name,
				ExDate:         dividend.ExDate.Format("2006-01-02"),
				AmountPerShare: dividend.AmountPerShare,
				Currency:       instrument.Currency,
			})
		}
	}
	sort.Slice(calendar, func(i, j int) bool {
		if calendar[i].ExDate != calendar[j].ExDate {
			return calendar[i].ExDate < calendar[j].ExDate
		}
		return calendar[i].Instrument < calendar[j].Instrument
	})

	respondJSON(w, http.StatusOK, calendar)
}
