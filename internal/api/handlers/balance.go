package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/avanzatt/portfolio-tracker-backend/internal/chart"
	"github.com/avanzatt/portfolio-tracker-backend/internal/model"
	"github.com/avanzatt/portfolio-tracker-backend/internal/service"
)

// BalanceHandler handles balance-series HTTP requests
type BalanceHandler struct {
	historyService  *service.HistoryService
	settingsService *service.SettingsService
	baseCurrency    string
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(
	historyService *service.HistoryService,
	settingsService *service.SettingsService,
	baseCurrency string,
) *BalanceHandler {
	return &BalanceHandler{
		historyService:  historyService,
		settingsService: settingsService,
		baseCurrency:    baseCurrency,
	}
}

// BalanceRecordResponse represents one day's stored balance
type BalanceRecordResponse struct {
	Date      string `json:"date"`
	Total     string `json:"total"`
	IsPartial bool   `json:"is_partial"`
}

// History handles GET requests for the stored balance series. An optional
// since=YYYY-MM-DD query parameter limits the range.
func (h *BalanceHandler) History(w http.ResponseWriter, r *http.Request) {
	var series []model.BalanceRecord
	var err error

	if since := r.URL.Query().Get("since"); since != "" {
		startDate, parseErr := time.Parse("2006-01-02", since)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "Invalid since date", parseErr)
			return
		}
		series, err = h.historyService.BalanceSince(startDate)
	} else {
		series, err = h.historyService.BalanceSeries()
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve balance history", err)
		return
	}

	response := make([]BalanceRecordResponse, len(series))
	for i, record := range series {
		response[i] = BalanceRecordResponse{
			Date:      record.Date.Format("2006-01-02"),
			Total:     record.Total,
			IsPartial: record.IsPartial,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// ReconstructResponse represents the outcome of a reconstruction run
type ReconstructResponse struct {
	Rebuilt bool   `json:"rebuilt"`
	Message string `json:"message,omitempty"`
}

// Reconstruct handles POST requests to rebuild the balance series from the
// holdings snapshot log.
func (h *BalanceHandler) Reconstruct(w http.ResponseWriter, r *http.Request) {
	threshold, err := h.settingsService.WarningThreshold()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read warning threshold", err)
		return
	}

	rebuilt, err := h.historyService.RebuildHistory(threshold)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Reconstruction failed", err)
		return
	}

	response := ReconstructResponse{Rebuilt: rebuilt}
	if !rebuilt {
		response.Message = "not enough snapshot history to reconstruct"
	}
	respondJSON(w, http.StatusOK, response)
}

// Chart handles GET requests for a PNG line chart of the balance series.
func (h *BalanceHandler) Chart(w http.ResponseWriter, r *http.Request) {
	series, err := h.historyService.BalanceSeries()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve balance history", err)
		return
	}

	png, err := chart.RenderBalance(series, h.baseCurrency)
	if err != nil {
		respondError(w, http.StatusNotFound, "No chartable balance history", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("Failed to write chart response: %v", err)
	}
}
