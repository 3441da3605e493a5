package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/service"
)

// HoldingsHandler handles holdings and currency-pair configuration requests
type HoldingsHandler struct {
	holdingsService *service.HoldingsService
}

// NewHoldingsHandler creates a new HoldingsHandler
func NewHoldingsHandler(holdingsService *service.HoldingsService) *HoldingsHandler {
	return &HoldingsHandler{
		holdingsService: holdingsService,
	}
}

// HoldingResponse represents one configured holding
type HoldingResponse struct {
	InstrumentID int64 `json:"instrument_id"`
	Quantity     int64 `json:"quantity"`
}

// Holdings handles GET requests for the configured holdings
func (h *HoldingsHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdingsService.GetHoldings()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve holdings", err)
		return
	}

	response := make([]HoldingResponse, len(holdings))
	for i, holding := range holdings {
		response[i] = HoldingResponse{
			InstrumentID: holding.InstrumentID,
			Quantity:     holding.Quantity,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// SetHoldingRequest represents the PUT holding request body
type SetHoldingRequest struct {
	Quantity int64 `json:"quantity"`
}

// SetHolding handles PUT requests to add or update one holding
func (h *HoldingsHandler) SetHolding(w http.ResponseWriter, r *http.Request) {
	instrumentID, ok := parseInstrumentID(w, r)
	if !ok {
		return
	}

	var request SetHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.holdingsService.SetHolding(instrumentID, request.Quantity); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrInvalidQuantity) || errors.Is(err, apperrors.ErrInvalidInstrumentID) {
			status = http.StatusBadRequest
		}
		respondError(w, status, "Failed to store holding", err)
		return
	}

	respondJSON(w, http.StatusOK, HoldingResponse{
		InstrumentID: instrumentID,
		Quantity:     request.Quantity,
	})
}

// DeleteHolding handles DELETE requests to remove one holding
func (h *HoldingsHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	instrumentID, ok := parseInstrumentID(w, r)
	if !ok {
		return
	}

	if err := h.holdingsService.RemoveHolding(instrumentID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrHoldingNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, "Failed to delete holding", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CurrencyPairResponse represents one configured rate quote source
type CurrencyPairResponse struct {
	InstrumentID int64  `json:"instrument_id"`
	Name         string `json:"name"`
}

// CurrencyPairs handles GET requests for the configured rate quote sources
func (h *HoldingsHandler) CurrencyPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.holdingsService.GetCurrencyPairs()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve currency pairs", err)
		return
	}

	response := make([]CurrencyPairResponse, len(pairs))
	for i, pair := range pairs {
		response[i] = CurrencyPairResponse{
			InstrumentID: pair.InstrumentID,
			Name:         pair.Name,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// SetCurrencyPairRequest represents the PUT currency-pair request body
type SetCurrencyPairRequest struct {
	Name string `json:"name"`
}

// SetCurrencyPair handles PUT requests to add or update one rate quote source
func (h *HoldingsHandler) SetCurrencyPair(w http.ResponseWriter, r *http.Request) {
	instrumentID, ok := parseInstrumentID(w, r)
	if !ok {
		return
	}

	var request SetCurrencyPairRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if request.Name == "" {
		respondError(w, http.StatusBadRequest, "Currency pair name is required", nil)
		return
	}

	if err := h.holdingsService.SetCurrencyPair(instrumentID, request.Name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrInvalidInstrumentID) {
			status = http.StatusBadRequest
		}
		respondError(w, status, "Failed to store currency pair", err)
		return
	}

	respondJSON(w, http.StatusOK, CurrencyPairResponse{
		InstrumentID: instrumentID,
		Name:         request.Name,
	})
}

// DeleteCurrencyPair handles DELETE requests to remove one rate quote source
func (h *HoldingsHandler) DeleteCurrencyPair(w http.ResponseWriter, r *http.Request) {
	instrumentID, ok := parseInstrumentID(w, r)
	if !ok {
		return
	}

	if err := h.holdingsService.RemoveCurrencyPair(instrumentID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrCurrencyPairNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, "Failed to delete currency pair", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseInstrumentID reads the {id} URL parameter. On failure it writes the
// error response itself and returns false.
func parseInstrumentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	instrumentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid instrument id", err)
		return 0, false
	}
	return instrumentID, true
}
