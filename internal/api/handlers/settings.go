package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/service"
)

// SettingsHandler handles runtime-settings HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
	scheduler       *service.Scheduler
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService, scheduler *service.Scheduler) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		scheduler:       scheduler,
	}
}

// SettingsResponse represents the current runtime settings
type SettingsResponse struct {
	WarningThreshold       float64 `json:"warning_threshold"`
	RefreshIntervalMinutes int     `json:"refresh_interval_minutes"`
}

// Settings handles GET requests for the current runtime settings
func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	threshold, err := h.settingsService.WarningThreshold()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read settings", err)
		return
	}
	interval, err := h.settingsService.RefreshInterval()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read settings", err)
		return
	}

	respondJSON(w, http.StatusOK, SettingsResponse{
		WarningThreshold:       threshold,
		RefreshIntervalMinutes: interval,
	})
}

// UpdateSettingsRequest represents the PUT settings request body. Absent
// fields keep their current value.
type UpdateSettingsRequest struct {
	WarningThreshold       *float64 `json:"warning_threshold"`
	RefreshIntervalMinutes *int     `json:"refresh_interval_minutes"`
}

// UpdateSettings handles PUT requests to change runtime settings. A rejected
// value leaves the stored setting unchanged.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var request UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if request.WarningThreshold != nil {
		if err := h.settingsService.SetWarningThreshold(*request.WarningThreshold); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to store warning threshold", err)
			return
		}
	}

	if request.RefreshIntervalMinutes != nil {
		if err := h.settingsService.SetRefreshInterval(*request.RefreshIntervalMinutes); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, apperrors.ErrInvalidInterval) {
				status = http.StatusBadRequest
			}
			respondError(w, status, "Failed to store refresh interval", err)
			return
		}
		if err := h.scheduler.SetInterval(*request.RefreshIntervalMinutes); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to reschedule refresh", err)
			return
		}
	}

	h.Settings(w, r)
}
