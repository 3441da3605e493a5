package service

import (
	"fmt"
	"strconv"

	"github.com/avanzatt/portfolio-tracker-backend/internal/apperrors"
	"github.com/avanzatt/portfolio-tracker-backend/internal/repository"
)

// Setting keys stored in the setting table.
const (
	SettingWarningThreshold = "warning_threshold"
	SettingRefreshInterval  = "refresh_interval"
)

// SettingsService reads and writes runtime-tunable settings, falling back to
// the configured defaults when a key has never been set.
type SettingsService struct {
	settingsRepo     *repository.SettingsRepository
	defaultThreshold float64
	defaultInterval  int
}

// NewSettingsService creates a new SettingsService with the provided dependencies.
func NewSettingsService(settingsRepo *repository.SettingsRepository, defaultThreshold float64, defaultInterval int) *SettingsService {
	return &SettingsService{
		settingsRepo:     settingsRepo,
		defaultThreshold: defaultThreshold,
		defaultInterval:  defaultInterval,
	}
}

// WarningThreshold returns the change-percent level below which a holding is
// flagged in the valuation output.
func (s *SettingsService) WarningThreshold() (float64, error) {
	value, found, err := s.settingsRepo.Get(SettingWarningThreshold)
	if err != nil {
		return 0, err
	}
	if !found {
		return s.defaultThreshold, nil
	}

	threshold, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("stored warning threshold %q is not a number: %w", value, err)
	}
	return threshold, nil
}

// SetWarningThreshold stores a new warning threshold. Any numeric value is
// accepted; a positive level simply flags every holding below it.
func (s *SettingsService) SetWarningThreshold(threshold float64) error {
	return s.settingsRepo.Set(SettingWarningThreshold, strconv.FormatFloat(threshold, 'f', -1, 64))
}

// RefreshInterval returns the automatic refresh interval in minutes. Zero
// means automatic refresh is off.
func (s *SettingsService) RefreshInterval() (int, error) {
	value, found, err := s.settingsRepo.Get(SettingRefreshInterval)
	if err != nil {
		return 0, err
	}
	if !found {
		return s.defaultInterval, nil
	}

	interval, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("stored refresh interval %q is not a number: %w", value, err)
	}
	return interval, nil
}

// SetRefreshInterval stores a new refresh interval in minutes. Zero turns
// automatic refresh off; negative values are rejected.
func (s *SettingsService) SetRefreshInterval(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidInterval, minutes)
	}
	return s.settingsRepo.Set(SettingRefreshInterval, strconv.Itoa(minutes))
}
