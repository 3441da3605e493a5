package service

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the automatic valuation refresh on a fixed interval. The
// interval can be changed at runtime; setting it to zero stops the schedule.
type Scheduler struct {
	valuation *ValuationService
	settings  *SettingsService

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	minutes int
}

// NewScheduler creates a new Scheduler with the provided dependencies.
func NewScheduler(valuation *ValuationService, settings *SettingsService) *Scheduler {
	return &Scheduler{
		valuation: valuation,
		settings:  settings,
		cron:      cron.New(),
	}
}

// Start begins running the schedule with the currently stored interval.
func (s *Scheduler) Start() error {
	interval, err := s.settings.RefreshInterval()
	if err != nil {
		return err
	}

	if err := s.SetInterval(interval); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule. Running jobs finish before Stop returns.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// SetInterval reschedules the refresh to run every given number of minutes.
// Zero removes the schedule entirely.
func (s *Scheduler) SetInterval(minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}
	s.minutes = minutes

	if minutes == 0 {
		log.Printf("automatic refresh off")
		return nil
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", minutes), s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	s.entryID = entryID

	log.Printf("automatic refresh every %d minutes", minutes)
	return nil
}

// Interval returns the currently scheduled interval in minutes.
func (s *Scheduler) Interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minutes
}

func (s *Scheduler) runRefresh() {
	threshold, err := s.settings.WarningThreshold()
	if err != nil {
		log.Printf("scheduled refresh skipped: %v", err)
		return
	}
	if _, err := s.valuation.Refresh(threshold); err != nil {
		log.Printf("scheduled refresh failed: %v", err)
	}
}
