package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"campground-scraper/server"
	"campground-scraper/utils"
)

// Scheduler triggers a scraper run once every 24 hours through the same
// single-flight controller the HTTP surface uses, so a scheduled run is
// skipped while a manual one is still active.
type Scheduler struct {
	cron   *cron.Cron
	ctrl   *server.Controller
	logger *utils.Logger
}

// New creates a Scheduler bound to the given controller.
func New(ctrl *server.Controller, logger *utils.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		ctrl:   ctrl,
		logger: logger,
	}
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@every 24h", func() {
		s.logger.Info("[scheduler] --------- Scheduled Scraper Started ---------")
		if !s.ctrl.Start() {
			s.logger.Warn("[scheduler] Previous run still active, skipping this cycle")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: register job: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop. A run already in flight is left alone.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
