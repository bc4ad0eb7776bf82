package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages the periodic sweeps: hold expiration and departure
// reminders. Sweeps are idempotent, so an overlap between a slow run and the
// next trigger is harmless.
type CronService struct {
	cron      *cron.Cron
	expiry    *ExpirationService
	reminders *ReminderService
	logger    *logrus.Logger

	expiryEvery   time.Duration
	reminderEvery time.Duration
}

// NewCronService creates a new CronService
func NewCronService(
	expiry *ExpirationService,
	reminders *ReminderService,
	logger *logrus.Logger,
	expiryEvery, reminderEvery time.Duration,
) *CronService {
	return &CronService{
		cron:          cron.New(),
		expiry:        expiry,
		reminders:     reminders,
		logger:        logger,
		expiryEvery:   expiryEvery,
		reminderEvery: reminderEvery,
	}
}

// Start schedules both sweeps and runs each once immediately so a restart
// never leaves stale holds sitting until the first tick.
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.expiryEvery), s.expiry.Sweep); err != nil {
		return fmt.Errorf("failed to schedule expiration sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.reminderEvery), s.reminders.Sweep); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	s.expiry.Sweep()
	s.reminders.Sweep()

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"expiration_every": s.expiryEvery.String(),
		"reminder_every":   s.reminderEvery.String(),
	}).Info("Sweep scheduler started")
	return nil
}

// Stop stops the scheduler and waits for any running sweep to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Sweep scheduler stopped")
}
