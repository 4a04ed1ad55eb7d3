package services

import (
	"github.com/robfig/cron/v3"
	"github.com/tasktrace/tasktrace/internal/config"
	"github.com/tasktrace/tasktrace/pkg/logger"
	"gorm.io/gorm"
)

// CleanupScheduler runs periodic housekeeping: purging expired invitation
// codes and trimming the activity trail to its retention window.
type CleanupScheduler struct {
	cron        *cron.Cron
	invitations *InvitationService
	activity    *ActivityService
	retention   int
}

func NewCleanupScheduler(db *gorm.DB, cfg *config.ActivityConfig) *CleanupScheduler {
	return &CleanupScheduler{
		cron:        cron.New(),
		invitations: NewInvitationService(db),
		activity:    NewActivityService(db),
		retention:   cfg.RetentionDays,
	}
}

// Start registers the nightly jobs and starts the scheduler.
func (s *CleanupScheduler) Start() error {
	if _, err := s.cron.AddFunc("30 3 * * *", s.runInvitationPurge); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 4 * * *", s.runActivityCleanup); err != nil {
		return err
	}
	s.cron.Start()
	logger.Infof("[Cleanup] Scheduler started")
	return nil
}

func (s *CleanupScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logger.Infof("[Cleanup] Scheduler stopped")
	}
}

func (s *CleanupScheduler) runInvitationPurge() {
	removed, err := s.invitations.PurgeExpired(0)
	if err != nil {
		logger.Errorf("[Cleanup] Invitation purge failed: %v", err)
		return
	}
	if removed > 0 {
		logger.Infof("[Cleanup] Removed %d expired invitation codes", removed)
	}
}

func (s *CleanupScheduler) runActivityCleanup() {
	removed, err := s.activity.Cleanup(s.retention)
	if err != nil {
		logger.Errorf("[Cleanup] Activity cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		logger.Infof("[Cleanup] Removed %d activity entries older than %d days", removed, s.retention)
	}
}
