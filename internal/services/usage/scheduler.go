package usage

import (
	"context"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// RetentionScheduler periodically deletes records older than the retention window
type RetentionScheduler struct {
	usageService *Service
	retention    time.Duration
	interval     time.Duration
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewRetentionScheduler(usageService *Service, retention, interval time.Duration) *RetentionScheduler {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	return &RetentionScheduler{
		usageService: usageService,
		retention:    retention,
		interval:     interval,
		stopChan:     make(chan struct{}),
	}
}

// Start sweeps once immediately and then on every tick until stopped
func (s *RetentionScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	fiberlog.Infof("Retention scheduler started, keeping %s of records, running every %s", s.retention, s.interval)
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			fiberlog.Info("Retention scheduler stopped")
			return
		case <-ctx.Done():
			fiberlog.Info("Retention scheduler stopped due to context cancellation")
			return
		}
	}
}

func (s *RetentionScheduler) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.usageService.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		fiberlog.Errorf("Error deleting expired operation records: %v", err)
		return
	}
	if deleted > 0 {
		fiberlog.Infof("Deleted %d operation records older than %s", deleted, cutoff.Format(time.RFC3339))
	}
}

func (s *RetentionScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}
