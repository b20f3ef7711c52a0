package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Notifier pushes a digest to subscribers after a scheduled refresh.
// Optional; a nil notifier means refresh only.
type Notifier interface {
	SendDigest(text string) error
}

// Scheduler runs periodic snapshot refreshes on a cron schedule.
type Scheduler struct {
	service  *Service
	schedule string
	notifier Notifier
	cron     *cron.Cron
	logger   *zap.Logger
	mu       sync.Mutex
	running  bool
}

// NewScheduler creates a scheduler with a standard 5-field cron
// expression.
func NewScheduler(service *Service, schedule string, notifier Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		schedule: schedule,
		notifier: notifier,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		logger:   logger,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid scrape schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Scheduler started", zap.String("schedule", s.schedule))

	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	started := time.Now()

	snapshot, err := s.service.Refresh(ctx)
	if err != nil {
		s.logger.Error("Scheduled refresh failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled refresh complete",
		zap.Int("films", snapshot.TotalFilms()),
		zap.Duration("elapsed", time.Since(started)))

	if s.notifier == nil {
		return
	}

	text, err := s.service.Digest(ctx)
	if err != nil {
		s.logger.Error("Failed to build digest", zap.Error(err))
		return
	}
	if err := s.notifier.SendDigest(text); err != nil {
		s.logger.Error("Failed to send digest", zap.Error(err))
	}
}
