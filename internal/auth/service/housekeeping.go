package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
)

// HousekeepingService periodically purges expired entries from session
// stores that cannot expire keys themselves. Redis never needs it.
type HousekeepingService struct {
	Sweeper  sessions.Sweeper
	Logger   *slog.Logger
	Interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. If interval is 0 or
// negative, it defaults to 1 minute.
func NewHousekeepingService(sweeper sessions.Sweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Sweeper:  sweeper,
		Logger:   logger,
		Interval: interval,
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
// A stopped worker may be started again.
func (s *HousekeepingService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(s.stopCh, s.doneCh)
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished. It is a no-op if
// the worker is not running.
func (s *HousekeepingService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(context.Background())
		case <-stopCh:
			return
		}
	}
}

// SweepOnce runs a single sweep and returns how many entries were removed.
func (s *HousekeepingService) SweepOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.Interval)
	defer cancel()

	n, err := s.Sweeper.Sweep(ctx)
	if err != nil {
		s.Logger.Error("session sweep failed", "error", err)
		return 0
	}
	s.Logger.Debug("session sweep completed", "removed", n)
	return n
}
