// Package scheduler fires the daily draw at a fixed UTC wall-clock time. A
// plain timer goroutine is enough here: there is exactly one job, and the
// draw engine itself is idempotent per date, so an extra or missed firing
// can never double-pick a winner.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is the work the scheduler fires once per day.
type Job func(ctx context.Context, drawDate string)

// Scheduler fires a job at the same UTC time every day.
type Scheduler struct {
	hour   int
	minute int
	job    Job
	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	nextRun time.Time
}

// New creates a Scheduler that fires at hour:minute UTC daily.
func New(hour, minute int, job Job, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		hour:   hour,
		minute: minute,
		job:    job,
		logger: logger,
	}
}

// Start launches the timer goroutine. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	s.nextRun = s.nextAfter(time.Now().UTC())

	go s.loop(ctx)
	s.logger.Info("draw scheduler started", "nextRun", s.nextRun)
}

// Stop halts the timer goroutine. A job already in flight finishes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.logger.Info("draw scheduler stopped")
}

// Status reports whether the scheduler runs and when it fires next.
func (s *Scheduler) Status() (running bool, nextRun time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.nextRun
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		s.mu.Lock()
		next := s.nextRun
		s.mu.Unlock()

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// The draw covers the day that just ended at the firing time, so a
		// midnight schedule draws over the full previous calendar day.
		drawDate := next.AddDate(0, 0, -1).Format("2006-01-02")
		s.logger.Info("scheduled draw firing", "drawDate", drawDate)
		s.job(ctx, drawDate)

		s.mu.Lock()
		s.nextRun = s.nextAfter(time.Now().UTC())
		s.mu.Unlock()
	}
}

// nextAfter returns the next hour:minute UTC strictly after now.
func (s *Scheduler) nextAfter(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
