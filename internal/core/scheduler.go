package core

// scheduler.go runs background maintenance for the session store.
//
// The janitor sweeps sessions that have been idle longer than the TTL so that
// abandoned uploads do not hold memory until the next lookup. It is
// context-aware and stops when the context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = time.Minute

// StartSessionJanitor sweeps expired sessions every sweep interval until ctx
// is cancelled. It runs once immediately on start.
func (s *Service) StartSessionJanitor(ctx context.Context) {
	interval := s.sweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session janitor started", "interval", interval)

	s.sweepSessions(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case now := <-ticker.C:
			s.sweepSessions(now)
		}
	}
}

// sweepSessions performs one sweep and returns how many sessions it removed.
func (s *Service) sweepSessions(now time.Time) int {
	removed := s.sessions.Sweep(now)
	remaining := s.sessions.Len()

	s.metrics.SessionsExpired(removed)
	s.metrics.Sessions(remaining)

	if removed > 0 {
		slog.Info("expired sessions removed", "removed", removed, "remaining", remaining)
	}
	return removed
}
