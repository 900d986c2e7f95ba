package core

// limiter.go bounds how many analyses run at once.
//
// Every page view re-parses the session's file and recomputes statistics and
// charts, so CPU use scales with concurrent requests. The limiter is a
// semaphore: when all slots are occupied, new requests wait up to maxWait
// before failing with ErrTooManyAnalyses.
//
// WaitForDrain blocks until all active analyses complete, for graceful
// shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyAnalyses is returned when all analysis slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyAnalyses = errors.New("too many concurrent analyses, please try again later")

// DefaultMaxConcurrentAnalyses is the default limit for parallel analyses.
const DefaultMaxConcurrentAnalyses = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 20 * time.Second

// AnalysisLimiter controls concurrent analysis using a semaphore.
type AnalysisLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewAnalysisLimiter creates a limiter that allows at most maxConcurrent
// simultaneous analyses. Requests that cannot acquire a slot within maxWait
// receive ErrTooManyAnalyses.
func NewAnalysisLimiter(maxConcurrent int, maxWait time.Duration) *AnalysisLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentAnalyses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &AnalysisLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire attempts to acquire a slot.
// Returns nil on success, ErrTooManyAnalyses if the wait times out.
// The caller MUST call Release() when done (use defer).
func (l *AnalysisLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Distinguish caller cancellation from our own timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyAnalyses
	}
}

// TryAcquire attempts to acquire a slot without blocking.
func (l *AnalysisLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *AnalysisLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of currently running analyses.
func (l *AnalysisLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum allowed concurrent analyses.
func (l *AnalysisLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *AnalysisLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until all active analyses complete or ctx is cancelled.
func (l *AnalysisLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *AnalysisLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
