package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAnalysisLimiter_AcquireRelease(t *testing.T) {
	limiter := NewAnalysisLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if got := limiter.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestAnalysisLimiter_BlocksWhenFull(t *testing.T) {
	limiter := NewAnalysisLimiter(1, 100*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	elapsed := time.Since(start)

	if err != ErrTooManyAnalyses {
		t.Errorf("expected ErrTooManyAnalyses, got %v", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("timeout too fast: %v", elapsed)
	}
}

func TestAnalysisLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	const totalRequests = 10

	limiter := NewAnalysisLimiter(maxConcurrent, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			if current := limiter.ActiveCount(); current > maxObserved {
				maxObserved = current
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)
		}()
	}

	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("exceeded max concurrent: observed %d, max %d", maxObserved, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestAnalysisLimiter_TryAcquire(t *testing.T) {
	limiter := NewAnalysisLimiter(1, time.Second)

	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire() {
		t.Error("second TryAcquire should fail")
		limiter.Release()
	}

	limiter.Release()
	if !limiter.TryAcquire() {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestAnalysisLimiter_ContextCancellation(t *testing.T) {
	limiter := NewAnalysisLimiter(1, 5*time.Second)

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	cancelCtx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(cancelCtx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}
}

func TestAnalysisLimiter_WaitForDrain(t *testing.T) {
	limiter := NewAnalysisLimiter(2, time.Second)
	ctx := context.Background()

	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Fatalf("idle WaitForDrain returned error: %v", err)
	}

	_ = limiter.Acquire(ctx)

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- limiter.WaitForDrain(context.Background())
	}()

	select {
	case <-drainDone:
		t.Error("WaitForDrain returned too early")
	case <-time.After(50 * time.Millisecond):
	}

	limiter.Release()

	select {
	case err := <-drainDone:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after release")
	}
}

func TestAnalysisLimiter_StatusAndDefaults(t *testing.T) {
	limiter := NewAnalysisLimiter(3, time.Second)
	_ = limiter.Acquire(context.Background())

	status := limiter.Status()
	if status.Active != 1 || status.Available != 2 || status.MaxConcurrent != 3 {
		t.Errorf("Status = %+v, want {1 2 3}", status)
	}
	limiter.Release()

	if got := NewAnalysisLimiter(0, 0).MaxConcurrent(); got != DefaultMaxConcurrentAnalyses {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentAnalyses)
	}
}
