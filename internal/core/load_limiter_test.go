package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLoadLimiter_AcquireRelease(t *testing.T) {
	limiter := NewLoadLimiter(2, time.Second)
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
	if got := limiter.Available(); got != 1 {
		t.Errorf("after Release, Available = %d, want 1", got)
	}

	limiter.Release()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestLoadLimiter_Defaults(t *testing.T) {
	limiter := NewLoadLimiter(0, 0)

	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentLoads {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentLoads)
	}
	if limiter.maxWait != DefaultLoadWait {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultLoadWait)
	}
}

func TestLoadLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewLoadLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyLoads) {
		t.Errorf("expected ErrTooManyLoads, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("gave up too early: %v", elapsed)
	}
}

func TestLoadLimiter_ContextCancellation(t *testing.T) {
	limiter := NewLoadLimiter(1, 5*time.Second)

	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after cancellation")
	}
}

func TestLoadLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewLoadLimiter(maxConcurrent, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			if n := limiter.ActiveCount(); n > maxObserved {
				maxObserved = n
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("observed %d concurrent loads, max %d", maxObserved, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
}

func TestLoadLimiter_TryAcquire(t *testing.T) {
	limiter := NewLoadLimiter(1, time.Second)

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

func TestLoadLimiter_WaitForDrain(t *testing.T) {
	limiter := NewLoadLimiter(2, time.Second)

	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain on idle limiter: %v", err)
	}

	limiter.Acquire(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- limiter.WaitForDrain(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned with a load active")
	case <-time.After(80 * time.Millisecond):
	}

	limiter.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after release")
	}
}

func TestLoadLimiter_WaitForDrain_ContextCancelled(t *testing.T) {
	limiter := NewLoadLimiter(1, time.Second)
	limiter.Acquire(context.Background())
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestLoadLimiter_Status(t *testing.T) {
	limiter := NewLoadLimiter(3, time.Second)
	limiter.Acquire(context.Background())
	defer limiter.Release()

	status := limiter.Status()
	if status.Active != 1 {
		t.Errorf("Active = %d, want 1", status.Active)
	}
	if status.Available != 2 {
		t.Errorf("Available = %d, want 2", status.Available)
	}
	if status.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", status.MaxConcurrent)
	}
}
