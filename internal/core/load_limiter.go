package core

// load_limiter.go caps how many source loads run at once.
//
// Every snapshot build holds one slot while it reads its source, whether it
// was triggered by a page view, a reload request, LoadAll, or the reload
// scheduler. When all slots are taken a load waits up to maxWait and then
// fails with ErrTooManyLoads. WaitForDrain lets shutdown wait for in-flight
// loads.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyLoads is returned when no load slot frees up within the wait
// timeout.
var ErrTooManyLoads = errors.New("too many concurrent loads, please try again later")

// DefaultMaxConcurrentLoads is the default limit for parallel source loads.
const DefaultMaxConcurrentLoads = 4

// DefaultLoadWait is how long a load waits for a slot before giving up.
const DefaultLoadWait = 30 * time.Second

// LoadLimiter is a counting semaphore around source loads.
type LoadLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLoadLimiter creates a limiter that allows at most maxConcurrent
// simultaneous loads. Non-positive arguments fall back to the defaults.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultLoadWait
	}

	return &LoadLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a load slot, waiting up to maxWait.
// The caller must call Release when the load finishes.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyLoads
	}
}

// TryAcquire takes a slot without blocking and reports whether it got one.
func (l *LoadLimiter) TryAcquire() bool {
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

// Release returns a slot taken by Acquire or TryAcquire.
func (l *LoadLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of loads holding a slot.
func (l *LoadLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *LoadLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *LoadLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no load holds a slot or ctx is done.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// LoadLimiterStatus is a point-in-time view of a LoadLimiter.
type LoadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the limiter's current counts.
func (l *LoadLimiter) Status() LoadLimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LoadLimiterStatus{
		Active:        active,
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
