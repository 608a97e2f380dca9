// Package ratelimit throttles requests sent to the ladder backend.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter applies a global rate plus an optional per-command rate.
type Limiter struct {
	mu         sync.RWMutex
	limiter    *rate.Limiter
	perCommand map[string]*rate.Limiter
}

// NewLimiter creates a limiter. A non-positive rate disables throttling.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		limiter:    newRateLimiter(requestsPerSecond, burst),
		perCommand: make(map[string]*rate.Limiter),
	}
}

func newRateLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(limit, burst)
}

// Wait blocks until a request is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// WaitCommand applies the global limit, then the command's own limit if one
// was configured with SetCommandRate.
func (l *Limiter) WaitCommand(ctx context.Context, command string) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	l.mu.RLock()
	cmdLimiter, exists := l.perCommand[command]
	l.mu.RUnlock()

	if !exists {
		return nil
	}
	return cmdLimiter.Wait(ctx)
}

// SetCommandRate sets a dedicated rate for one command. A non-positive rate
// removes it.
func (l *Limiter) SetCommandRate(command string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if requestsPerSecond <= 0 {
		delete(l.perCommand, command)
		return
	}
	l.perCommand[command] = newRateLimiter(requestsPerSecond, burst)
}
