package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	warningInterval   = 30 * time.Second
	cleanupInterval   = 10 * time.Minute
	inactiveThreshold = time.Hour
)

// senderLimit tracks the bucket of a single sender
type senderLimit struct {
	tokens        float64
	lastRefill    time.Time
	warningsSent  int
	lastWarningAt time.Time
	mu            sync.Mutex
}

// Decision is the outcome of a single Allow call
type Decision struct {
	Allowed bool
	// Warn is set when a throttled sender should be told; at most once per warning interval
	Warn bool
	// Warnings counts consecutive warnings since the last allowed request
	Warnings int
}

// Limiter implements token bucket rate limiting per sender key
type Limiter struct {
	limits     map[string]*senderLimit
	mu         sync.Mutex
	maxTokens  float64 // bucket capacity
	refillRate float64 // tokens added per second
	now        func() time.Time
}

// New creates a limiter refilling perMinute tokens a minute into a bucket of size burst
func New(perMinute, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limits:     make(map[string]*senderLimit),
		maxTokens:  float64(burst),
		refillRate: float64(perMinute) / 60.0,
		now:        time.Now,
	}
}

// Allow takes a token from the sender's bucket
func (rl *Limiter) Allow(key string) Decision {
	now := rl.now()

	rl.mu.Lock()
	limit, exists := rl.limits[key]
	if !exists {
		limit = &senderLimit{
			tokens:     rl.maxTokens,
			lastRefill: now,
		}
		rl.limits[key] = limit
	}
	rl.mu.Unlock()

	limit.mu.Lock()
	defer limit.mu.Unlock()

	elapsed := now.Sub(limit.lastRefill).Seconds()
	limit.tokens = min(limit.tokens+elapsed*rl.refillRate, rl.maxTokens)
	limit.lastRefill = now

	if limit.tokens >= 1.0 {
		limit.tokens -= 1.0
		limit.warningsSent = 0
		return Decision{Allowed: true}
	}

	d := Decision{Warnings: limit.warningsSent}
	if now.Sub(limit.lastWarningAt) > warningInterval {
		limit.warningsSent++
		limit.lastWarningAt = now
		d.Warn = true
		d.Warnings = limit.warningsSent
	}
	return d
}

// Notice is the reply sent to a throttled sender
func Notice(warnings int) string {
	switch {
	case warnings <= 1:
		return "⚠️ Too many questions. Please wait a moment."
	case warnings == 2:
		return "⚠️ Rate limit exceeded. Please wait about 30 seconds before asking again."
	default:
		return "🛑 You are sending questions too often. Please wait a minute."
	}
}

// Run drops senders that have been inactive for an hour until ctx is done
func (rl *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *Limiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, limit := range rl.limits {
		limit.mu.Lock()
		if now.Sub(limit.lastRefill) > inactiveThreshold {
			delete(rl.limits, key)
		}
		limit.mu.Unlock()
	}
}
