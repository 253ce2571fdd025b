package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Service identifies a Google API for rate limiting and metrics.
type Service string

const (
	ServiceCalendar Service = "calendar"
	ServiceGmail    Service = "gmail"
	ServiceTasks    Service = "tasks"
	ServiceKeep     Service = "keep"
)

// RateLimitConfig holds the token bucket settings of one service.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimits stay well under Google's per-user quotas.
var DefaultRateLimits = map[Service]RateLimitConfig{
	ServiceGmail:    {RequestsPerSecond: 2.0, BurstSize: 5},
	ServiceCalendar: {RequestsPerSecond: 5.0, BurstSize: 10},
	ServiceTasks:    {RequestsPerSecond: 5.0, BurstSize: 10},
	ServiceKeep:     {RequestsPerSecond: 2.0, BurstSize: 5},
}

// defaultBackoff applies when a 429 carries no Retry-After hint.
const defaultBackoff = 30 * time.Second

// RateLimiter is a token bucket with an additional backoff window that opens
// after the API answers 429.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	service Service
}

// NewRateLimiter creates a limiter using DefaultRateLimits for service.
func NewRateLimiter(service Service) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}
	}
	l := NewRateLimiterWithConfig(cfg)
	l.service = service
	return l
}

// NewRateLimiterWithConfig creates a limiter with explicit settings.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Service returns the service this limiter guards.
func (r *RateLimiter) Service() Service {
	return r.service
}

// Wait blocks until a request may be sent, honouring any backoff window.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window. A non-positive retryAfter
// uses the default.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(retryAfter)
}

// Allow reports whether a request could be sent right now.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// Limiters holds one RateLimiter per service.
type Limiters struct {
	mu sync.Mutex
	m  map[Service]*RateLimiter
}

// NewLimiters returns an empty set; limiters are created on first use.
func NewLimiters() *Limiters {
	return &Limiters{m: make(map[Service]*RateLimiter)}
}

// For returns the limiter of service, creating it when needed.
func (l *Limiters) For(service Service) *RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	rl, ok := l.m[service]
	if !ok {
		rl = NewRateLimiter(service)
		l.m[service] = rl
	}
	return rl
}
