// Package ratelimit paces outbound catalog requests using a token bucket.
// The catalog service rate-limits aggressively, so every live query goes
// through a shared Pacer.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between outbound requests.
// A zero interval disables pacing entirely, which tests rely on.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer that allows one request per interval with the
// given burst. interval <= 0 yields an unlimited pacer.
func NewPacer(interval time.Duration, burst int) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	if burst < 1 {
		burst = 1
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), burst)}
}

// Wait blocks until a request is allowed or the context is canceled.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now without blocking.
func (p *Pacer) Allow() bool {
	return p.limiter.Allow()
}
