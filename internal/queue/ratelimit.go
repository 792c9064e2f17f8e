package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/infra/metrics"
	"telegram-yt-summarizer/internal/infra/store"
)

// RateLimiter is a per-user sliding-window admission check. Events are
// recorded only for allowed requests; a denied request leaves the window
// untouched.
type RateLimiter struct {
	store  store.Store
	max    int
	window time.Duration
	log    *zerolog.Logger
}

func NewRateLimiter(st store.Store, maxRequests int, window time.Duration, logger *zerolog.Logger) *RateLimiter {
	rlLog := logger.With().Str("component", "RateLimiter").Logger()
	return &RateLimiter{
		store:  st,
		max:    maxRequests,
		window: window,
		log:    &rlLog,
	}
}

// Allow prunes the user's window, counts what remains, and records a new
// event when under the limit. On backend errors it fails open: availability
// wins over strict enforcement.
func (r *RateLimiter) Allow(ctx context.Context, userID int64) bool {
	now := time.Now()
	key := rateLimitKey(userID)

	count, err := r.store.CountWindow(ctx, key, now.Add(-r.window), now)
	if err != nil {
		r.log.Warn().Err(err).Int64("user_id", userID).Msg("rate limit check failed, allowing request")
		metrics.IncRateLimit("fail_open")
		return true
	}
	if count >= int64(r.max) {
		metrics.IncRateLimit("denied")
		return false
	}
	if err := r.store.RecordEvent(ctx, key, now, r.window); err != nil {
		r.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to record rate limit event")
	}
	metrics.IncRateLimit("allowed")
	return true
}

func rateLimitKey(userID int64) string {
	return fmt.Sprintf("yt_summarizer:rate_limit:%d", userID)
}
