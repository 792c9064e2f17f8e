package store

import (
	"context"
	"time"

	"telegram-yt-summarizer/internal/config"

	"github.com/rs/zerolog"
)

// Store abstracts the key-value backend the queue and rate limiter run on.
// The redis implementation is used when the server is reachable at startup;
// otherwise the process runs on the in-memory implementation for its whole
// lifetime. There is no automatic downgrade after a successful start: a redis
// outage mid-run surfaces as per-call errors on the operations callers depend
// on for correctness.
//
// "Nothing there" results are sentinels, not errors from the backend:
// PopJob returns domain.ErrEmpty on timeout, GetHashField returns
// domain.ErrNotFound for a missing field.
type Store interface {
	// FIFO list. PushJob prepends; PopJob blocks up to timeout and takes the
	// oldest element.
	PushJob(ctx context.Context, queueKey string, payload []byte) error
	PopJob(ctx context.Context, queueKey string, timeout time.Duration) ([]byte, error)
	ListLen(ctx context.Context, queueKey string) (int64, error)

	// Hash table with an optional TTL on the whole hash (leak guard).
	SetHashField(ctx context.Context, hashKey, field string, value []byte, ttl time.Duration) error
	GetHashField(ctx context.Context, hashKey, field string) ([]byte, error)
	DeleteHashField(ctx context.Context, hashKey string, fields ...string) error
	ListHashFields(ctx context.Context, hashKey string) (map[string][]byte, error)
	HashLen(ctx context.Context, hashKey string) (int64, error)

	// Sliding-window primitives for the rate limiter. CountWindow prunes
	// events older than windowStart and returns the remaining count;
	// RecordEvent adds one event at now. Equal timestamps all count.
	CountWindow(ctx context.Context, key string, windowStart, now time.Time) (int64, error)
	RecordEvent(ctx context.Context, key string, now time.Time, ttl time.Duration) error

	Close() error
}

// Connect picks the backing store. A failed redis handshake downgrades to the
// in-memory store once, with a single warning; the choice is permanent.
func Connect(ctx context.Context, cfg *config.RedisConfig, log *zerolog.Logger) Store {
	rs, err := NewRedisStore(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).
			Msg("redis unreachable, falling back to in-memory queue storage")
		return NewMemoryStore()
	}
	log.Info().Str("addr", cfg.Addr).Msg("redis connection established")
	return rs
}
