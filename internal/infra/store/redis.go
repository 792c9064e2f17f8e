package store

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"telegram-yt-summarizer/internal/config"
	"telegram-yt-summarizer/internal/domain"
)

var _ Store = (*RedisStore)(nil)

// RedisStore backs the queue with native redis structures: LPUSH/BRPOP for
// the FIFO, a hash for request tracking and a sorted set per user for the
// rate-limit window.
type RedisStore struct {
	cli *redis.Client
}

func NewRedisStore(ctx context.Context, cfg *config.RedisConfig) (*RedisStore, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 5 * time.Second,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return &RedisStore{cli: cli}, nil
}

func (s *RedisStore) PushJob(ctx context.Context, queueKey string, payload []byte) error {
	return s.cli.LPush(ctx, queueKey, payload).Err()
}

func (s *RedisStore) PopJob(ctx context.Context, queueKey string, timeout time.Duration) ([]byte, error) {
	res, err := s.cli.BRPop(ctx, timeout, queueKey).Result()
	if err == redis.Nil {
		return nil, domain.ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	// BRPOP returns [key, value].
	if len(res) < 2 {
		return nil, domain.ErrEmpty
	}
	return []byte(res[1]), nil
}

func (s *RedisStore) ListLen(ctx context.Context, queueKey string) (int64, error) {
	return s.cli.LLen(ctx, queueKey).Result()
}

func (s *RedisStore) SetHashField(ctx context.Context, hashKey, field string, value []byte, ttl time.Duration) error {
	pipe := s.cli.TxPipeline()
	pipe.HSet(ctx, hashKey, field, value)
	if ttl > 0 {
		pipe.Expire(ctx, hashKey, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetHashField(ctx context.Context, hashKey, field string) ([]byte, error) {
	v, err := s.cli.HGet(ctx, hashKey, field).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (s *RedisStore) DeleteHashField(ctx context.Context, hashKey string, fields ...string) error {
	return s.cli.HDel(ctx, hashKey, fields...).Err()
}

func (s *RedisStore) ListHashFields(ctx context.Context, hashKey string) (map[string][]byte, error) {
	m, err := s.cli.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = []byte(v)
	}
	return out, nil
}

func (s *RedisStore) HashLen(ctx context.Context, hashKey string) (int64, error) {
	return s.cli.HLen(ctx, hashKey).Result()
}

func (s *RedisStore) CountWindow(ctx context.Context, key string, windowStart, now time.Time) (int64, error) {
	pipe := s.cli.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return card.Val(), nil
}

func (s *RedisStore) RecordEvent(ctx context.Context, key string, now time.Time, ttl time.Duration) error {
	pipe := s.cli.TxPipeline()
	// Member carries a uuid suffix so equal-timestamp events are all counted
	// rather than collapsed into one set member.
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString(),
	})
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Close() error { return s.cli.Close() }
