package store

import (
	"context"
	"sync"
	"time"

	"telegram-yt-summarizer/internal/domain"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is the in-process fallback used when redis is unreachable at
// startup. Single mutex over everything; contention here is one worker and a
// handful of bot update goroutines.
type MemoryStore struct {
	mu   sync.Mutex
	cond *sync.Cond

	lists  map[string][][]byte
	hashes map[string]map[string]hashEntry
	events map[string][]time.Time
}

type hashEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		lists:  make(map[string][][]byte),
		hashes: make(map[string]map[string]hashEntry),
		events: make(map[string][]time.Time),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *MemoryStore) PushJob(ctx context.Context, queueKey string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Prepend; PopJob takes from the tail so order is FIFO, mirroring
	// LPUSH/BRPOP on the redis backend.
	m.lists[queueKey] = append([][]byte{payload}, m.lists[queueKey]...)
	m.cond.Broadcast()
	return nil
}

func (m *MemoryStore) PopJob(ctx context.Context, queueKey string, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		if l := m.lists[queueKey]; len(l) > 0 {
			payload := l[len(l)-1]
			m.lists[queueKey] = l[:len(l)-1]
			return payload, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, domain.ErrEmpty
		}
		// Cond has no timed wait; a timer broadcast wakes us to re-check
		// the deadline.
		t := time.AfterFunc(remaining, m.cond.Broadcast)
		m.cond.Wait()
		t.Stop()
	}
}

func (m *MemoryStore) ListLen(ctx context.Context, queueKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.lists[queueKey])), nil
}

func (m *MemoryStore) SetHashField(ctx context.Context, hashKey, field string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.hashes[hashKey]
	if h == nil {
		h = make(map[string]hashEntry)
		m.hashes[hashKey] = h
	}
	e := hashEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	h[field] = e
	return nil
}

func (m *MemoryStore) GetHashField(ctx context.Context, hashKey, field string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.hashes[hashKey][field]
	if !ok || e.expired() {
		if ok {
			delete(m.hashes[hashKey], field)
		}
		return nil, domain.ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) DeleteHashField(ctx context.Context, hashKey string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.hashes[hashKey]
	for _, f := range fields {
		delete(h, f)
	}
	return nil
}

func (m *MemoryStore) ListHashFields(ctx context.Context, hashKey string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.hashes[hashKey]
	out := make(map[string][]byte, len(h))
	for f, e := range h {
		if e.expired() {
			delete(h, f)
			continue
		}
		out[f] = e.value
	}
	return out, nil
}

func (m *MemoryStore) HashLen(ctx context.Context, hashKey string) (int64, error) {
	fields, err := m.ListHashFields(ctx, hashKey)
	if err != nil {
		return 0, err
	}
	return int64(len(fields)), nil
}

func (m *MemoryStore) CountWindow(ctx context.Context, key string, windowStart, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[key][:0]
	for _, ts := range m.events[key] {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	m.events[key] = kept
	return int64(len(kept)), nil
}

func (m *MemoryStore) RecordEvent(ctx context.Context, key string, now time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[key] = append(m.events[key], now)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func (e hashEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}
