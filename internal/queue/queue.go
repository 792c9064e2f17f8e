package queue

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/domain"
	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/infra/metrics"
	"telegram-yt-summarizer/internal/infra/store"
)

const (
	queueKey        = "yt_summarizer:queue"
	processingKey   = "yt_summarizer:processing"
	userRequestsKey = "yt_summarizer:user_requests"

	// Tracking entries outlive any sane job by a wide margin; the TTL is a
	// leak guard, not a lifecycle mechanism.
	trackingTTL = 24 * time.Hour

	// Jobs this old in the tracking table are assumed orphaned by a crash.
	staleAfter = time.Hour
)

// Snapshot is a derived view used for capacity checks and status displays.
type Snapshot struct {
	QueueSize       int
	ProcessingCount int
	ActiveUsers     int
	Capacity        int
}

// RequestQueue is the FIFO admission and lifecycle tracker for processing
// requests. One non-terminal request per user at a time; the FIFO list only
// ever sheds elements from its head, so a cancelled-but-queued request keeps
// its slot and is skipped at dequeue.
type RequestQueue struct {
	store        store.Store
	capacity     int
	estimatedJob time.Duration
	log          *zerolog.Logger

	// Admission is a check-then-push across several store calls; the mutex
	// keeps concurrent Enqueues for the same user from both passing the check.
	admit sync.Mutex
}

func NewRequestQueue(st store.Store, capacity int, estimatedJob time.Duration, logger *zerolog.Logger) *RequestQueue {
	qLog := logger.With().Str("component", "RequestQueue").Logger()
	return &RequestQueue{
		store:        st,
		capacity:     capacity,
		estimatedJob: estimatedJob,
		log:          &qLog,
	}
}

// Enqueue admits a request. Returns false (with nil error) when the user
// already has a non-terminal request or the queue is at capacity; returns an
// error only for store failures, which callers surface as "try again later".
func (q *RequestQueue) Enqueue(ctx context.Context, req *model.ProcessingRequest) (bool, error) {
	q.admit.Lock()
	defer q.admit.Unlock()

	existing, err := q.trackedRequest(ctx, req.UserID)
	if err != nil {
		return false, err
	}
	if existing != nil && !existing.Status.Terminal() {
		q.log.Warn().Int64("user_id", req.UserID).Msg("user already has a pending request")
		return false, nil
	}

	size, err := q.Size(ctx)
	if err != nil {
		return false, err
	}
	if size >= q.capacity {
		q.log.Warn().Int("size", size).Int("capacity", q.capacity).Msg("queue at capacity")
		return false, nil
	}

	now := time.Now()
	req.Status = model.StatusQueued
	req.EnqueuedAt = now
	req.EstimatedDone = now.Add(q.estimatedJob)

	payload, err := json.Marshal(req)
	if err != nil {
		return false, err
	}
	if err := q.store.PushJob(ctx, queueKey, payload); err != nil {
		return false, err
	}
	if err := q.store.SetHashField(ctx, userRequestsKey, userField(req.UserID), payload, trackingTTL); err != nil {
		return false, err
	}

	metrics.SetQueueDepth(size + 1)
	q.log.Info().Int64("user_id", req.UserID).Str("video_id", req.VideoID).
		Str("operation", string(req.Operation)).Msg("request enqueued")
	return true, nil
}

// DequeueNext pops the queue head, blocking up to timeout. Returns (nil, nil)
// when the queue stayed empty. A request whose tracking entry was marked
// cancelled while it waited comes back with StatusCancelled and its tracking
// removed; a payload whose tracking entry is gone or tracks a different
// request ID is a stale slot and comes back cancelled with tracking left
// untouched. The worker skips both without side effects. Otherwise the
// request is transitioned to processing in both tracking tables.
func (q *RequestQueue) DequeueNext(ctx context.Context, timeout time.Duration) (*model.ProcessingRequest, error) {
	payload, err := q.store.PopJob(ctx, queueKey, timeout)
	if err != nil {
		if err == domain.ErrEmpty {
			return nil, nil
		}
		return nil, err
	}

	var req model.ProcessingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		q.log.Error().Err(err).Msg("dropping undecodable queue payload")
		return nil, nil
	}

	if tracked, err := q.trackedRequest(ctx, req.UserID); err == nil {
		if tracked == nil || tracked.ID != req.ID {
			// The tracking entry no longer refers to this payload: the job
			// was purged, or the user cancelled it and a later request now
			// owns the entry. Skip the slot and leave tracking alone.
			req.Status = model.StatusCancelled
			return &req, nil
		}
		if tracked.Status == model.StatusCancelled {
			_ = q.store.DeleteHashField(ctx, userRequestsKey, userField(req.UserID))
			req.Status = model.StatusCancelled
			return &req, nil
		}
	}

	req.Status = model.StatusProcessing
	updated, err := json.Marshal(&req)
	if err != nil {
		return nil, err
	}
	if err := q.store.SetHashField(ctx, processingKey, userField(req.UserID), updated, trackingTTL); err != nil {
		return nil, err
	}
	if err := q.store.SetHashField(ctx, userRequestsKey, userField(req.UserID), updated, trackingTTL); err != nil {
		return nil, err
	}

	if size, err := q.Size(ctx); err == nil {
		metrics.SetQueueDepth(size)
	}
	return &req, nil
}

// Cancel marks a queued request cancelled (its FIFO slot is skipped later) or
// drops a processing request from tracking. Best-effort for processing: the
// worker observes cancellation at its next checkpoint, not mid-stage.
// Returns false when the user has nothing cancellable.
func (q *RequestQueue) Cancel(ctx context.Context, userID int64) bool {
	tracked, err := q.trackedRequest(ctx, userID)
	if err != nil || tracked == nil {
		return false
	}

	was := tracked.Status
	switch tracked.Status {
	case model.StatusQueued:
		tracked.Status = model.StatusCancelled
		payload, err := json.Marshal(tracked)
		if err != nil {
			return false
		}
		if err := q.store.SetHashField(ctx, userRequestsKey, userField(userID), payload, trackingTTL); err != nil {
			q.log.Error().Err(err).Int64("user_id", userID).Msg("cancel write failed")
			return false
		}
	case model.StatusProcessing:
		_ = q.store.DeleteHashField(ctx, processingKey, userField(userID))
		_ = q.store.DeleteHashField(ctx, userRequestsKey, userField(userID))
	default:
		return false
	}

	q.log.Info().Int64("user_id", userID).Str("was", string(was)).Msg("request cancelled")
	return true
}

// Complete removes the user's request from all tracking tables regardless of
// outcome. This is the only path that clears a processing entry on the
// happy/sad path.
func (q *RequestQueue) Complete(ctx context.Context, userID int64, success bool) bool {
	if err := q.store.DeleteHashField(ctx, processingKey, userField(userID)); err != nil {
		q.log.Error().Err(err).Int64("user_id", userID).Msg("failed to clear processing entry")
		return false
	}
	if err := q.store.DeleteHashField(ctx, userRequestsKey, userField(userID)); err != nil {
		q.log.Error().Err(err).Int64("user_id", userID).Msg("failed to clear tracking entry")
		return false
	}
	q.log.Info().Int64("user_id", userID).Bool("success", success).Msg("request completed")
	return true
}

// Status returns the user-facing view of a tracked request, or nil when the
// user has none. Queue position is a rough estimate (half the queue length);
// cancelled jobs still occupying FIFO slots make it optimistic.
func (q *RequestQueue) Status(ctx context.Context, userID int64) (*model.RequestStatusInfo, error) {
	tracked, err := q.trackedRequest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tracked == nil {
		return nil, nil
	}

	position := 0
	if tracked.Status == model.StatusQueued {
		if size, err := q.Size(ctx); err == nil && size > 0 {
			position = size / 2
			if position < 1 {
				position = 1
			}
		}
	}

	minutes := time.Until(tracked.EstimatedDone).Minutes()
	if minutes < 0 {
		minutes = 0
	}

	return &model.RequestStatusInfo{
		VideoID:          tracked.VideoID,
		Status:           tracked.Status,
		QueuePosition:    position,
		EstimatedMinutes: float64(int(minutes*10)) / 10,
	}, nil
}

func (q *RequestQueue) Size(ctx context.Context) (int, error) {
	n, err := q.store.ListLen(ctx, queueKey)
	return int(n), err
}

// Stats is a derived snapshot for status displays; never used for admission
// beyond the capacity number it carries.
func (q *RequestQueue) Stats(ctx context.Context) Snapshot {
	snap := Snapshot{Capacity: q.capacity}
	if n, err := q.store.ListLen(ctx, queueKey); err == nil {
		snap.QueueSize = int(n)
	}
	if n, err := q.store.HashLen(ctx, processingKey); err == nil {
		snap.ProcessingCount = int(n)
	}
	if n, err := q.store.HashLen(ctx, userRequestsKey); err == nil {
		snap.ActiveUsers = int(n)
	}
	return snap
}

// CleanupExpired purges tracking entries older than the staleness threshold,
// covering jobs whose worker crashed mid-processing. Idempotent and safe to
// run concurrently with normal operation.
func (q *RequestQueue) CleanupExpired(ctx context.Context) int {
	fields, err := q.store.ListHashFields(ctx, userRequestsKey)
	if err != nil {
		q.log.Error().Err(err).Msg("cleanup scan failed")
		return 0
	}

	cutoff := time.Now().Add(-staleAfter)
	removed := 0
	for field, payload := range fields {
		var req model.ProcessingRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			// Undecodable entries are stale by definition.
			_ = q.store.DeleteHashField(ctx, userRequestsKey, field)
			removed++
			continue
		}
		if req.EnqueuedAt.Before(cutoff) {
			_ = q.store.DeleteHashField(ctx, userRequestsKey, field)
			_ = q.store.DeleteHashField(ctx, processingKey, field)
			removed++
			q.log.Info().Int64("user_id", req.UserID).Str("video_id", req.VideoID).
				Msg("purged stale request")
		}
	}
	return removed
}

func (q *RequestQueue) trackedRequest(ctx context.Context, userID int64) (*model.ProcessingRequest, error) {
	payload, err := q.store.GetHashField(ctx, userRequestsKey, userField(userID))
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	var req model.ProcessingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func userField(userID int64) string { return strconv.FormatInt(userID, 10) }
