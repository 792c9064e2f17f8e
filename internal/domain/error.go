package domain

import "errors"

var (
	// Admission errors. The queue API reports these as booleans/nils; the
	// sentinels exist so the facade can pick the right user message.
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrQueueFull        = errors.New("processing queue is full")
	ErrDuplicateRequest = errors.New("user already has an active request")

	// Extraction errors: the user's content is the problem.
	ErrVideoUnavailable = errors.New("video unavailable or private")
	ErrNoTranscript     = errors.New("no transcript available for video")
	ErrVideoTooLong     = errors.New("video exceeds maximum duration")

	// Transform / render / delivery errors.
	ErrAITransform       = errors.New("ai transform failed")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrRender            = errors.New("document generation failed")
	ErrDelivery          = errors.New("document delivery failed")

	// Infrastructure errors.
	ErrNotFound         = errors.New("entity not found")
	ErrEmpty            = errors.New("queue empty")
	ErrStoreUnavailable = errors.New("key-value store unavailable")
)
