package model

import "time"

type RequestStatus string

const (
	StatusQueued     RequestStatus = "queued"
	StatusProcessing RequestStatus = "processing"
	StatusCompleted  RequestStatus = "completed"
	StatusFailed     RequestStatus = "failed"
	StatusCancelled  RequestStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s RequestStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

type Operation string

const (
	OpSummarize        Operation = "summarize"
	OpExtractRaw       Operation = "extract_raw"
	OpExtractCorrected Operation = "extract_corrected"
)

type OutputFormat string

const (
	FormatTXT  OutputFormat = "txt"
	FormatDOCX OutputFormat = "docx"
	FormatPDF  OutputFormat = "pdf"
)

// ProcessingRequest is one user's request to turn one video into one document.
// Content fields are written once at enqueue time; only Status changes after
// that, and only the queue/worker change it.
type ProcessingRequest struct {
	ID            string        `json:"id"`
	UserID        int64         `json:"user_id"`
	ChatID        int64         `json:"chat_id"`
	VideoURL      string        `json:"video_url"`
	VideoID       string        `json:"video_id"`
	OutputFormat  OutputFormat  `json:"output_format"`
	Operation     Operation     `json:"operation"`
	Status        RequestStatus `json:"status"`
	EnqueuedAt    time.Time     `json:"enqueued_at"`
	EstimatedDone time.Time     `json:"estimated_done"` // advisory only
}

// RequestStatusInfo is the user-facing view of a tracked request. Position is
// a rough estimate and may lag behind cancellations still occupying FIFO slots.
type RequestStatusInfo struct {
	VideoID          string
	Status           RequestStatus
	QueuePosition    int
	EstimatedMinutes float64
}
