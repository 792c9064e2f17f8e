package analytics_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"telegram-yt-summarizer/internal/infra/analytics"
)

func openTestRecorder(t *testing.T) (*analytics.Recorder, string) {
	t.Helper()
	l := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "analytics.db")
	rec, err := analytics.Open(path, &l)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	return rec, path
}

func TestRecorderWritesActivity(t *testing.T) {
	rec, path := openTestRecorder(t)
	ctx := context.Background()

	rec.RecordActivity(ctx, 42, "alice", "summarize")
	rec.RecordActivity(ctx, 42, "alice", "status")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_activity WHERE user_id = 42`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("activity rows = %d, want 2", count)
	}
}

func TestRecorderWritesProcessingOutcome(t *testing.T) {
	rec, path := openTestRecorder(t)

	rec.RecordProcessing(context.Background(), analytics.ProcessingRecord{
		UserID:          42,
		VideoID:         "dQw4w9WgXcQ",
		VideoTitle:      "Test",
		DurationSeconds: 600,
		Operation:       "summarize",
		OutputFormat:    "txt",
		Status:          "completed",
		TokensUsed:      123,
		Elapsed:         90 * time.Second,
	})

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var status string
	var tokens, elapsedMs int
	err = db.QueryRow(`SELECT status, tokens_used, processing_ms FROM video_processing WHERE video_id = ?`, "dQw4w9WgXcQ").
		Scan(&status, &tokens, &elapsedMs)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if status != "completed" || tokens != 123 || elapsedMs != 90000 {
		t.Fatalf("row = %s/%d/%d", status, tokens, elapsedMs)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *analytics.Recorder
	rec.RecordActivity(context.Background(), 1, "x", "y")
	rec.RecordProcessing(context.Background(), analytics.ProcessingRecord{})
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
