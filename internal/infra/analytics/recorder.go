// Package analytics persists per-user activity and per-video processing
// outcomes to a local sqlite database. Recording is best effort: a broken
// analytics store never fails a user-facing operation, it only logs.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_activity (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	username   TEXT,
	action     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_activity_user ON user_activity (user_id);
CREATE INDEX IF NOT EXISTS idx_user_activity_time ON user_activity (created_at);

CREATE TABLE IF NOT EXISTS video_processing (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          INTEGER NOT NULL,
	video_id         TEXT NOT NULL,
	video_title      TEXT,
	duration_seconds INTEGER,
	operation        TEXT NOT NULL,
	output_format    TEXT NOT NULL,
	status           TEXT NOT NULL,
	error            TEXT,
	tokens_used      INTEGER,
	processing_ms    INTEGER,
	created_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_video_processing_user  ON video_processing (user_id);
CREATE INDEX IF NOT EXISTS idx_video_processing_video ON video_processing (video_id);
`

// Recorder writes analytics rows to sqlite. The zero value is not usable;
// construct with Open. A nil *Recorder is a valid no-op sink, which lets
// callers disable analytics by configuration without branching.
type Recorder struct {
	db  *sql.DB
	log *zerolog.Logger
}

// Open creates (or opens) the sqlite database at path and ensures the schema
// exists. The parent directory is created if missing.
func Open(path string, logger *zerolog.Logger) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	// sqlite tolerates exactly one writer; the pool must not hand out more.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply analytics schema: %w", err)
	}

	rLog := logger.With().Str("component", "Analytics").Logger()
	return &Recorder{db: db, log: &rLog}, nil
}

// RecordActivity logs one user action (a command or a message type).
func (r *Recorder) RecordActivity(ctx context.Context, userID int64, username, action string) {
	if r == nil {
		return
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_activity (user_id, username, action, created_at) VALUES (?, ?, ?, ?)`,
		userID, username, action, time.Now().UTC(),
	)
	if err != nil {
		r.log.Warn().Err(err).Int64("user_id", userID).Str("action", action).
			Msg("failed to record user activity")
	}
}

// ProcessingRecord is one finished (or failed) pipeline run.
type ProcessingRecord struct {
	UserID          int64
	VideoID         string
	VideoTitle      string
	DurationSeconds int
	Operation       string
	OutputFormat    string
	Status          string
	Error           string
	TokensUsed      int
	Elapsed         time.Duration
}

// RecordProcessing logs the outcome of one pipeline run.
func (r *Recorder) RecordProcessing(ctx context.Context, rec ProcessingRecord) {
	if r == nil {
		return
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO video_processing
		 (user_id, video_id, video_title, duration_seconds, operation, output_format,
		  status, error, tokens_used, processing_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.VideoID, rec.VideoTitle, rec.DurationSeconds,
		rec.Operation, rec.OutputFormat, rec.Status, rec.Error,
		rec.TokensUsed, rec.Elapsed.Milliseconds(), time.Now().UTC(),
	)
	if err != nil {
		r.log.Warn().Err(err).Int64("user_id", rec.UserID).Str("video_id", rec.VideoID).
			Msg("failed to record processing outcome")
	}
}

func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}
