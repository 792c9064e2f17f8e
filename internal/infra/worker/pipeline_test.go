package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/domain"
	"telegram-yt-summarizer/internal/domain/model"
	"telegram-yt-summarizer/internal/domain/ports/adapter"
	"telegram-yt-summarizer/internal/infra/i18n"
	"telegram-yt-summarizer/internal/infra/store"
	"telegram-yt-summarizer/internal/queue"
)

// ---- fakes ----

type fakeExtractor struct {
	info          *model.VideoInfo
	transcript    *model.Transcript
	metadataErr   error
	transcriptErr error
}

func (f *fakeExtractor) FetchMetadata(ctx context.Context, videoURL string) (*model.VideoInfo, error) {
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	return f.info, nil
}

func (f *fakeExtractor) FetchTranscript(ctx context.Context, videoID string) (*model.Transcript, error) {
	if f.transcriptErr != nil {
		return nil, f.transcriptErr
	}
	return f.transcript, nil
}

type fakeAI struct {
	summarizeCalls int
	correctCalls   int
	summarizeErr   error
}

func (f *fakeAI) Summarize(ctx context.Context, info *model.VideoInfo, transcript *model.Transcript) (*model.VideoSummary, error) {
	f.summarizeCalls++
	if f.summarizeErr != nil {
		return nil, f.summarizeErr
	}
	return &model.VideoSummary{ExecutiveSummary: "ok", ModelUsed: "fake", TokensUsed: 10}, nil
}

func (f *fakeAI) CorrectTranscript(ctx context.Context, transcript *model.Transcript, languageHint string) (*model.Transcript, error) {
	f.correctCalls++
	out := *transcript
	out.Corrected = true
	return &out, nil
}

type fakeRenderer struct {
	dir         string
	renderCalls int
	err         error
}

func (f *fakeRenderer) Render(ctx context.Context, in *adapter.RenderInput, format model.OutputFormat) (string, error) {
	f.renderCalls++
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(f.dir, "out."+string(format))
	if err := os.WriteFile(path, []byte("doc"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeSink struct {
	mu        sync.Mutex
	messages  []string
	documents []string
	sendErr   error
	docErr    error
}

func (f *fakeSink) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeSink) SendDocument(ctx context.Context, chatID int64, filePath, filename, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docErr != nil {
		return f.docErr
	}
	f.documents = append(f.documents, filename)
	return nil
}

// ---- harness ----

type harness struct {
	pipeline  *Pipeline
	queue     *queue.RequestQueue
	extractor *fakeExtractor
	ai        *fakeAI
	renderer  *fakeRenderer
	sink      *fakeSink
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	l := zerolog.Nop()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}

	q := queue.NewRequestQueue(store.NewMemoryStore(), 10, 3*time.Minute, &l)
	extractor := &fakeExtractor{
		info: &model.VideoInfo{ID: "dQw4w9WgXcQ", Title: "Test", Uploader: "Chan", DurationSeconds: 600},
		transcript: &model.Transcript{
			Segments:     []model.TranscriptSegment{{Text: "hello", Start: 0, Duration: 2}},
			LanguageCode: "en",
		},
	}
	ai := &fakeAI{}
	renderer := &fakeRenderer{dir: t.TempDir()}
	sink := &fakeSink{}

	p := NewPipeline(q, extractor, ai, renderer, sink, nil, tr,
		3600, 50*time.Millisecond, time.Hour, &l)

	return &harness{pipeline: p, queue: q, extractor: extractor, ai: ai, renderer: renderer, sink: sink}
}

// admitAndDequeue puts a request through the queue so it is tracked as
// processing, the state processJob expects.
func (h *harness) admitAndDequeue(t *testing.T, op model.Operation) *model.ProcessingRequest {
	t.Helper()
	ctx := context.Background()
	req := &model.ProcessingRequest{
		ID:           "req-1",
		UserID:       42,
		ChatID:       999,
		VideoURL:     "https://youtu.be/dQw4w9WgXcQ",
		VideoID:      "dQw4w9WgXcQ",
		OutputFormat: model.FormatTXT,
		Operation:    op,
	}
	if ok, err := h.queue.Enqueue(ctx, req); err != nil || !ok {
		t.Fatalf("enqueue: %v, %v", ok, err)
	}
	got, err := h.queue.DequeueNext(ctx, 100*time.Millisecond)
	if err != nil || got == nil {
		t.Fatalf("dequeue: %v, %v", got, err)
	}
	return got
}

// ---- tests ----

func TestProcessJobSummarizeHappyPath(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := h.admitAndDequeue(t, model.OpSummarize)

	h.pipeline.processJob(ctx, req)

	if h.ai.summarizeCalls != 1 {
		t.Errorf("summarize calls = %d, want 1", h.ai.summarizeCalls)
	}
	if h.renderer.renderCalls != 1 {
		t.Errorf("render calls = %d, want 1", h.renderer.renderCalls)
	}
	if len(h.sink.documents) != 1 {
		t.Fatalf("documents sent = %d, want 1", len(h.sink.documents))
	}
	// Three progress messages: started, generating summary, creating document.
	if len(h.sink.messages) != 3 {
		t.Fatalf("progress messages = %d (%v), want 3", len(h.sink.messages), h.sink.messages)
	}
	// Tracking cleared so the next request is admitted.
	if st, _ := h.queue.Status(ctx, 42); st != nil {
		t.Errorf("status after completion = %+v, want nil", st)
	}
	// The rendered file is cleaned up after delivery.
	if _, err := os.Stat(filepath.Join(h.renderer.dir, "out.txt")); !os.IsNotExist(err) {
		t.Error("rendered file survived delivery")
	}
}

func TestProcessJobExtractRawSkipsAI(t *testing.T) {
	h := newHarness(t)
	req := h.admitAndDequeue(t, model.OpExtractRaw)

	h.pipeline.processJob(context.Background(), req)

	if h.ai.summarizeCalls != 0 || h.ai.correctCalls != 0 {
		t.Errorf("AI calls = %d/%d, want none", h.ai.summarizeCalls, h.ai.correctCalls)
	}
	if len(h.sink.documents) != 1 {
		t.Fatalf("documents sent = %d, want 1", len(h.sink.documents))
	}
	// Raw extraction has no AI stage message: started and creating document.
	if len(h.sink.messages) != 2 {
		t.Fatalf("progress messages = %d (%v), want 2", len(h.sink.messages), h.sink.messages)
	}
}

func TestProcessJobVideoTooLong(t *testing.T) {
	h := newHarness(t)
	h.extractor.info.DurationSeconds = 7200
	req := h.admitAndDequeue(t, model.OpSummarize)

	h.pipeline.processJob(context.Background(), req)

	if h.ai.summarizeCalls != 0 {
		t.Errorf("summarize calls = %d, want 0", h.ai.summarizeCalls)
	}
	if h.renderer.renderCalls != 0 {
		t.Errorf("render calls = %d, want 0", h.renderer.renderCalls)
	}
	if len(h.sink.documents) != 0 {
		t.Errorf("documents sent = %d, want 0", len(h.sink.documents))
	}
	last := h.sink.messages[len(h.sink.messages)-1]
	if !strings.Contains(last, "too long") {
		t.Errorf("final message = %q, want the length error", last)
	}
	if st, _ := h.queue.Status(context.Background(), 42); st != nil {
		t.Errorf("status after failure = %+v, want nil", st)
	}
}

func TestProcessJobNoTranscript(t *testing.T) {
	h := newHarness(t)
	h.extractor.transcriptErr = domain.ErrNoTranscript
	req := h.admitAndDequeue(t, model.OpSummarize)

	h.pipeline.processJob(context.Background(), req)

	if h.ai.summarizeCalls != 0 {
		t.Errorf("summarize calls = %d, want 0", h.ai.summarizeCalls)
	}
	last := h.sink.messages[len(h.sink.messages)-1]
	if !strings.Contains(last, "subtitles") {
		t.Errorf("final message = %q, want the no-transcript error", last)
	}
}

func TestProcessJobAIFailureFailsSummarize(t *testing.T) {
	h := newHarness(t)
	h.ai.summarizeErr = errors.New("model overloaded")
	req := h.admitAndDequeue(t, model.OpSummarize)

	h.pipeline.processJob(context.Background(), req)

	if h.renderer.renderCalls != 0 {
		t.Errorf("render calls = %d, want 0 after AI failure", h.renderer.renderCalls)
	}
	if len(h.sink.documents) != 0 {
		t.Errorf("documents sent = %d, want 0", len(h.sink.documents))
	}
	if st, _ := h.queue.Status(context.Background(), 42); st != nil {
		t.Errorf("status after AI failure = %+v, want nil", st)
	}
}

func TestProcessJobDeliveryFailure(t *testing.T) {
	h := newHarness(t)
	h.sink.docErr = errors.New("telegram down")
	req := h.admitAndDequeue(t, model.OpSummarize)

	h.pipeline.processJob(context.Background(), req)

	if st, _ := h.queue.Status(context.Background(), 42); st != nil {
		t.Errorf("status after delivery failure = %+v, want nil", st)
	}
	last := h.sink.messages[len(h.sink.messages)-1]
	if !strings.Contains(last, "could not be sent") {
		t.Errorf("final message = %q, want the delivery error", last)
	}
}

func TestProcessJobCancelledMidProcessing(t *testing.T) {
	h := newHarness(t)
	req := h.admitAndDequeue(t, model.OpSummarize)

	// Cancel after dequeue but before the pipeline reaches its checkpoint.
	if !h.queue.Cancel(context.Background(), 42) {
		t.Fatal("cancel returned false")
	}

	h.pipeline.processJob(context.Background(), req)

	if h.ai.summarizeCalls != 0 {
		t.Errorf("summarize calls = %d, want 0 after cancellation", h.ai.summarizeCalls)
	}
	if h.renderer.renderCalls != 0 {
		t.Errorf("render calls = %d, want 0 after cancellation", h.renderer.renderCalls)
	}
	if len(h.sink.documents) != 0 {
		t.Errorf("documents sent = %d, want 0", len(h.sink.documents))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.pipeline.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker loop did not stop on context cancel")
	}
}
