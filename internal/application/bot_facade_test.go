package application_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/application"
	"telegram-yt-summarizer/internal/infra/i18n"
	"telegram-yt-summarizer/internal/infra/store"
	"telegram-yt-summarizer/internal/queue"
)

type facadeOpts struct {
	allowed   []int64
	capacity  int
	rateLimit int
}

func newTestFacade(t *testing.T, opts facadeOpts) *application.BotFacade {
	t.Helper()
	l := zerolog.Nop()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}

	if opts.capacity == 0 {
		opts.capacity = 10
	}
	if opts.rateLimit == 0 {
		opts.rateLimit = 100
	}

	st := store.NewMemoryStore()
	q := queue.NewRequestQueue(st, opts.capacity, 3*time.Minute, &l)
	rl := queue.NewRateLimiter(st, opts.rateLimit, time.Minute, &l)

	return application.NewBotFacade(q, rl, nil, tr, application.FacadeConfig{
		AllowedUsers:        opts.allowed,
		SupportedFormats:    []string{"txt", "docx", "pdf"},
		DefaultFormat:       "txt",
		MaxVideoDurationSec: 3600,
		RateLimitMessages:   opts.rateLimit,
		RateLimitWindow:     time.Minute,
	}, &l)
}

const testURL = "https://youtu.be/dQw4w9WgXcQ"

func TestSummarizeAccepted(t *testing.T) {
	f := newTestFacade(t, facadeOpts{})
	reply := f.HandleSummarize(context.Background(), 1, 10, "alice", testURL, "")
	if !strings.Contains(reply, "Request accepted") {
		t.Fatalf("reply = %q, want acceptance", reply)
	}
}

func TestSummarizeInvalidURL(t *testing.T) {
	f := newTestFacade(t, facadeOpts{})
	for _, url := range []string{"", "not a url", "https://vimeo.com/123"} {
		reply := f.HandleSummarize(context.Background(), 1, 10, "alice", url, "")
		if !strings.Contains(reply, "doesn't look like a YouTube link") {
			t.Errorf("reply for %q = %q, want invalid-URL message", url, reply)
		}
	}
}

func TestWhitelistBlocksUnknownUsers(t *testing.T) {
	f := newTestFacade(t, facadeOpts{allowed: []int64{7}})

	reply := f.HandleSummarize(context.Background(), 1, 10, "mallory", testURL, "")
	if !strings.Contains(reply, "not on the allowed list") {
		t.Fatalf("reply = %q, want whitelist refusal", reply)
	}

	reply = f.HandleSummarize(context.Background(), 7, 10, "alice", testURL, "")
	if !strings.Contains(reply, "Request accepted") {
		t.Fatalf("whitelisted reply = %q, want acceptance", reply)
	}
}

func TestSingleFlightRefusesSecondRequest(t *testing.T) {
	f := newTestFacade(t, facadeOpts{})
	ctx := context.Background()

	if reply := f.HandleSummarize(ctx, 1, 10, "alice", testURL, ""); !strings.Contains(reply, "Request accepted") {
		t.Fatalf("first reply = %q", reply)
	}
	reply := f.HandleSummarize(ctx, 1, 10, "alice", testURL, "")
	if !strings.Contains(reply, "already have a request") {
		t.Fatalf("second reply = %q, want duplicate refusal", reply)
	}
}

func TestCapacityRefusal(t *testing.T) {
	f := newTestFacade(t, facadeOpts{capacity: 1})
	ctx := context.Background()

	if reply := f.HandleSummarize(ctx, 1, 10, "alice", testURL, ""); !strings.Contains(reply, "Request accepted") {
		t.Fatalf("first reply = %q", reply)
	}
	reply := f.HandleSummarize(ctx, 2, 20, "bob", testURL, "")
	if !strings.Contains(reply, "queue is full") {
		t.Fatalf("reply = %q, want capacity refusal", reply)
	}
}

func TestRateLimitRefusal(t *testing.T) {
	f := newTestFacade(t, facadeOpts{rateLimit: 1})
	ctx := context.Background()

	if reply := f.HandleSummarize(ctx, 1, 10, "alice", testURL, ""); !strings.Contains(reply, "Request accepted") {
		t.Fatalf("first reply = %q", reply)
	}
	reply := f.HandleStatus(ctx, 1, "alice")
	_ = reply // status is not rate limited

	reply = f.HandleSummarize(ctx, 1, 10, "alice", testURL, "")
	if !strings.Contains(reply, "hit the request limit") {
		t.Fatalf("reply = %q, want rate limit refusal", reply)
	}
}

func TestCancelRoundTrip(t *testing.T) {
	f := newTestFacade(t, facadeOpts{})
	ctx := context.Background()

	if reply := f.HandleCancel(ctx, 1, "alice"); !strings.Contains(reply, "no request to cancel") {
		t.Fatalf("cancel with nothing = %q", reply)
	}

	f.HandleSummarize(ctx, 1, 10, "alice", testURL, "")
	if reply := f.HandleCancel(ctx, 1, "alice"); !strings.Contains(reply, "has been cancelled") {
		t.Fatalf("cancel = %q", reply)
	}
}

func TestResubmitAfterCancelAccepted(t *testing.T) {
	f := newTestFacade(t, facadeOpts{})
	ctx := context.Background()

	if reply := f.HandleSummarize(ctx, 1, 10, "alice", testURL, ""); !strings.Contains(reply, "Request accepted") {
		t.Fatalf("first reply = %q", reply)
	}
	if reply := f.HandleCancel(ctx, 1, "alice"); !strings.Contains(reply, "has been cancelled") {
		t.Fatalf("cancel = %q", reply)
	}

	// The cancelled job's tracking marker still exists until its FIFO slot
	// drains, but it must not count as a duplicate.
	reply := f.HandleSummarize(ctx, 1, 10, "alice", testURL, "")
	if !strings.Contains(reply, "Request accepted") {
		t.Fatalf("resubmit after cancel = %q, want acceptance", reply)
	}
}

func TestStatusReportsQueuedRequest(t *testing.T) {
	f := newTestFacade(t, facadeOpts{})
	ctx := context.Background()

	if reply := f.HandleStatus(ctx, 1, "alice"); !strings.Contains(reply, "no active request") {
		t.Fatalf("empty status = %q", reply)
	}

	f.HandleSummarize(ctx, 1, 10, "alice", testURL, "")
	reply := f.HandleStatus(ctx, 1, "alice")
	if !strings.Contains(reply, "dQw4w9WgXcQ") || !strings.Contains(reply, "queued") {
		t.Fatalf("status = %q, want queued view with video id", reply)
	}
	if !strings.Contains(reply, "Queue:") {
		t.Fatalf("status = %q, want queue stats line", reply)
	}
}
