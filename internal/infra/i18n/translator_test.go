package i18n_test

import (
	"strings"
	"testing"

	"telegram-yt-summarizer/internal/infra/i18n"
)

func TestTranslatorLoadsEmbeddedLocales(t *testing.T) {
	for _, lang := range []string{"en", "ru"} {
		tr, err := i18n.NewTranslator(i18n.LocalesFS, lang)
		if err != nil {
			t.Fatalf("load %s: %v", lang, err)
		}
		if tr.Language() != lang {
			t.Errorf("language = %q, want %q", tr.Language(), lang)
		}
		if got := tr.T("welcome"); got == "welcome" || got == "" {
			t.Errorf("%s welcome = %q, want a real message", lang, got)
		}
	}
}

func TestTranslatorUnknownLanguage(t *testing.T) {
	if _, err := i18n.NewTranslator(i18n.LocalesFS, "xx"); err == nil {
		t.Fatal("unknown language loaded without error")
	}
}

func TestTranslatorFormatsArgs(t *testing.T) {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := tr.T("err_video_too_long", 60)
	if !strings.Contains(got, "60") {
		t.Errorf("formatted message = %q, want the limit substituted", got)
	}
}

func TestTranslatorMissingKeyReturnsKey(t *testing.T) {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := tr.T("no_such_key"); got != "no_such_key" {
		t.Errorf("missing key = %q, want the key itself", got)
	}
}

// Both locale files must offer the same keys so switching the bot language
// never drops a message.
func TestLocaleKeyParity(t *testing.T) {
	keys := []string{
		"welcome", "help", "formats",
		"err_invalid_url", "err_not_allowed", "err_rate_limited", "err_queue_full",
		"err_duplicate", "err_try_later",
		"msg_enqueued", "msg_processing_started", "msg_generating_summary",
		"msg_correcting_transcript", "msg_creating_document",
		"msg_done_caption", "msg_transcript_caption",
		"err_video_unavailable", "err_no_transcript", "err_video_too_long",
		"err_processing", "err_delivery",
		"status_none", "status_queued", "status_processing", "status_queue_stats",
		"cancel_ok", "cancel_none",
	}

	for _, lang := range []string{"en", "ru"} {
		tr, err := i18n.NewTranslator(i18n.LocalesFS, lang)
		if err != nil {
			t.Fatalf("load %s: %v", lang, err)
		}
		for _, key := range keys {
			if tr.T(key) == key {
				t.Errorf("locale %s is missing key %q", lang, key)
			}
		}
	}
}
