package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestTraceDuration(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)

	done := TraceDuration(&logger, "Pipeline.processJob")
	done()

	out := buf.String()
	if !strings.Contains(out, `"method":"Pipeline.processJob"`) {
		t.Fatalf("output = %q, want method field", out)
	}
	if !strings.Contains(out, `"message":"start"`) || !strings.Contains(out, `"message":"finish"`) {
		t.Fatalf("output = %q, want start and finish entries", out)
	}
	if !strings.Contains(out, `"duration"`) {
		t.Fatalf("output = %q, want duration on the finish entry", out)
	}
}
