package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestErrorKeyNormalized(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, options(slog.LevelInfo)))

	logger.Error("turn failed", "error", "boom")

	if got := buf.String(); !strings.Contains(got, "err=boom") {
		t.Errorf("log line %q does not carry err=boom", got)
	}
}

func TestForCallGroupsIdentity(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, options(slog.LevelInfo)))

	ForCall(base, "sess-1", "pizza").Info("call started", "action", "gather")

	got := buf.String()
	for _, want := range []string{"call.session=sess-1", "call.flow=pizza", "action=gather"} {
		if !strings.Contains(got, want) {
			t.Errorf("log line %q missing %q", got, want)
		}
	}
}
