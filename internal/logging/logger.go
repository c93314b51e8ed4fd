package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a configured application logger.
// It writes to Stderr so engine logs never interleave with stdout transports
// (JSON API responses, MCP stdio).
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, options(level)))
}

func options(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: normalizeKeys,
	}
}

// normalizeKeys standardizes attribute keys so log search behaves the same
// across packages: "error" and "err" both land on "err".
func normalizeKeys(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// ForCall scopes a logger to one call, grouping the session and flow
// identity so every line for the same call shares one searchable shape.
func ForCall(base *slog.Logger, sessionID, flowID string) *slog.Logger {
	return base.With(slog.Group("call",
		slog.String("session", sessionID),
		slog.String("flow", flowID),
	))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
