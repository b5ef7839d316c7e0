package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes diagnostic events to an slog.Logger.
// Useful for development when you want to see diagnostics in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at the matching slog level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("import_id", event.ImportID),
		slog.String("category", event.Category.String()),
	}

	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}
	if event.Section != "" {
		attrs = append(attrs, slog.String("section", event.Section))
	}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.Line > 0 {
		attrs = append(attrs, slog.Int("line", event.Line))
	}
	if s := event.Summary; s != nil {
		attrs = append(attrs,
			slog.Int("entries", s.Entries),
			slog.Int("variables", s.Variables),
			slog.Int("warnings", s.Warnings),
			slog.Duration("duration", s.Duration),
		)
		if s.NodeID != 0 {
			attrs = append(attrs, slog.Int("node_id", int(s.NodeID)))
		}
	}

	a.logger.LogAttrs(context.Background(), slogLevel(event.Level), event.Message, attrs...)
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
