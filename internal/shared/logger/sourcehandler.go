package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// sourceByLevelHandler wraps a handler and attaches source location only for
// the configured levels. Warn and error carry source in production; lower
// levels stay clean.
type sourceByLevelHandler struct {
	handler    slog.Handler
	withSource map[slog.Level]bool
}

// NewSourceByLevelHandler wraps a handler to conditionally show source location.
func NewSourceByLevelHandler(handler slog.Handler, levels ...slog.Level) slog.Handler {
	withSource := make(map[slog.Level]bool, len(levels))
	for _, l := range levels {
		withSource[l] = true
	}
	return &sourceByLevelHandler{handler: handler, withSource: withSource}
}

func (h *sourceByLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *sourceByLevelHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.withSource[r.Level] && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		if f.File != "" {
			r.AddAttrs(slog.Attr{
				Key: slog.SourceKey,
				Value: slog.AnyValue(&slog.Source{
					Function: f.Function,
					File:     f.File,
					Line:     f.Line,
				}),
			})
		}
	}
	return h.handler.Handle(ctx, r)
}

func (h *sourceByLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sourceByLevelHandler{handler: h.handler.WithAttrs(attrs), withSource: h.withSource}
}

func (h *sourceByLevelHandler) WithGroup(name string) slog.Handler {
	return &sourceByLevelHandler{handler: h.handler.WithGroup(name), withSource: h.withSource}
}
