package metrics

import (
	"context"
	"io"
	"log/slog"
)

// JSONLObserver appends one JSON line per event, suitable for offline analysis.
type JSONLObserver struct {
	logger *slog.Logger
	w      io.Writer
}

func NewJSONLObserver(w io.Writer) *JSONLObserver {
	if w == nil {
		w = io.Discard
	}
	return &JSONLObserver{logger: slog.New(slog.NewJSONHandler(w, nil)), w: w}
}

// Flush syncs the underlying writer when it supports it (e.g. an *os.File).
func (o *JSONLObserver) Flush() error {
	if s, ok := o.w.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

func (o *JSONLObserver) RecordEvent(ev MetricsEvent) {
	attrs := []slog.Attr{
		slog.String("name", ev.Name),
		slog.Time("time", ev.Time),
		slog.Float64("value", ev.Value),
	}
	for k, v := range ev.Tags {
		attrs = append(attrs, slog.String(k, v))
	}
	for k, v := range ev.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	o.logger.LogAttrs(context.TODO(), slog.LevelInfo, "metrics", attrs...)
}
