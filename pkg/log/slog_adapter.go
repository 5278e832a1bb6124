package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("endpoint", event.Endpoint),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}
	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("connId", event.ConnectionID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remoteAddr", event.RemoteAddr))
	}

	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("oldState", event.StateChange.OldState),
			slog.String("newState", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Request != nil:
		r := event.Request
		attrs = append(attrs, slog.String("op", r.Operation.String()))
		if r.Component != "" {
			attrs = append(attrs, slog.String("component", r.Component))
		}
		if r.Slot != "" {
			attrs = append(attrs, slog.String("slot", r.Slot))
		}
		if r.Value != "" {
			attrs = append(attrs, slog.String("value", r.Value))
		}
		if r.Mask != 0 {
			attrs = append(attrs, slog.Int("mask", int(r.Mask)))
		}
		if r.Duration != 0 {
			attrs = append(attrs, slog.Duration("duration", r.Duration))
		}
		if r.Error != "" {
			attrs = append(attrs, slog.String("error", r.Error))
		}
	case event.Notification != nil:
		attrs = append(attrs,
			slog.String("component", event.Notification.Component),
			slog.Int("mask", int(event.Notification.Mask)),
		)
		if event.Notification.Dropped {
			attrs = append(attrs, slog.Bool("dropped", true))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
