package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(discard{})
}

// NewComponentLogger scopes logger to component. A nil logger discards.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning that always names its event type and
// impact; attrs may override the defaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	var hasEvent, hasImpact bool
	args := make([]any, 0, len(attrs)+2)
	for _, a := range attrs {
		hasEvent = hasEvent || a.Key == FieldEventType
		hasImpact = hasImpact || a.Key == FieldImpact
		args = append(args, a)
	}
	if !hasEvent {
		args = append(args, String(FieldEventType, eventType))
	}
	if !hasImpact {
		args = append(args, String(FieldImpact, "item left unprocessed"))
	}
	logger.Warn(msg, args...)
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool { return false }

func (discard) Handle(context.Context, slog.Record) error { return nil }

func (discard) WithAttrs([]slog.Attr) slog.Handler { return discard{} }

func (discard) WithGroup(string) slog.Handler { return discard{} }
