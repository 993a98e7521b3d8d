package logger

import (
	"io"
	"log/slog"

	"wallet_dashboard/internal/app/port"
)

// slogAdapter implements port.Logger on top of a slog.Logger.
type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter wraps l, or the slog default when l is nil.
func NewSlogAdapter(l *slog.Logger) port.Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogAdapter{l: l}
}

// NewNop returns a logger that discards everything.
func NewNop() port.Logger {
	return &slogAdapter{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

func (a *slogAdapter) With(args ...any) port.Logger {
	return &slogAdapter{l: a.l.With(args...)}
}
