package sigcheck

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the diagnostic sink this core writes to for the informational
// (never behavior-affecting, per spec.md §6) messages GnuPG's original
// implementation sends through log_info: clock-skew warnings, expiry/
// revocation notes, missing-cross-certification warnings. Logging and
// localization are external collaborators (spec.md §1); this interface is
// this core's half of that contract.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
}

// slogLogger adapts a *slog.Logger to Logger, gated by the verbose / quiet
// flags given to NewLogger, as the source gates log_info calls behind
// opt.verbose: verbosity controls log volume only, never verification
// behavior.
type slogLogger struct {
	logger  *slog.Logger
	verbose bool
	quiet   bool
}

// NewLogger returns a Logger backed by log/slog, writing text-formatted
// records to stderr. verbose enables Debug-level notes (e.g. "signature
// key %s expired" detail); quiet suppresses even Warn-level notes, leaving
// only Error-equivalent diagnostics attached to returned errors.
func NewLogger(verbose, quiet bool) Logger {
	return &slogLogger{
		logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
		verbose: verbose,
		quiet:   quiet,
	}
}

func (l *slogLogger) Debug(ctx context.Context, msg string, args ...any) {
	if l.quiet || !l.verbose {
		return
	}
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.quiet {
		return
	}
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.quiet {
		return
	}
	l.logger.WarnContext(ctx, msg, args...)
}

// nopLogger discards everything; it is the default when no Logger is
// configured, so callers that don't care about diagnostics pay nothing.
type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}

// NewNopLogger returns a Logger that discards all messages.
func NewNopLogger() Logger { return nopLogger{} }
