package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
)

// SetupLogger installs a JSON slog default logger wrapped so that errors
// logged with ErrAttr carry their stack trace as a separate attribute.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel converts a level name to a slog.Level. Unknown names panic;
// the level always comes from a command-line flag or env var set by the
// author, so failing fast is the right behaviour.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

// ErrAttr wraps err for passing to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// ErrFmtHandler is a slog handler that extracts the stack trace from
// cockroachdb/errors values logged under ErrAttrKey.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps a slog handler so emitted records gain a
// stacktrace attribute when an error with safe details is present.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var stacktrace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == ErrAttrKey {
			err, ok := attr.Value.Any().(error)
			if ok {
				stacktrace = extractStacktrace(err)
			}
			return false
		}
		return true
	})
	if stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

// SlogLogger adapts a *slog.Logger to the Logger interface, so server
// processes can route package logging through the JSON slog default
// installed by SetupLogger.
type SlogLogger struct {
	sl *slog.Logger
}

// NewSlogLogger wraps sl; nil wraps slog.Default().
func NewSlogLogger(sl *slog.Logger) *SlogLogger {
	if sl == nil {
		sl = slog.Default()
	}
	return &SlogLogger{sl: sl}
}

// Debug implements Logger.
func (s *SlogLogger) Debug(msg string, fields ...any) { s.sl.Debug(msg, fields...) }

// Info implements Logger.
func (s *SlogLogger) Info(msg string, fields ...any) { s.sl.Info(msg, fields...) }

// Warn implements Logger.
func (s *SlogLogger) Warn(msg string, fields ...any) { s.sl.Warn(msg, fields...) }

// Error implements Logger.
func (s *SlogLogger) Error(msg string, fields ...any) { s.sl.Error(msg, fields...) }

// With implements Logger.
func (s *SlogLogger) With(fields ...any) Logger {
	return &SlogLogger{sl: s.sl.With(fields...)}
}

// Enabled implements Logger.
func (s *SlogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.sl.Enabled(ctx, slog.Level(level))
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
