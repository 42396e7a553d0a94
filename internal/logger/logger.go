package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	defaultLogger *slog.Logger
	recorder      *Recorder
)

// ParseLevel maps DEBUG/INFO/WARN/ERROR to a slog level, defaulting to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init configures the default logger. Console output is filtered by level;
// the recorder keeps every record so it can be written to the debug log.
func Init(level string) {
	InitWithWriter(os.Stderr, level)
}

// InitWithWriter is Init with a custom console writer.
func InitWithWriter(w io.Writer, level string) {
	console := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	recorder = NewRecorder()
	defaultLogger = slog.New(&teeHandler{handlers: []slog.Handler{console, recorder.Handler()}})
}

func init() {
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// Logger returns the default logger instance.
func Logger() *slog.Logger {
	return defaultLogger
}

// SetLogger allows replacing the default logger (for tests or customization).
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

// CurrentRecorder returns the recorder installed by Init, or nil.
func CurrentRecorder() *Recorder {
	return recorder
}
