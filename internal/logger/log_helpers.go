// Package logger provides the CLI's structured logging: a console handler
// filtered by the configured level plus a full in-memory record for the
// debug log written when a command fails.
package logger

// Info logs an info message using the default logger.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Error logs an error message using the default logger.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Secret masks a credential for logging, keeping only a short prefix.
func Secret(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return v[:4] + "****"
}
