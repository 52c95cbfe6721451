package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// TODO: Consider log rotation

var defaultLogger *slog.Logger

// getLogFilePath determines the path for the application log file based on XDG spec.
func getLogFilePath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}

	logDir := filepath.Join(stateDir, "parley")
	logFile := filepath.Join(logDir, "parley.log")
	return logFile, nil
}

// setupLogging configures the default logger. Standard output is reserved for
// command results, so log lines go to a state-dir file and, optionally, stderr.
func setupLogging(logToFile bool, logToStderr bool, level slog.Level) error {
	var writers []io.Writer

	if logToFile {
		logFilePath, err := getLogFilePath()
		if err != nil {
			// Log error to stderr since file logging failed.
			fmt.Fprintf(os.Stderr, "Error determining log file path: %v. File logging disabled.\n", err)
			// Continue without file logging if path fails
		} else {
			logDir := filepath.Dir(logFilePath)
			// Create directory with appropriate permissions (0750: user rwx, group rx, others ---)
			if err := os.MkdirAll(logDir, 0750); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating log directory %s: %v. File logging disabled.\n", logDir, err)
			} else {
				// Open file for appending (0640: user rw, group r, others ---)
				file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error opening log file %s: %v. File logging disabled.\n", logFilePath, err)
				} else {
					// The handle stays open for the process lifetime; the OS
					// closes it on exit, which is fine for a one-shot CLI.
					writers = append(writers, file)
				}
			}
		}
	}

	if logToStderr {
		writers = append(writers, os.Stderr)
	}

	var finalWriter io.Writer
	if len(writers) == 0 {
		// Every writer failed to initialize; drop log output rather than
		// contaminate stdout, which carries the JSON result.
		finalWriter = io.Discard
	} else if len(writers) == 1 {
		finalWriter = writers[0]
	} else {
		finalWriter = io.MultiWriter(writers...)
	}

	// Using JSON handler for structured logging consistency.
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(finalWriter, opts)
	defaultLogger = slog.New(handler)

	return nil
}

// InitLogger initializes the logger. Verbose mode mirrors log lines to stderr
// and lowers the level to debug; otherwise logs go only to the state-dir file.
// It MUST be called once at the beginning of the application.
func InitLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	err := setupLogging(true, verbose, level)
	if err != nil {
		// If setup fails, fall back to basic stderr logging so errors stay visible.
		fmt.Fprintf(os.Stderr, "Logger initialization failed: %v. Falling back to basic stderr logging.\n", err)
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
		defaultLogger = slog.New(handler)
	}
}

// SetLogger allows replacing the default logger instance.
// This could be used for testing or allowing different parts of the application
// to use specialized loggers.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

// checkLogger ensures the logger is initialized before use, preventing nil panics.
func checkLogger() {
	if defaultLogger == nil {
		InitLogger(false)
	}
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	checkLogger()
	defaultLogger.Info(msg, args...)
}

// Infof logs a formatted informational message.
// Note: slog prefers structured logging over formatted strings.
// This function is kept for compatibility but using Info with key-value pairs is recommended.
func Infof(format string, v ...interface{}) {
	checkLogger()
	defaultLogger.Info(fmt.Sprintf(format, v...))
}

// Error logs an error message.
func Error(msg string, args ...any) {
	checkLogger()
	defaultLogger.Error(msg, args...)
}

// Errorf logs a formatted error message.
// Note: slog prefers structured logging over formatted strings.
// This function is kept for compatibility but using Error with key-value pairs is recommended.
func Errorf(format string, v ...interface{}) {
	checkLogger()
	defaultLogger.Error(fmt.Sprintf(format, v...))
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	checkLogger()
	defaultLogger.Debug(msg, args...)
}

// Debugf logs a formatted debug message.
// Note: slog prefers structured logging over formatted strings.
func Debugf(format string, v ...interface{}) {
	checkLogger()
	defaultLogger.Debug(fmt.Sprintf(format, v...))
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	checkLogger()
	defaultLogger.Warn(msg, args...)
}

// Warnf logs a formatted warning message.
// Note: slog prefers structured logging over formatted strings.
func Warnf(format string, v ...interface{}) {
	checkLogger()
	defaultLogger.Warn(fmt.Sprintf(format, v...))
}
