package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"compress-bot/pkg/config"
)

// Logger wraps a logrus instance so the rest of the service does not depend
// on the logging library directly.
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

var (
	globalMu     sync.RWMutex
	globalLogger = &Logger{entry: logrus.StandardLogger()}
)

// NewLogger builds a logger from service configuration.
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Log.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger := &Logger{entry: l}
	switch strings.ToLower(cfg.Log.Output) {
	case "file":
		if cfg.Log.Filename != "" {
			if f, err := os.OpenFile(cfg.Log.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				l.SetOutput(io.MultiWriter(os.Stdout, f))
				logger.file = f
			}
		}
	default:
		l.SetOutput(os.Stdout)
	}

	return logger
}

// SetGlobalLogger installs the logger used by the package-level helpers.
func SetGlobalLogger(l *Logger) {
	if l == nil {
		return
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Close flushes and closes any log file held by the logger.
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func global() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger.entry
}

// Debug logs a message with structured fields at debug level.
func Debug(msg string, fields map[string]interface{}) {
	global().WithFields(fields).Debug(msg)
}

// Info logs a message with structured fields at info level.
func Info(msg string, fields map[string]interface{}) {
	global().WithFields(fields).Info(msg)
}

// Warn logs a message with structured fields at warn level.
func Warn(msg string, fields map[string]interface{}) {
	global().WithFields(fields).Warn(msg)
}

// Error logs a message with structured fields at error level.
func Error(msg string, fields map[string]interface{}) {
	global().WithFields(fields).Error(msg)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	global().Infof(format, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) {
	global().Warnf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	global().Errorf(format, args...)
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) {
	global().Debugf(format, args...)
}

// Fatal logs the message and exits the process.
func Fatal(msg string) {
	global().Fatal(msg)
}
