package logger

import (
	"log"
	"strings"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

// ParseLevel accepts either the numeric level used by the -log flag or its name.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(s) {
	case "0", "none":
		return LogLevelNone, true
	case "1", "error":
		return LogLevelError, true
	case "2", "warn", "warning":
		return LogLevelWarning, true
	case "3", "info":
		return LogLevelInfo, true
	case "4", "debug":
		return LogLevelDebug, true
	default:
		return LogLevelInfo, false
	}
}

type Logger struct {
	logger *log.Logger
	level  LogLevel
	tag    string
}

// NewLogger wraps a standard logger. A nil *log.Logger yields a logger that
// discards everything, which is what tests use.
func NewLogger(logger *log.Logger, level LogLevel) *Logger {
	return &Logger{
		logger: logger,
		level:  level,
		tag:    "",
	}
}

// WithTag creates a new logger with a tag prefix
func (l *Logger) WithTag(tag string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		logger: l.logger,
		level:  l.level,
		tag:    tag,
	}
}

func (l *Logger) formatMessage(level string, format string) string {
	if l.tag != "" {
		if level != "" {
			return "[" + l.tag + "] " + level + " " + format
		}
		return "[" + l.tag + "] " + format
	}
	if level != "" {
		return level + " " + format
	}
	return format
}

func (l *Logger) enabled(level LogLevel) bool {
	return l != nil && l.logger != nil && l.level >= level
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LogLevelDebug) {
		l.logger.Printf(l.formatMessage("DEBUG:", format), v...)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.enabled(LogLevelInfo) {
		l.logger.Printf(l.formatMessage("", format), v...)
	}
}

// Printf is an alias for Infof for compatibility
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Infof(format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.enabled(LogLevelWarning) {
		l.logger.Printf(l.formatMessage("WARN:", format), v...)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.enabled(LogLevelError) {
		l.logger.Printf(l.formatMessage("ERROR:", format), v...)
	}
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	if l == nil || l.logger == nil {
		log.Fatalf("FATAL: "+format, v...)
	}
	l.logger.Fatalf(l.formatMessage("FATAL:", format), v...)
}
