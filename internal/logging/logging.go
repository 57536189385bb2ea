// Package logging is a small leveled logger in the shape of syncthing's
// lib/logger: a package-level default logger, short Xxxf helpers, and a
// settable minimum level. No third-party structured logging library appears
// anywhere in the example corpus, so this stays on the standard library log
// package (see DESIGN.md).
package logging

import (
	"fmt"
	"log"
	"os"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger wraps a standard library *log.Logger with a minimum level filter.
type Logger struct {
	out *log.Logger
	min Level
}

// Default is the package-level logger used unless a caller constructs its
// own. Its minimum level can be changed with SetLevel.
var Default = New(os.Stderr, LevelInfo)

// New constructs a Logger writing to w, filtering anything below min.
func New(w interface{ Write([]byte) (int, error) }, min Level) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags), min: min}
}

// SetLevel changes Default's minimum level.
func SetLevel(l Level) { Default.min = l }

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }

func Debugf(format string, args ...interface{}) { Default.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { Default.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Default.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Default.Errorf(format, args...) }
