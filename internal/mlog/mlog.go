// Package mlog implements the leveled diagnostic logger used by every
// backend and by the command-line front-end. Wire format and level
// gating follow the original driver's stderr diagnostics exactly, with
// an optional rotating file sink layered on top.
package mlog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is one of the four diagnostic severities.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	FAIL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case FAIL:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Logger writes "** mdbfs: LEVEL: message" lines to stderr, and
// optionally mirrors them to a rotated log file.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	debug   bool
	rotator *lumberjack.Logger
}

// Default is the process-wide logger, matching the original driver's
// single global diagnostic stream. DEBUG lines are enabled when
// MDBFS_DEBUG is non-empty at startup.
var Default = New(os.Getenv("MDBFS_DEBUG") != "")

// New builds a Logger writing to stderr. debug enables DEBUG-level lines.
func New(debug bool) *Logger {
	return &Logger{out: os.Stderr, debug: debug}
}

// SetLogFile adds a rotating file sink alongside stderr. Passing an empty
// path disables the file sink.
func (l *Logger) SetLogFile(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if path == "" {
		l.rotator = nil
		l.out = os.Stderr
		return
	}
	l.rotator = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	l.out = io.MultiWriter(os.Stderr, l.rotator)
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level == DEBUG && !l.debug {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "** mdbfs: %s: %s\n", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Fail(format string, args ...interface{})  { l.log(FAIL, format, args...) }

// Debug etc. log through the process-wide Default logger.
func Debug(format string, args ...interface{}) { Default.Debug(format, args...) }
func Info(format string, args ...interface{})  { Default.Info(format, args...) }
func Warn(format string, args ...interface{})  { Default.Warn(format, args...) }
func Fail(format string, args ...interface{})  { Default.Fail(format, args...) }
