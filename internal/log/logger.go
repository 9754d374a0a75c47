// SPDX-License-Identifier: MIT
// Package log is the tuner's leveled logger. Components prefix their own
// messages ("Session: ...", "UDPPublisher: ...") and log through the
// package-level functions; the level is global and atomic so the analysis
// goroutine can log without locking.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

var currentLevel atomic.Uint32

// Date, time with microseconds. The terminal UI owns stdout, so logs go to
// stderr unless redirected with SetOutput.
var logger = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level atomically.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel gets the current global logging level atomically.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetOutput redirects log output, e.g. to a file while the terminal UI is
// running or to a buffer in tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func shouldLog(level LogLevel) bool {
	return level >= GetLevel()
}

func output(level LogLevel, msg string) {
	if !shouldLog(level) {
		return
	}
	// Pad to the widest level name so messages line up.
	logger.Printf("[%s]%s %s", level, strings.Repeat(" ", 5-len(level.String())), msg)
}

func Debugf(format string, v ...any) { output(LevelDebug, fmt.Sprintf(format, v...)) }
func Infof(format string, v ...any)  { output(LevelInfo, fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...any)  { output(LevelWarn, fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...any) { output(LevelError, fmt.Sprintf(format, v...)) }

func Debug(v ...any) { output(LevelDebug, fmt.Sprint(v...)) }
func Info(v ...any)  { output(LevelInfo, fmt.Sprint(v...)) }
func Warn(v ...any)  { output(LevelWarn, fmt.Sprint(v...)) }
func Error(v ...any) { output(LevelError, fmt.Sprint(v...)) }

// Fatalf logs a formatted fatal message and exits the application.
// Fatal messages are always logged regardless of the current level.
func Fatalf(format string, v ...any) {
	logger.Fatalf("[%s] %s", LevelFatal, fmt.Sprintf(format, v...))
}
