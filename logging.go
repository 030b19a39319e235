// logging.go - structured logging interface for the selection driver.
//
// Package-level defaults stay quiet (NewNoOpLogger) so the hot Try/Promise
// loop pays no cost unless a caller opts in via WithLogger. This mirrors the
// "lazy evaluation" approach used throughout the go-utilpkg pack's logging
// layers: check IsEnabled before doing any formatting work.

package chanselect

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel is the severity of a diagnostic emitted by a Driver.
type LogLevel int32

const (
	// LevelDebug carries per-step phase/dispatch diagnostics.
	LevelDebug LogLevel = iota
	// LevelInfo carries selection-level events (commit, terminal phase reached).
	LevelInfo
	// LevelWarn carries unexpected-but-recoverable conditions.
	LevelWarn
	// LevelError is unused by the driver itself, reserved for adapters.
	LevelError
)

// String returns a human-readable representation of the level.
func (l LogLevel) String() string {
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
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// LogEntry is a single structured diagnostic emitted by a Driver.
type LogEntry struct {
	Level LogLevel
	// Category is one of "phase", "dispatch", "deadline", "commit".
	Category    string
	SelectionID int64
	CaseID      string
	Phase       string
	Message     string
	Err         error
	Context     map[string]any
	Timestamp   time.Time
}

// Logger is the structured logging interface a Driver emits diagnostics
// through. A Driver logs only from the goroutine driving it; implementations
// shared by several Drivers must tolerate concurrent calls.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level LogLevel) bool
}

// NewNoOpLogger returns a Logger that discards everything. This is the
// default used by New when no WithLogger option is supplied.
func NewNoOpLogger() Logger { return noOpLogger{} }

type noOpLogger struct{}

func (noOpLogger) Log(LogEntry)          {}
func (noOpLogger) IsEnabled(LogLevel) bool { return false }

// WriterLogger writes pretty (terminal) or line-delimited JSON (otherwise)
// entries to an io.Writer above a minimum level.
type WriterLogger struct {
	level atomic.Int32
	mu    sync.Mutex
	out   io.Writer
}

// NewWriterLogger creates a Logger writing to out at or above level.
func NewWriterLogger(level LogLevel, out io.Writer) *WriterLogger {
	l := &WriterLogger{out: out}
	l.level.Store(int32(level))
	return l
}

// NewDefaultLogger creates a Logger writing to os.Stderr at or above level.
func NewDefaultLogger(level LogLevel) *WriterLogger {
	return NewWriterLogger(level, os.Stderr)
}

// SetLevel dynamically changes the minimum level logged.
func (l *WriterLogger) SetLevel(level LogLevel) { l.level.Store(int32(level)) }

// IsEnabled reports whether level would be logged.
func (l *WriterLogger) IsEnabled(level LogLevel) bool {
	return int32(level) >= l.level.Load()
}

// Log writes a structured log entry.
func (l *WriterLogger) Log(entry LogEntry) {
	if !l.IsEnabled(entry.Level) {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if isTerminal(l.out) {
		l.logPretty(entry)
	} else {
		l.logJSON(entry)
	}
}

func (l *WriterLogger) logPretty(entry LogEntry) {
	fmt.Fprintf(l.out, "%s %s [%-11s] %s",
		entry.Timestamp.Format("15:04:05.000"),
		entry.Level, entry.Category, entry.Message)
	if entry.SelectionID != 0 {
		fmt.Fprintf(l.out, " selection=%d", entry.SelectionID)
	}
	if entry.Phase != "" {
		fmt.Fprintf(l.out, " phase=%s", entry.Phase)
	}
	if entry.CaseID != "" {
		fmt.Fprintf(l.out, " case=%s", entry.CaseID)
	}
	for k, v := range entry.Context {
		fmt.Fprintf(l.out, " %s=%v", k, v)
	}
	if entry.Err != nil {
		fmt.Fprintf(l.out, " err=%v", entry.Err)
	}
	fmt.Fprintln(l.out)
}

func (l *WriterLogger) logJSON(entry LogEntry) {
	fmt.Fprintf(l.out, `{"timestamp":%q,"level":%q,"category":%q,"message":%q`,
		entry.Timestamp.Format(time.RFC3339Nano), entry.Level.String(), entry.Category, entry.Message)
	if entry.SelectionID != 0 {
		fmt.Fprintf(l.out, `,"selection":%d`, entry.SelectionID)
	}
	if entry.Phase != "" {
		fmt.Fprintf(l.out, `,"phase":%q`, entry.Phase)
	}
	if entry.CaseID != "" {
		fmt.Fprintf(l.out, `,"case":%q`, entry.CaseID)
	}
	for k, v := range entry.Context {
		fmt.Fprintf(l.out, `,%q:%q`, k, fmt.Sprint(v))
	}
	if entry.Err != nil {
		fmt.Fprintf(l.out, `,"error":%q`, entry.Err.Error())
	}
	fmt.Fprintln(l.out, "}")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
