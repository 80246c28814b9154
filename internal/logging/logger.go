// Package logging provides leveled logging and growth event tracing.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - An EventLogger for structured JSONL traces of topology mutations (events.jsonl)
package logging

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// EventsFile is the name of the growth event trace inside the output directory.
const EventsFile = "events.jsonl"

// LevelTrace is a custom slog level below Debug. At this level every
// per-segment force computation is logged.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a level ParseLevel understands.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "", "info", "warn", "warning", "debug", "trace":
		return true
	}
	return false
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// EventLogger appends growth events to a JSONL file, one object per line.
// Every line carries the run ID and the current step. It is safe for
// concurrent use, and a nil EventLogger is a valid no-op logger.
type EventLogger struct {
	mu    sync.Mutex
	file  *os.File
	w     *bufio.Writer
	run   string
	step  int
	count int
}

// NewEventLogger creates an event logger writing to dir/events.jsonl.
// Below debug level it returns nil and creates no file. It also returns nil
// if the file cannot be opened.
func NewEventLogger(dir, level, runID string) *EventLogger {
	if ParseLevel(level) > slog.LevelDebug {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, EventsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &EventLogger{file: f, w: bufio.NewWriter(f), run: runID}
}

// SetStep sets the step stamped on subsequent events.
func (l *EventLogger) SetStep(step int) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.step = step
	l.mu.Unlock()
}

// Log buffers one event. The caller's map is not mutated.
func (l *EventLogger) Log(event map[string]any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.w == nil {
		return
	}

	entry := make(map[string]any, len(event)+2)
	for k, v := range event {
		entry[k] = v
	}
	entry["run"] = l.run
	entry["step"] = l.step

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	if _, err := l.w.Write(data); err == nil {
		l.count++
	}
}

// Count returns the number of events logged so far.
func (l *EventLogger) Count() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Flush writes buffered events to the file.
func (l *EventLogger) Flush() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.w == nil {
		return nil
	}
	return l.w.Flush()
}

// Close flushes and closes the file. Further calls to Log are no-ops.
func (l *EventLogger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	flushErr := l.w.Flush()
	closeErr := l.file.Close()
	l.file, l.w = nil, nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
