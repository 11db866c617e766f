// Package testutil provides shared test helpers for RiskNet.
package testutil

import (
	"strings"
	"sync"

	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
)

// RecordingLogger implements logging.Logger and captures every entry so
// tests can assert on what was logged.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is one captured log line.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// NewRecordingLogger returns an empty recorder.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) record(level, msg string, fields []logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

func (l *RecordingLogger) Debug(msg string, fields ...logging.Field) { l.record("debug", msg, fields) }
func (l *RecordingLogger) Info(msg string, fields ...logging.Field)  { l.record("info", msg, fields) }
func (l *RecordingLogger) Warn(msg string, fields ...logging.Field)  { l.record("warn", msg, fields) }
func (l *RecordingLogger) Error(msg string, fields ...logging.Field) { l.record("error", msg, fields) }
func (l *RecordingLogger) Fatal(msg string, fields ...logging.Field) { l.record("fatal", msg, fields) }

func (l *RecordingLogger) With(_ ...logging.Field) logging.Logger { return l }
func (l *RecordingLogger) Named(_ string) logging.Logger          { return l }

// Entries returns a copy of everything logged so far.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset discards all captured entries.
func (l *RecordingLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Has reports whether an entry at the given level contains the substring.
func (l *RecordingLogger) Has(level, substring string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Level == level && strings.Contains(e.Message, substring) {
			return true
		}
	}
	return false
}
