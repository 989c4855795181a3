// Package journal is the append-only narrative log shown alongside scenes.
package journal

import (
	"context"
	"fmt"
	"time"
)

// Severity tags a log line for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Entry is a single log line.
type Entry struct {
	Time     time.Time
	Severity Severity
	Text     string
}

// Sink receives every appended entry, e.g. to persist it.
type Sink interface {
	AppendLogLine(ctx context.Context, severity, text string) error
}

// Journal holds the log lines of the running app.
type Journal struct {
	entries []Entry
	sink    Sink
	now     func() time.Time
	// sinkDown is set after a failed persist and cleared by the next success.
	sinkDown bool
}

// New creates an empty journal. sink may be nil.
func New(sink Sink) *Journal {
	return &Journal{sink: sink, now: time.Now}
}

// Info appends an info line.
func (j *Journal) Info(ctx context.Context, format string, args ...any) {
	j.append(ctx, SeverityInfo, format, args...)
}

// Success appends a success line.
func (j *Journal) Success(ctx context.Context, format string, args ...any) {
	j.append(ctx, SeveritySuccess, format, args...)
}

// Warning appends a warning line.
func (j *Journal) Warning(ctx context.Context, format string, args ...any) {
	j.append(ctx, SeverityWarning, format, args...)
}

// Entries returns a copy of all lines, oldest first.
func (j *Journal) Entries() []Entry {
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Tail returns up to n of the most recent lines, oldest first.
func (j *Journal) Tail(n int) []Entry {
	if n <= 0 || n >= len(j.entries) {
		return j.Entries()
	}
	out := make([]Entry, n)
	copy(out, j.entries[len(j.entries)-n:])
	return out
}

// Clear drops all lines from the display. Persisted lines are kept.
func (j *Journal) Clear() {
	j.entries = nil
}

func (j *Journal) append(ctx context.Context, sev Severity, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	j.entries = append(j.entries, Entry{Time: j.now(), Severity: sev, Text: text})

	if j.sink == nil {
		return
	}
	err := j.sink.AppendLogLine(ctx, string(sev), text)
	if err == nil {
		j.sinkDown = false
		return
	}
	if j.sinkDown {
		return
	}
	// Shown once per outage and never sent to the failing sink.
	j.sinkDown = true
	j.entries = append(j.entries, Entry{
		Time:     j.now(),
		Severity: SeverityWarning,
		Text:     fmt.Sprintf("⚠ Log not saved: %v", err),
	})
}
