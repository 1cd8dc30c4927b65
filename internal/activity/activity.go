package activity

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Severity classifies an activity entry.
type Severity int

const (
	// Info is a normal lifecycle event.
	Info Severity = iota
	// Error is a failure operators must look at.
	Error
)

// String returns the upper-case name of the severity.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity is the inverse of Severity.String.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "INFO":
		return Info, nil
	case "ERROR":
		return Error, nil
	default:
		return Info, fmt.Errorf("unknown severity %q", s)
	}
}

// Log is an append-only activity sink. Implementations must be safe for
// concurrent use: the process monitor writes stream lines from goroutines.
type Log interface {
	Add(sev Severity, msg string)
}

// Entry is one recorded activity.
type Entry struct {
	Time     time.Time
	Severity Severity
	Message  string
}

// Discard drops every entry.
var Discard Log = discard{}

type discard struct{}

func (discard) Add(Severity, string) {}

// SlogLog forwards entries to a slog.Logger: Info at info level, Error at
// error level.
type SlogLog struct {
	Logger *slog.Logger
}

// Add implements Log.
func (l SlogLog) Add(sev Severity, msg string) {
	lg := l.Logger
	if lg == nil {
		lg = slog.Default()
	}
	if sev == Error {
		lg.Error(msg, "source", "activity")
		return
	}
	lg.Info(msg, "source", "activity")
}

// Buffer keeps entries in memory.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
}

// Add implements Log.
func (b *Buffer) Add(sev Severity, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, Entry{Time: time.Now(), Severity: sev, Message: msg})
}

// Entries returns a copy of everything recorded so far.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Messages returns the recorded messages of the given severity.
func (b *Buffer) Messages(sev Severity) []string {
	var out []string
	for _, e := range b.Entries() {
		if e.Severity == sev {
			out = append(out, e.Message)
		}
	}
	return out
}

// Multi fans each entry out to every sink in order. Nil sinks are skipped.
func Multi(logs ...Log) Log {
	out := make(multi, 0, len(logs))
	for _, l := range logs {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

type multi []Log

func (m multi) Add(sev Severity, msg string) {
	for _, l := range m {
		l.Add(sev, msg)
	}
}
