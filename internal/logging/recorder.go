package logging

import (
	"sync"

	"github.com/arloliu/txroute/types"
)

// Entry is one message captured by a Recorder.
type Entry struct {
	Level  string
	Msg    string
	Fields []any
}

// Recorder is a logger that keeps every message in memory.
//
// It is used by tests to assert on emitted events.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ types.Logger = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level, msg string, kv []any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: kv})
}

// Debug records the message at debug level.
func (r *Recorder) Debug(msg string, kv ...any) { r.record("debug", msg, kv) }

// Info records the message at info level.
func (r *Recorder) Info(msg string, kv ...any) { r.record("info", msg, kv) }

// Warn records the message at warn level.
func (r *Recorder) Warn(msg string, kv ...any) { r.record("warn", msg, kv) }

// Error records the message at error level.
func (r *Recorder) Error(msg string, kv ...any) { r.record("error", msg, kv) }

// Fatal records the message at fatal level.
func (r *Recorder) Fatal(msg string, kv ...any) { r.record("fatal", msg, kv) }

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)

	return out
}

// Count returns how many entries carry msg.
func (r *Recorder) Count(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.Msg == msg {
			n++
		}
	}

	return n
}
