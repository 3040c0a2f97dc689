// Package activitylog keeps a bounded, in-process history of structured log
// entries so recent sync and unsubscribe activity can be queried without
// re-reading log output.
package activitylog

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

const DefaultCapacity = 500

// Entry is one structured activity record.
type Entry struct {
	Time      time.Time              `json:"time"`
	Level     zapcore.Level          `json:"level"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	AgentID   string                 `json:"agent_id,omitempty"`
	TaskID    string                 `json:"task_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Filter narrows Recent results. Zero values match everything.
type Filter struct {
	Component string
	AgentID   string
	TaskID    string
	MinLevel  zapcore.Level
}

func (f Filter) match(e Entry) bool {
	if f.Component != "" && e.Component != f.Component {
		return false
	}
	if f.AgentID != "" && e.AgentID != f.AgentID {
		return false
	}
	if f.TaskID != "" && e.TaskID != f.TaskID {
		return false
	}
	return e.Level >= f.MinLevel
}

// Buffer is a fixed-capacity ring. When full, Push overwrites the oldest entry.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	size    int
	dropped uint64
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]Entry, capacity)}
}

func (b *Buffer) Push(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := (b.start + b.size) % len(b.entries)
	b.entries[idx] = e
	if b.size < len(b.entries) {
		b.size++
		return
	}
	b.start = (b.start + 1) % len(b.entries)
	b.dropped++
}

// Drain returns every retained entry, oldest first, and empties the buffer.
func (b *Buffer) Drain() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.snapshotLocked()
	for i := range b.entries {
		b.entries[i] = Entry{}
	}
	b.start, b.size = 0, 0
	return out
}

// Recent returns up to limit matching entries, oldest first. limit <= 0 means all.
func (b *Buffer) Recent(limit int, f Filter) []Entry {
	b.mu.Lock()
	all := b.snapshotLocked()
	b.mu.Unlock()

	matched := make([]Entry, 0, len(all))
	for _, e := range all {
		if f.match(e) {
			matched = append(matched, e)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func (b *Buffer) Capacity() int {
	return len(b.entries)
}

// Dropped reports how many entries were overwritten since creation.
func (b *Buffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Buffer) snapshotLocked() []Entry {
	out := make([]Entry, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.entries[(b.start+i)%len(b.entries)]
	}
	return out
}
