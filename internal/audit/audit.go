// Package audit keeps an in-memory trail of recent requests. The recorder is
// an injected bounded queue with an explicit capacity and a drop-oldest
// eviction policy; it is the only shared mutable state the transport layer
// touches, guarded by a single mutex.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded request.
type Entry struct {
	Time     time.Time     `json:"time"`
	Method   string        `json:"method"`
	Path     string        `json:"path"`
	Status   int           `json:"status"`
	ActorID  uuid.UUID     `json:"actor_id,omitempty"`
	ClientIP string        `json:"client_ip,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Recorder is a fixed-capacity ring of audit entries.
type Recorder struct {
	mu       sync.Mutex
	entries  []Entry
	head     int // index of the oldest entry
	size     int
	capacity int
}

// NewRecorder creates a recorder holding at most capacity entries.
// A non-positive capacity gets a small default.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 100
	}
	return &Recorder{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Record appends an entry, evicting the oldest when full.
func (r *Recorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size < r.capacity {
		r.entries[(r.head+r.size)%r.capacity] = e
		r.size++
		return
	}

	r.entries[r.head] = e
	r.head = (r.head + 1) % r.capacity
}

// Snapshot returns the recorded entries, oldest first.
func (r *Recorder) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.entries[(r.head+i)%r.capacity]
	}
	return out
}

// Len returns the number of entries currently held.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Capacity returns the fixed capacity.
func (r *Recorder) Capacity() int {
	return r.capacity
}
