// Package journal keeps a bounded in-memory history of decoded barcodes
// for the remote view API.
package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one decoded barcode.
type Entry struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Format string    `json:"format"`
	SentAt time.Time `json:"sentAt"`
}

// Journal is a fixed-capacity ring of the most recent scans.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
	now     func() time.Time
}

// New returns a journal holding at most capacity entries. Capacity below
// one is treated as one.
func New(capacity int) *Journal {
	if capacity < 1 {
		capacity = 1
	}
	return &Journal{
		entries: make([]Entry, capacity),
		now:     time.Now,
	}
}

// Record appends a scan, evicting the oldest entry when full.
func (j *Journal) Record(text, format string) Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	e := Entry{
		ID:     uuid.NewString(),
		Text:   text,
		Format: format,
		SentAt: j.now(),
	}
	j.entries[j.next] = e
	j.next++
	if j.next == len(j.entries) {
		j.next = 0
		j.full = true
	}
	return e
}

// Recent returns entries newest first.
func (j *Journal) Recent() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := j.next
	if j.full {
		n = len(j.entries)
	}
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		idx := j.next - 1 - i
		if idx < 0 {
			idx += len(j.entries)
		}
		out = append(out, j.entries[idx])
	}
	return out
}

// Len reports how many entries are stored.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.full {
		return len(j.entries)
	}
	return j.next
}
