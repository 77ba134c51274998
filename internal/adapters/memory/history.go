// Package memory provides in-process implementations of the tether ports.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tether/pkg/domain"
)

// DefaultCapacity is the number of records kept when no capacity is given.
const DefaultCapacity = 200

// History is a bounded, newest-first invocation journal held in memory.
// When full, the oldest record is dropped.
type History struct {
	mu       sync.RWMutex
	records  []domain.Record
	next     int
	full     bool
	capacity int
}

// NewHistory creates a ring of the given capacity (DefaultCapacity when <= 0).
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		records:  make([]domain.Record, capacity),
		capacity: capacity,
	}
}

// Append stores rec, evicting the oldest record when the ring is full.
func (h *History) Append(_ context.Context, rec domain.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = rec
	h.next = (h.next + 1) % h.capacity
	if h.next == 0 {
		h.full = true
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *History) Recent(_ context.Context, limit int) ([]domain.Record, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	size := h.next
	if h.full {
		size = h.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]domain.Record, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (h.next - 1 - i + h.capacity) % h.capacity
		out = append(out, h.records[idx])
	}
	return out, nil
}

// Len returns the number of retained records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return h.capacity
	}
	return h.next
}
