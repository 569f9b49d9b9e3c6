// internal/history/history.go
package history

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the number of positions kept for display.
const DefaultCapacity = 300

// ErrEmptyBuffer is returned when duplication is requested before
// anything was recorded.
var ErrEmptyBuffer = errors.New("history: nothing recorded yet")

// Buffer is a bounded, newest-first sequence of raw positions.
// Not safe for concurrent use: one owner pushes, others read snapshots.
type Buffer struct {
	values   []uint32
	capacity int
}

// New creates an empty buffer holding at most capacity values.
func New(capacity int) (*Buffer, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("history: capacity must be >= 1, got %d", capacity)
	}
	return &Buffer{
		values:   make([]uint32, 0, capacity),
		capacity: capacity,
	}, nil
}

// Push prepends v and drops the oldest values beyond capacity.
func (b *Buffer) Push(v uint32) {
	if len(b.values) < b.capacity {
		b.values = append(b.values, 0)
	}
	copy(b.values[1:], b.values[:len(b.values)-1])
	b.values[0] = v
}

// Duplicate pushes the newest value again, keeping the cadence on a
// failed cycle.
func (b *Buffer) Duplicate() error {
	v, ok := b.Latest()
	if !ok {
		return ErrEmptyBuffer
	}
	b.Push(v)
	return nil
}

// Latest returns the newest value, if any.
func (b *Buffer) Latest() (uint32, bool) {
	if len(b.values) == 0 {
		return 0, false
	}
	return b.values[0], true
}

// Snapshot returns a newest-first copy.
func (b *Buffer) Snapshot() []uint32 {
	out := make([]uint32, len(b.values))
	copy(out, b.values)
	return out
}

func (b *Buffer) Len() int { return len(b.values) }

func (b *Buffer) Cap() int { return b.capacity }
