package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ayman-93/supabase-task-app/internal/models"
)

// ChangeKind identifies the kind of row-level change a notification describes.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// Change is a raw task change notification. It carries the bare row, not the
// joined read model; consumers re-fetch the joined row when they need it.
type Change struct {
	ID   string      `json:"id"`
	Kind ChangeKind  `json:"kind"`
	Task models.Task `json:"task"`
}

// Bus fans task change notifications out to all subscribers in publish order.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[chan Change]struct{}),
	}
}

// Publish delivers a change to every subscriber. Each subscriber channel
// receives changes in the order they were published.
func (b *Bus) Publish(kind ChangeKind, task models.Task) {
	change := Change{
		ID:   uuid.NewString(),
		Kind: kind,
		Task: task,
	}

	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- change:
		default:
			// subscriber is behind; drop to avoid blocking the publisher
		}
	}
	b.mu.RUnlock()
}

// Subscribe returns a buffered channel that receives all future changes.
func (b *Bus) Subscribe() chan Change {
	ch := make(chan Change, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Change) {
	b.mu.Lock()
	_, ok := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}
