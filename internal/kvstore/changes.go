package kvstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChangeEvent describes one successful write to the store. Subscribers use
// it to re-derive cheap view state (badge counts) without polling storage.
type ChangeEvent struct {
	EventID string    `json:"event_id"`
	Key     string    `json:"key"`
	At      time.Time `json:"at"`
}

// ChangeHandler receives change events. Handlers run synchronously on the
// writing goroutine and must not block.
type ChangeHandler func(ChangeEvent)

// Notifier is an in-process change feed. It notifies same-process
// subscribers only; concurrent writers sharing the same durable medium are
// not reconciled, they are merely prompted to re-read.
type Notifier struct {
	mu       sync.Mutex
	handlers []ChangeHandler
}

// NewNotifier creates an empty change feed.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a handler for all subsequent writes.
func (n *Notifier) Subscribe(h ChangeHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, h)
}

// publish fans a change event out to all handlers.
func (n *Notifier) publish(key string) {
	n.mu.Lock()
	handlers := make([]ChangeHandler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.Unlock()

	event := ChangeEvent{
		EventID: uuid.New().String(),
		Key:     key,
		At:      time.Now(),
	}
	for _, h := range handlers {
		h(event)
	}
}
