package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
)

// subscriberBuffer is the number of undelivered events kept per subscriber.
// Events beyond it are dropped: consumers recompute their state wholesale on
// any event, so a pending one already covers the dropped ones.
const subscriberBuffer = 16

type broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan models.AuthStateChange
	nextID uint64
	done   chan struct{}
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{
		subs: make(map[uint64]chan models.AuthStateChange),
		done: make(chan struct{}),
	}
}

// subscribe registers a subscriber whose first event is initial. The
// channel is closed when ctx ends or the broadcaster is closed.
func (b *broadcaster) subscribe(ctx context.Context, initial models.AuthStateChange) <-chan models.AuthStateChange {
	ch := make(chan models.AuthStateChange, subscriberBuffer)
	ch <- initial

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.remove(id)
		case <-b.done:
		}
	}()

	return ch
}

func (b *broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *broadcaster) publish(ev models.AuthStateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
