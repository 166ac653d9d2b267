package testutil

import (
	"context"
	"sync"

	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/samber/lo"
)

// InMemoryPublisher records published events for assertions
type InMemoryPublisher struct {
	mu     sync.RWMutex
	events []publisher.Event
}

var _ publisher.Publisher = (*InMemoryPublisher)(nil)

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(_ context.Context, events ...publisher.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *InMemoryPublisher) Close() error { return nil }

// Events returns the published events of type t, or all when t is empty.
func (p *InMemoryPublisher) Events(t publisher.EventType) []publisher.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return lo.Filter(p.events, func(e publisher.Event, _ int) bool {
		return t == "" || e.Type == t
	})
}

func (p *InMemoryPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
