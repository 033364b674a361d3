// Package events provides the pub/sub bus used to notify observers of scan
// and ranking outcomes, plus an append-only event log.
package events

import (
	"sync"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// EventTopTaskChanged is published when the ranker selects a top task.
	EventTopTaskChanged EventType = "top_task_changed"
	// EventTopTaskCleared is published when no tier produced a match.
	EventTopTaskCleared EventType = "top_task_cleared"
	// EventScanCompleted is published after a full reload of the task set.
	EventScanCompleted EventType = "scan_completed"
	// EventVaultChanged is published when the watcher observes a document change.
	EventVaultChanged EventType = "vault_changed"
)

// Event is one published notification.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      map[string]interface{}
}

// Subscriber receives events for the type it subscribed to.
type Subscriber func(Event)

// Bus is a non-blocking pub/sub bus. Delivery is asynchronous through a
// buffered channel per subscriber; when a subscriber falls behind and its
// channel fills up, further events are dropped for that subscriber rather
// than blocking the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]chan Event
	bufferSize  int
}

// NewBus creates a bus with the given per-subscriber buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers fn for eventType and returns an unsubscribe function.
// fn runs on a dedicated goroutine; a panic in fn is swallowed so one broken
// subscriber cannot take the bus down.
func (b *Bus) Subscribe(eventType EventType, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)

	go func() {
		for event := range ch {
			deliver(fn, event)
		}
	}()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subscribers[eventType]
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
}

func deliver(fn Subscriber, event Event) {
	defer func() {
		recover()
	}()
	fn(event)
}

// Publish sends an event to all subscribers of the given type without
// blocking. Events to saturated subscribers are dropped silently.
func (b *Bus) Publish(eventType EventType, data map[string]interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	for _, ch := range b.subscribers[eventType] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes all subscriber channels and clears subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, eventType)
	}
}
