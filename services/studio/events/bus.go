// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package events is the broadcast mechanism that tells UI observers a
// data kind changed. Signals are named and payload-less; receivers
// re-read the workspace's synchronous getters.
package events

import "sync"

// Event is a payload-less change signal.
type Event string

const (
	// EventDataChanged fires for feed, bank, highlights, stories,
	// playbook, templates, draft, and sprint saves.
	EventDataChanged Event = "data_changed"

	// EventBrainChanged fires for persona record saves, so persona
	// editors can re-render without refetching feed state.
	EventBrainChanged Event = "brain_changed"

	// EventClientChanged fires when the active client switches.
	// Subscribers should fully re-render rather than patch.
	EventClientChanged Event = "client_changed"
)

// subscriberBuffer is how many undelivered events a subscriber can lag
// behind before publishes to it are dropped. Events are invalidation
// signals, so a dropped duplicate costs nothing once one is queued.
const subscriberBuffer = 16

// Bus fans change signals out to subscribers.
//
// Publish never blocks: a subscriber that has fallen subscriberBuffer
// events behind misses the signal. That is acceptable for payload-less
// invalidation and keeps the save path non-blocking.
//
// Thread Safety: safe for concurrent use.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a new subscriber.
//
// Outputs:
//
//	<-chan Event - The subscriber's event channel.
//	func() - Unsubscribe. Must be called when the observer goes away;
//	         it closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish broadcasts an event to all current subscribers without
// blocking.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			// subscriber is lagging; drop
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
