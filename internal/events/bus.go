// Package events is the in-process event bus shared by a running application
// and its theme. Topics are plain strings; delivery is not durable.
package events

import (
	"context"
	"sync"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
)

// Event is a published payload together with its topic.
type Event struct {
	Topic   string
	Payload any
}

// Bus fans events out to topic subscribers.
//
// Publish blocks until every subscriber has accepted the event or ctx is
// canceled. Close closes all subscription channels.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string]map[uint64]*subscriber
	nextID    atomic.Uint64
	isClosed  atomic.Bool
	closeOnce sync.Once
}

type subscriber struct {
	ch        chan Event
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[uint64]*subscriber)}
}

// Subscribe registers a subscription for topic with the given channel buffer.
// The returned function unsubscribes and closes the channel.
func (b *Bus) Subscribe(topic string, buffer int) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed.Load() {
		sub.close()
		return sub.ch, func() {}
	}

	id := b.nextID.Add(1)
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]*subscriber)
	}
	b.subs[topic][id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if topicSubs, ok := b.subs[topic]; ok {
				delete(topicSubs, id)
				if len(topicSubs) == 0 {
					delete(b.subs, topic)
				}
			}
			b.mu.Unlock()
			sub.close()
		})
	}
}

// SubscriberCount returns the number of active subscribers for topic.
func (b *Bus) SubscriberCount(topic string) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Publish delivers payload to every subscriber of topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	if topic == "" {
		return ferrors.NewError(ferrors.CategoryValidation, "event topic cannot be empty").Build()
	}
	if b.isClosed.Load() {
		return ferrors.RuntimeError("event bus is closed").WithContext("topic", topic).Build()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	evt := Event{Topic: topic, Payload: payload}
	for _, s := range b.subs[topic] {
		select {
		case s.ch <- evt:
		case <-ctx.Done():
			return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "event publish canceled").
				WithContext("topic", topic).
				Build()
		}
	}
	return nil
}

// Close closes the bus and all subscription channels.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.isClosed.Store(true)

		b.mu.Lock()
		toClose := make([]*subscriber, 0, len(b.subs))
		for _, topicSubs := range b.subs {
			for _, s := range topicSubs {
				toClose = append(toClose, s)
			}
		}
		b.subs = make(map[string]map[uint64]*subscriber)
		b.mu.Unlock()

		for _, s := range toClose {
			s.close()
		}
	})
}
