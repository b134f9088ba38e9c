package engine

import (
	"sync"

	"github.com/bissquit/incident-conductor/internal/domain"
)

// TopicGlobal subscribes to events of every incident plus list-changed
// notifications.
const TopicGlobal = "*"

// Subscription is a single-consumer ordered queue of bus messages. The
// channel is closed when the subscription is cancelled or its topic is
// closed.
type Subscription struct {
	topic string
	ch    chan domain.Message
}

// Topic returns the topic this subscription is attached to.
func (s *Subscription) Topic() string {
	return s.topic
}

// Messages returns the receive channel of the subscription.
func (s *Subscription) Messages() <-chan domain.Message {
	return s.ch
}

// Bus fans out realtime messages to live subscribers. Delivery is
// best-effort and never blocks the publisher: a subscriber whose queue
// is full loses the message.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
}

// NewBus creates a bus with the given per-subscriber queue size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe attaches a new subscription to a topic: a specific incident
// id or TopicGlobal. Repeated subscribes to the same topic are
// independent subscriptions.
func (b *Bus) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan domain.Message, b.buffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[topic] = set
	}
	set[sub] = struct{}{}
	busSubscribers.Inc()
	return sub
}

// Unsubscribe detaches a subscription and closes its channel.
// Safe to call for a subscription already removed by CloseTopic.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[sub.topic]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.topic)
	}
	close(sub.ch)
	busSubscribers.Dec()
}

// Publish delivers a message to all subscribers of the topic. Messages
// on an incident topic are additionally delivered to global
// subscribers. Channel sends happen under the read lock so a message is
// never sent on a channel being closed.
func (b *Bus) Publish(topic string, msg domain.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.deliver(topic, msg)
	if topic != TopicGlobal {
		b.deliver(TopicGlobal, msg)
	}
}

func (b *Bus) deliver(topic string, msg domain.Message) {
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- msg:
		default:
			busDropped.Inc()
		}
	}
}

// CloseTopic removes every subscription of a topic and closes their
// channels. Used when an incident reaches a terminal state so its
// realtime streams end after the final message.
func (b *Bus) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeTopicLocked(topic)
}

// Close shuts the bus down, ending every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic := range b.subs {
		b.closeTopicLocked(topic)
	}
}

func (b *Bus) closeTopicLocked(topic string) {
	set, ok := b.subs[topic]
	if !ok {
		return
	}
	for sub := range set {
		close(sub.ch)
		busSubscribers.Dec()
	}
	delete(b.subs, topic)
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, set := range b.subs {
		n += len(set)
	}
	return n
}
