package pubsub

import (
	"context"
	"slices"
	"sync"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
)

// Mailbox keeps the topic subscriptions of one participant and an unbounded
// FIFO of inbound messages. It is safe for concurrent use.
type Mailbox struct {
	mu      sync.Mutex
	subs    map[string][]subscription
	nextSub int
	queue   []Message
	wake    chan struct{}
}

type subscription struct {
	id      int
	handler Handler
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		subs: make(map[string][]subscription),
		wake: make(chan struct{}, 1),
	}
}

// Subscribe registers h for topic and returns a function that removes it.
func (m *Mailbox) Subscribe(topic string, h Handler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSub++
	id := m.nextSub
	m.subs[topic] = append(m.subs[topic], subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.subs[topic] = slices.DeleteFunc(m.subs[topic], func(s subscription) bool { return s.id == id })
			if len(m.subs[topic]) == 0 {
				delete(m.subs, topic)
			}
		})
	}
}

// Subscribed reports whether any handler listens on topic.
func (m *Mailbox) Subscribed(topic string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[topic]) > 0
}

// Topics returns the subscribed topics.
func (m *Mailbox) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	topics := make([]string, 0, len(m.subs))
	for t := range m.subs {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

// Deliver enqueues msg for the next Drain.
func (m *Mailbox) Deliver(msg Message) {
	m.mu.Lock()
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued messages.
func (m *Mailbox) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Drain hands every queued message, in arrival order, to the handlers that
// are subscribed to its topic at delivery time. Messages enqueued while
// draining are delivered in the same call.
func (m *Mailbox) Drain(ctx context.Context) int {
	delivered := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return delivered
		}
		msg := m.queue[0]
		m.queue[0] = Message{}
		m.queue = m.queue[1:]
		handlers := slices.Clone(m.subs[msg.Topic])
		m.mu.Unlock()

		if len(handlers) == 0 {
			ctxlog.FromContext(ctx).Debug("Dropping message without subscribers.", "topic", msg.Topic, "origin", msg.Origin)
		}
		for _, s := range handlers {
			s.handler(ctx, msg)
		}
		delivered++
	}
}

// Run drains whenever messages arrive until ctx is done.
func (m *Mailbox) Run(ctx context.Context) error {
	for {
		m.Drain(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.wake:
		}
	}
}
