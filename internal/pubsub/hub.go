package pubsub

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
)

// Hub is an in-process broker connecting any number of Channels, one per
// replica. It is safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	order    []string
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{channels: make(map[string]*Channel)}
}

// Channel returns the channel registered under id, creating it on first use.
func (h *Hub) Channel(id string) *Channel {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.channels[id]; ok {
		return c
	}
	c := &Channel{hub: h, id: id, mailbox: NewMailbox()}
	h.channels[id] = c
	h.order = append(h.order, id)
	return c
}

// Channels returns the ids of registered channels in registration order.
func (h *Hub) Channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.order)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels, id)
	h.order = slices.DeleteFunc(h.order, func(o string) bool { return o == id })
}

// publish enqueues msg on every other channel subscribed to its topic. The
// hub lock is held for the whole fan-out so that every receiver sees
// messages from one publisher in publish order.
func (h *Hub) publish(msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	receivers := 0
	for _, id := range h.order {
		if id == msg.Origin {
			continue
		}
		c := h.channels[id]
		if !c.mailbox.Subscribed(msg.Topic) {
			continue
		}
		c.mailbox.Deliver(msg)
		receivers++
	}
	return receivers
}

// Channel is one participant attached to a Hub. It implements Bus and
// Drainer.
type Channel struct {
	hub     *Hub
	id      string
	mailbox *Mailbox
}

var (
	_ Bus     = (*Channel)(nil)
	_ Drainer = (*Channel)(nil)
)

// ID implements Bus.
func (c *Channel) ID() string { return c.id }

// Publish implements Bus.
func (c *Channel) Publish(ctx context.Context, topic string, body []byte) error {
	if topic == "" {
		return fmt.Errorf("publish from %q: empty topic", c.id)
	}
	msg := Message{Topic: topic, Origin: c.id, Body: slices.Clone(body)}
	receivers := c.hub.publish(msg)
	ctxlog.FromContext(ctx).Debug("Message published.", "channel", c.id, "topic", topic, "receivers", receivers, "bytes", len(body))
	return nil
}

// Subscribe implements Bus.
func (c *Channel) Subscribe(topic string, h Handler) (func(), error) {
	if topic == "" {
		return nil, fmt.Errorf("subscribe on %q: empty topic", c.id)
	}
	if h == nil {
		return nil, fmt.Errorf("subscribe on %q: nil handler", c.id)
	}
	return c.mailbox.Subscribe(topic, h), nil
}

// Pending returns the number of messages waiting to be drained.
func (c *Channel) Pending() int { return c.mailbox.Pending() }

// Drain implements Drainer.
func (c *Channel) Drain(ctx context.Context) int { return c.mailbox.Drain(ctx) }

// Run implements Drainer.
func (c *Channel) Run(ctx context.Context) error { return c.mailbox.Run(ctx) }

// Close detaches the channel from its hub. Queued messages are kept and can
// still be drained.
func (c *Channel) Close() {
	c.hub.remove(c.id)
}
