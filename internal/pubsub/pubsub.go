// Package pubsub defines the publish/subscribe contract used to propagate
// graph mutations between replicas, plus an in-process implementation.
//
// A Bus delivers a published message to every other participant subscribed
// to the topic, never back to its origin. Delivery is asynchronous: messages
// are queued in the receiver's Mailbox and handed to handlers only when the
// receiver drains it, so a replica applies remote changes at points of its
// own choosing. Order is preserved per receiving channel; there is no
// ordering across channels.
package pubsub

import (
	"context"
)

// Message is one published payload.
type Message struct {
	Topic  string
	Origin string
	Body   []byte
}

// Handler processes a delivered message.
type Handler func(ctx context.Context, msg Message)

// Bus is one participant's view of a pub/sub transport.
type Bus interface {
	// ID identifies this participant. Messages it publishes carry it as
	// Origin and are not delivered back to it.
	ID() string

	// Publish sends body to every other participant subscribed to topic.
	Publish(ctx context.Context, topic string, body []byte) error

	// Subscribe registers h for topic and returns a function that removes it.
	Subscribe(topic string, h Handler) (func(), error)
}

// Drainer is implemented by buses that queue inbound messages until the
// owner drains them.
type Drainer interface {
	// Drain delivers every queued message in arrival order and returns how
	// many were delivered.
	Drain(ctx context.Context) int

	// Run drains continuously until ctx is done.
	Run(ctx context.Context) error
}
