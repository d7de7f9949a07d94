package pubsub

import (
	"errors"
	"fmt"
)

// Event names of the socket.io relay protocol.
const (
	EventSubscribe   = "subscribe"
	EventUnsubscribe = "unsubscribe"
	EventPublish     = "publish"
	EventMessage     = "message"
)

// ErrBadEnvelope is returned when a relay payload cannot be decoded.
var ErrBadEnvelope = errors.New("malformed envelope")

// Envelope renders msg as the JSON-friendly object carried by the publish
// and message events. Bodies travel as strings and must be UTF-8 text.
func Envelope(msg Message) map[string]any {
	return map[string]any{
		"topic":  msg.Topic,
		"origin": msg.Origin,
		"body":   string(msg.Body),
	}
}

// DecodeEnvelope converts the arguments of a publish or message event back
// into a Message.
func DecodeEnvelope(args ...any) (Message, error) {
	if len(args) == 0 {
		return Message{}, fmt.Errorf("%w: no payload", ErrBadEnvelope)
	}
	obj, ok := args[0].(map[string]any)
	if !ok {
		return Message{}, fmt.Errorf("%w: payload is %T, not an object", ErrBadEnvelope, args[0])
	}
	topic, _ := obj["topic"].(string)
	if topic == "" {
		return Message{}, fmt.Errorf("%w: missing topic", ErrBadEnvelope)
	}
	origin, _ := obj["origin"].(string)
	body, ok := obj["body"].(string)
	if !ok {
		return Message{}, fmt.Errorf("%w: body is %T, not a string", ErrBadEnvelope, obj["body"])
	}
	return Message{Topic: topic, Origin: origin, Body: []byte(body)}, nil
}
