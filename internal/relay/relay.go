// Package relay is the socket.io fan-out server that connects replicas
// running socketbus clients.
//
// The protocol has three client events and one server event:
//
//	subscribe   "topic"                       join the topic room
//	unsubscribe "topic"                       leave the topic room
//	publish     {topic, origin, body}         forward to the room
//	message     {topic, origin, body}         delivered to every other member
//
// The relay keeps no history. A replica that joins late only receives
// messages published after it subscribed.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/pubsub"
	"github.com/zishang520/socket.io/v2/socket"
)

// Relay event kinds reported to Metrics.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventRejected   = "rejected"
)

// Metrics receives one observation per handled event.
type Metrics interface {
	ObserveRelayMessage(event string)
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server relays published messages between socket.io clients.
type Server struct {
	io      *socket.Server
	logger  *slog.Logger
	metrics Metrics
}

// New creates a relay. The logger is taken from ctx.
func New(ctx context.Context, opts ...Option) *Server {
	s := &Server{
		io:     socket.NewServer(nil, nil),
		logger: ctxlog.FromContext(ctx).With("component", "relay"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.io.On("connection", s.onConnection)
	return s
}

// Handler returns the socket.io HTTP handler, to be mounted at /socket.io/.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.io.Close(nil)
}

func (s *Server) onConnection(clients ...any) {
	client, ok := clients[0].(*socket.Socket)
	if !ok {
		return
	}
	logger := s.logger.With("sid", client.Id())
	logger.Info("Client connected.")
	s.observe(EventConnect)

	client.On(pubsub.EventSubscribe, func(args ...any) {
		topic, err := topicArg(args)
		if err != nil {
			s.reject(logger, pubsub.EventSubscribe, err)
			return
		}
		client.Join(socket.Room(topic))
		logger.Debug("Client joined topic.", "topic", topic)
		s.observe(pubsub.EventSubscribe)
	})
	client.On(pubsub.EventUnsubscribe, func(args ...any) {
		topic, err := topicArg(args)
		if err != nil {
			s.reject(logger, pubsub.EventUnsubscribe, err)
			return
		}
		client.Leave(socket.Room(topic))
		logger.Debug("Client left topic.", "topic", topic)
		s.observe(pubsub.EventUnsubscribe)
	})
	client.On(pubsub.EventPublish, func(args ...any) {
		msg, err := pubsub.DecodeEnvelope(args...)
		if err != nil {
			s.reject(logger, pubsub.EventPublish, err)
			return
		}
		if err := client.To(socket.Room(msg.Topic)).Emit(pubsub.EventMessage, pubsub.Envelope(msg)); err != nil {
			logger.Warn("Failed to relay message.", "topic", msg.Topic, "error", err)
			return
		}
		logger.Debug("Message relayed.", "topic", msg.Topic, "origin", msg.Origin, "bytes", len(msg.Body))
		s.observe(pubsub.EventPublish)
	})
	client.On("disconnect", func(reason ...any) {
		logger.Info("Client disconnected.", "reason", reason)
		s.observe(EventDisconnect)
	})
}

func (s *Server) reject(logger *slog.Logger, event string, err error) {
	logger.Warn("Rejecting relay event.", "event", event, "error", err)
	s.observe(EventRejected)
}

func (s *Server) observe(event string) {
	if s.metrics != nil {
		s.metrics.ObserveRelayMessage(event)
	}
}

// topicArg extracts the topic argument of subscribe and unsubscribe.
func topicArg(args []any) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: missing topic", pubsub.ErrBadEnvelope)
	}
	topic, ok := args[0].(string)
	if !ok || topic == "" {
		return "", fmt.Errorf("%w: topic must be a non-empty string", pubsub.ErrBadEnvelope)
	}
	return topic, nil
}
