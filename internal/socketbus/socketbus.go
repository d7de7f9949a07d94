// Package socketbus implements pubsub.Bus over a socket.io connection to a
// relay server (see internal/relay).
//
// Inbound messages are queued in a pubsub.Mailbox and delivered when the
// owner drains the client, exactly like an in-process pubsub.Channel.
// Topic subscriptions are replayed to the relay after every reconnect.
package socketbus

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/graphkit/internal/ctxlog"
	"github.com/specialistvlad/graphkit/internal/pubsub"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultConnectTimeout bounds the wait for the first connection.
const DefaultConnectTimeout = 15 * time.Second

// Config holds the connection settings of a client.
type Config struct {
	URL                string `validate:"required,url"`
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Client is a socket.io backed pubsub.Bus.
type Client struct {
	id      string
	mailbox *pubsub.Mailbox
	emit    func(event string, args ...any)
	close   func()
	logger  *slog.Logger

	mu sync.Mutex
}

var (
	_ pubsub.Bus     = (*Client)(nil)
	_ pubsub.Drainer = (*Client)(nil)
)

// Dial connects to the relay at cfg.URL and waits for the connection.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("component", "socketbus", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	c := newClient(logger,
		func(event string, args ...any) { io.Emit(event, args...) },
		func() { io.Disconnect() },
	)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})
	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Connected to relay.", "sid", io.Id(), "bus_id", c.id)
		c.resubscribe()
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Warn("Disconnected from relay.", "reason", reason)
	})
	io.On(types.EventName(pubsub.EventMessage), c.receive)

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

func newClient(logger *slog.Logger, emit func(string, ...any), closeFn func()) *Client {
	return &Client{
		id:      uuid.NewString(),
		mailbox: pubsub.NewMailbox(),
		emit:    emit,
		close:   closeFn,
		logger:  logger,
	}
}

// ID implements pubsub.Bus. It is stable across reconnects.
func (c *Client) ID() string { return c.id }

// Publish implements pubsub.Bus.
func (c *Client) Publish(ctx context.Context, topic string, body []byte) error {
	if topic == "" {
		return fmt.Errorf("publish from %q: empty topic", c.id)
	}
	c.emit(pubsub.EventPublish, pubsub.Envelope(pubsub.Message{Topic: topic, Origin: c.id, Body: body}))
	ctxlog.FromContext(ctx).Debug("Message published to relay.", "topic", topic, "bytes", len(body))
	return nil
}

// Subscribe implements pubsub.Bus. The relay is asked to join the topic on
// its first subscription and to leave it when the last one is removed.
func (c *Client) Subscribe(topic string, h pubsub.Handler) (func(), error) {
	if topic == "" {
		return nil, fmt.Errorf("subscribe on %q: empty topic", c.id)
	}
	if h == nil {
		return nil, fmt.Errorf("subscribe on %q: nil handler", c.id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	first := !c.mailbox.Subscribed(topic)
	unsubscribe := c.mailbox.Subscribe(topic, h)
	if first {
		c.emit(pubsub.EventSubscribe, topic)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			unsubscribe()
			if !c.mailbox.Subscribed(topic) {
				c.emit(pubsub.EventUnsubscribe, topic)
			}
		})
	}, nil
}

// Pending returns the number of messages waiting to be drained.
func (c *Client) Pending() int { return c.mailbox.Pending() }

// Drain implements pubsub.Drainer.
func (c *Client) Drain(ctx context.Context) int { return c.mailbox.Drain(ctx) }

// Run implements pubsub.Drainer.
func (c *Client) Run(ctx context.Context) error { return c.mailbox.Run(ctx) }

// Close disconnects from the relay.
func (c *Client) Close() {
	c.close()
}

func (c *Client) resubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, topic := range c.mailbox.Topics() {
		c.emit(pubsub.EventSubscribe, topic)
	}
}

// receive queues a relayed message. The relay never echoes, but messages
// carrying our own origin are dropped anyway.
func (c *Client) receive(args ...any) {
	msg, err := pubsub.DecodeEnvelope(args...)
	if err != nil {
		c.logger.Warn("Discarding relay message.", "error", err)
		return
	}
	if msg.Origin == c.id {
		return
	}
	c.mailbox.Deliver(msg)
}
