package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	messages []Message
}

func (r *received) handler(_ context.Context, msg Message) {
	r.messages = append(r.messages, msg)
}

func (r *received) bodies() []string {
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = string(m.Body)
	}
	return out
}

func TestHubExcludesOriginAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	a, b, c := hub.Channel("a"), hub.Channel("b"), hub.Channel("c")

	var gotA, gotB, gotC received
	for _, tc := range []struct {
		ch  *Channel
		rcv *received
	}{{a, &gotA}, {b, &gotB}, {c, &gotC}} {
		_, err := tc.ch.Subscribe("doc", tc.rcv.handler)
		require.NoError(t, err)
	}

	require.NoError(t, a.Publish(ctx, "doc", []byte("1")))
	require.NoError(t, a.Publish(ctx, "doc", []byte("2")))
	require.NoError(t, b.Publish(ctx, "doc", []byte("3")))

	assert.Equal(t, 1, a.Pending(), "a only receives b's message")
	assert.Equal(t, 2, b.Pending())
	assert.Empty(t, gotB.messages, "nothing is delivered before draining")

	assert.Equal(t, 1, a.Drain(ctx))
	assert.Equal(t, 2, b.Drain(ctx))
	assert.Equal(t, 3, c.Drain(ctx))

	assert.Equal(t, []string{"3"}, gotA.bodies())
	assert.Equal(t, []string{"1", "2"}, gotB.bodies())
	assert.Equal(t, []string{"1", "2", "3"}, gotC.bodies())
	assert.Equal(t, "a", gotB.messages[0].Origin)
	assert.Equal(t, 0, c.Drain(ctx))
}

func TestHubTopicsAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	a, b := hub.Channel("a"), hub.Channel("b")
	assert.Same(t, a, hub.Channel("a"))
	assert.Equal(t, []string{"a", "b"}, hub.Channels())

	var got received
	unsubscribe, err := b.Subscribe("one", got.handler)
	require.NoError(t, err)

	require.NoError(t, a.Publish(ctx, "two", []byte("ignored")))
	assert.Equal(t, 0, b.Pending(), "unsubscribed topics are not queued")

	require.NoError(t, a.Publish(ctx, "one", []byte("kept")))
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, b.Drain(ctx), "queued message is drained even without handlers")
	assert.Empty(t, got.messages)

	require.NoError(t, a.Publish(ctx, "one", []byte("late")))
	assert.Equal(t, 0, b.Pending())
}

func TestChannelClose(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	a, b := hub.Channel("a"), hub.Channel("b")
	var got received
	_, err := b.Subscribe("doc", got.handler)
	require.NoError(t, err)

	b.Close()
	require.NoError(t, a.Publish(ctx, "doc", []byte("x")))
	assert.Equal(t, 0, b.Pending())
	assert.Equal(t, []string{"a"}, hub.Channels())
}

func TestChannelRejectsBadInput(t *testing.T) {
	hub := NewHub()
	a := hub.Channel("a")

	require.Error(t, a.Publish(context.Background(), "", nil))
	_, err := a.Subscribe("", func(context.Context, Message) {})
	require.Error(t, err)
	_, err = a.Subscribe("doc", nil)
	require.Error(t, err)
}

func TestChannelRunDeliversUntilCancelled(t *testing.T) {
	hub := NewHub()
	a, b := hub.Channel("a"), hub.Channel("b")

	delivered := make(chan string, 4)
	_, err := b.Subscribe("doc", func(_ context.Context, msg Message) {
		delivered <- string(msg.Body)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.NoError(t, a.Publish(context.Background(), "doc", []byte("x")))
	select {
	case body := <-delivered:
		assert.Equal(t, "x", body)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered by Run")
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
