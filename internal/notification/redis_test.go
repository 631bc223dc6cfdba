package notification

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_RelayIntoHub(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	pub := NewRedisPublisher(client, "test:notify:")
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Relay(ctx, hub)

	ch, unsub := hub.Subscribe("u1")
	defer unsub()

	// the relay's PSUBSCRIBE is asynchronous; retry until the round trip works
	deadline := time.After(3 * time.Second)
	for {
		require.NoError(t, pub.Publish(ctx, "u1", Event{Type: "ping", Data: map[string]any{"n": "1"}}))
		select {
		case ev := <-ch:
			require.Equal(t, "ping", ev.Type)
			require.Equal(t, "1", ev.Data["n"])
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("relayed event never arrived")
		}
	}
}

func TestRedisPublisher_PublishWithoutSubscribers(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	pub := NewRedisPublisher(client, "")

	require.NoError(t, pub.Publish(context.Background(), "nobody", Event{Type: "ping"}))
}
