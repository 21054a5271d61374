package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBrokerRelaysBetweenInstances(t *testing.T) {
	mr := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newClient := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		return rdb
	}

	// The receiving instance: a hub with a display, fed by its broker.
	hub, server := startHub(t)
	listener := NewRedisBroker(newClient(), hub)
	listenErr := make(chan error, 1)
	go func() { listenErr <- listener.Listen(ctx) }()

	select {
	case <-listener.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not ready")
	}

	conn, _, err := dial(t, server, "")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	// Another instance publishes without a local hub of its own.
	publisher := NewRedisBroker(newClient(), NewHub(nil))
	require.NoError(t, publisher.Publish(ctx, textContent("From elsewhere")))

	got := readContent(t, conn)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "From elsewhere", got.Lines[0].Text)

	cancel()
	select {
	case err := <-listenErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}
