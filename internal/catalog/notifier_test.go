package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overstock-orders/internal/catalog"
)

func TestPublisherAndListenerRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan catalog.StockChange, 1)
	listener := &catalog.Listener{
		Client:  client,
		Channel: "stock.changes",
		Logger:  zerolog.Nop(),
		Handler: func(_ context.Context, change catalog.StockChange) {
			received <- change
		},
	}
	go func() { _ = listener.Run(ctx) }()

	// Give the subscription a moment to establish.
	time.Sleep(50 * time.Millisecond)

	change := catalog.StockChange{ProductID: uuid.New(), NewStock: 4}
	publisher := catalog.Publisher{Client: client, Channel: "stock.changes"}
	require.NoError(t, publisher.Publish(ctx, change))

	select {
	case got := <-received:
		require.Equal(t, change, got)
	case <-time.After(2 * time.Second):
		t.Fatal("stock change was not delivered")
	}
}

func TestListenerSkipsMalformedPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan catalog.StockChange, 1)
	listener := &catalog.Listener{
		Client:  client,
		Channel: "stock.changes",
		Logger:  zerolog.Nop(),
		Handler: func(_ context.Context, change catalog.StockChange) {
			received <- change
		},
	}
	go func() { _ = listener.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, client.Publish(ctx, "stock.changes", "not-json").Err())

	change := catalog.StockChange{ProductID: uuid.New(), NewStock: 1}
	publisher := catalog.Publisher{Client: client, Channel: "stock.changes"}
	require.NoError(t, publisher.Publish(ctx, change))

	select {
	case got := <-received:
		require.Equal(t, change, got, "malformed payload must be skipped, not delivered")
	case <-time.After(2 * time.Second):
		t.Fatal("valid stock change was not delivered")
	}
}

func TestListenerRequiresConfiguration(t *testing.T) {
	listener := &catalog.Listener{}
	require.Error(t, listener.Run(context.Background()))
}
