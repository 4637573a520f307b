package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker_PublishReachesAllSubscribers(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := b.Subscribe(ctx)
	second := b.Subscribe(ctx)

	b.Publish(UpdatedEvent, "hello")

	for _, sub := range []<-chan Event[string]{first, second} {
		select {
		case evt := <-sub:
			require.Equal(t, UpdatedEvent, evt.Type)
			require.Equal(t, "hello", evt.Payload)
		case <-time.After(time.Second):
			require.Fail(t, "subscriber did not receive event")
		}
	}
}

func TestBroker_ContextCancelClosesSubscription(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)

	cancel()
	select {
	case _, ok := <-sub:
		require.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		require.Fail(t, "subscription not closed after cancel")
	}

	// Publishing to a cancelled subscription must not panic
	require.NotPanics(t, func() { b.Publish(UpdatedEvent, 1) })
}

func TestBroker_CloseClosesSubscriptions(t *testing.T) {
	b := NewBroker[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := b.Subscribe(ctx)

	b.Close()
	b.Close()
	_, ok := <-sub
	require.False(t, ok)

	// Publishing after close must not panic
	b.Publish(UpdatedEvent, 1)

	late := b.Subscribe(ctx)
	_, ok = <-late
	require.False(t, ok, "subscribing to a closed broker yields a closed channel")
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = b.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < bufferSize*2; i++ {
			b.Publish(UpdatedEvent, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Publish blocked on a full subscriber")
	}
}
