package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := b.Subscribe("article:open", 1)
	defer unsubscribe()
	other, unsubscribeOther := b.Subscribe("article:close", 1)
	defer unsubscribeOther()

	require.NoError(t, b.Publish(context.Background(), "article:open", "hello-world"))

	select {
	case got := <-ch:
		assert.Equal(t, Event{Topic: "article:open", Payload: "hello-world"}, got)
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
	assert.Empty(t, other, "other topics receive nothing")
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := b.Subscribe("t", 1)
	assert.Equal(t, 1, b.SubscriberCount("t"))
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, b.SubscriberCount("t"))

	_, ok := <-ch
	assert.False(t, ok)
	require.NoError(t, b.Publish(context.Background(), "t", 1), "publishing without subscribers is fine")
}

func TestBus_PublishBackpressure(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := b.Subscribe("t", 0)
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := b.Publish(ctx, "t", 1)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRuntime))
}

func TestBus_Close(t *testing.T) {
	b := NewBus()

	ch, _ := b.Subscribe("t", 1)
	b.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Error(t, b.Publish(context.Background(), "t", 1))

	late, _ := b.Subscribe("t", 1)
	_, ok = <-late
	assert.False(t, ok, "subscriptions after close are closed immediately")
}

func TestBus_EmptyTopic(t *testing.T) {
	b := NewBus()
	defer b.Close()
	err := b.Publish(context.Background(), "", nil)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}
