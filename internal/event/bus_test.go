package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	bus.Publish(Event{ID: "e1", Type: TypeUserRegistered})

	select {
	case got := <-ch:
		assert.Equal(t, "e1", got.ID)
		assert.Equal(t, TypeUserRegistered, got.Type)
	case <-time.After(time.Second):
		t.Fatal("event never arrived")
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	// Nobody drains the channel, so everything past the buffer capacity is
	// dropped instead of stalling the publisher.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 150; i++ {
			bus.Publish(Event{ID: "e", Type: TypeEmailRequested})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	require.LessOrEqual(t, drained, 100)
	assert.Equal(t, 100, drained)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()

	unsubscribe()
	// Idempotent.
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe reaches nobody and must not panic.
	bus.Publish(Event{ID: "e2", Type: TypeUserRegistered})
}
