package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cabinet-backend/internal/event"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []event.EmailPayload
	err  error
}

func (r *recordingSender) Send(_ context.Context, to string, subject string, htmlBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, event.EmailPayload{To: to, Subject: subject, HTMLBody: htmlBody})
	return r.err
}

func (r *recordingSender) all() []event.EmailPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.EmailPayload, len(r.sent))
	copy(out, r.sent)
	return out
}

func TestDispatcher_DeliversEmailEvents(t *testing.T) {
	bus := event.NewBus()
	sender := &recordingSender{}
	dispatcher := NewDispatcher(sender, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	// Give the subscriber time to register before publishing.
	time.Sleep(20 * time.Millisecond)

	bus.Publish(event.Event{
		Type:    event.TypeEmailRequested,
		Payload: event.EmailPayload{To: "alice@x.com", Subject: "Hi", HTMLBody: "<p>hi</p>"},
	})

	assert.Eventually(t, func() bool {
		sent := sender.all()
		return len(sent) == 1 && sent[0].To == "alice@x.com"
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcher_IgnoresOtherEventTypes(t *testing.T) {
	bus := event.NewBus()
	sender := &recordingSender{}
	dispatcher := NewDispatcher(sender, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	time.Sleep(20 * time.Millisecond)

	bus.Publish(event.Event{Type: event.TypeUserRegistered, Payload: "not-an-email"})
	bus.Publish(event.Event{
		Type:    event.TypeEmailRequested,
		Payload: event.EmailPayload{To: "bob@x.com", Subject: "Only this one"},
	})

	assert.Eventually(t, func() bool {
		sent := sender.all()
		return len(sent) == 1 && sent[0].Subject == "Only this one"
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcher_SendFailureDoesNotStopLoop(t *testing.T) {
	bus := event.NewBus()
	sender := &recordingSender{err: errors.New("smtp down")}
	dispatcher := NewDispatcher(sender, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	time.Sleep(20 * time.Millisecond)

	bus.Publish(event.Event{Type: event.TypeEmailRequested, Payload: event.EmailPayload{To: "a@x.com"}})
	bus.Publish(event.Event{Type: event.TypeEmailRequested, Payload: event.EmailPayload{To: "b@x.com"}})

	assert.Eventually(t, func() bool {
		return len(sender.all()) == 2
	}, time.Second, 10*time.Millisecond)
}
