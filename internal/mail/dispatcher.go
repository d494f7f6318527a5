package mail

import (
	"context"
	"log/slog"
	"time"

	"cabinet-backend/internal/event"
	"cabinet-backend/internal/metrics"
)

// Dispatcher drains email events off the bus and delivers them in the
// background, so request latency never includes SMTP round trips.
type Dispatcher struct {
	sender      Sender
	bus         event.Bus
	sendTimeout time.Duration
}

func NewDispatcher(sender Sender, bus event.Bus) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		bus:         bus,
		sendTimeout: 30 * time.Second,
	}
}

// Run blocks until ctx is cancelled. Delivery failures are logged and
// dropped; auth flows must not observe them.
func (d *Dispatcher) Run(ctx context.Context) {
	events, unsubscribe := d.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.Type != event.TypeEmailRequested {
				continue
			}

			payload, ok := e.Payload.(event.EmailPayload)
			if !ok {
				slog.Warn("mail dispatcher received malformed payload", "event_id", e.ID)
				continue
			}

			d.deliver(ctx, payload)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, payload event.EmailPayload) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(sendCtx, payload.To, payload.Subject, payload.HTMLBody); err != nil {
		metrics.RecordEmail("failure")
		slog.Error("email delivery failed", "to", payload.To, "subject", payload.Subject, "error", err)
		return
	}

	metrics.RecordEmail("success")
	slog.Info("email delivered", "to", payload.To, "subject", payload.Subject)
}
