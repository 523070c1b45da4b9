package consumer

import (
	"context"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
	"github.com/BarkinBalci/event-geoip-service/internal/ledger"
)

// Envelope carries an event through the pipeline together with the callbacks
// that settle its queue message and the profile update awaiting storage
type Envelope struct {
	MessageID   string
	Event       *domain.Event
	ack         func(context.Context) error
	nack        func(context.Context) error
	reservation *ledger.Reservation
}

// NewEnvelope creates a new message envelope
func NewEnvelope(messageID string, event *domain.Event, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		MessageID: messageID,
		Event:     event,
		ack:       ack,
		nack:      nack,
	}
}

// Ack acknowledges successful processing
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack hands the message back to the queue for redelivery
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}

// Reserve attaches the pending ledger write for the event's profile update
func (e *Envelope) Reserve(res *ledger.Reservation) {
	e.reservation = res
}

// CommitProfile records the pending profile update, if any
func (e *Envelope) CommitProfile(ctx context.Context) error {
	return e.reservation.Commit(ctx)
}

// ReleaseProfile discards the pending profile update, if any
func (e *Envelope) ReleaseProfile() {
	e.reservation.Release()
}
