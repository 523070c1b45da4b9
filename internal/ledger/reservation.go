package ledger

import (
	"context"
	"sync"
)

// Reservation is a profile update that has been decided but not yet written to
// the cache. Exactly one of Commit or Release takes effect; later calls are
// no-ops. All methods are safe on a nil Reservation.
type Reservation struct {
	ledger   *Ledger
	identity string
	entry    Entry

	once sync.Once
}

// Entry returns the IP and timestamp the reservation will record.
func (r *Reservation) Entry() Entry {
	if r == nil {
		return Entry{}
	}
	return r.entry
}

// Commit writes the entry to the cache and drops the pending decision.
func (r *Reservation) Commit(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var err error
	r.once.Do(func() {
		defer r.ledger.dropPending(r.identity, r.entry)
		err = r.ledger.Record(ctx, r.identity, r.entry.IP, r.entry.Timestamp)
	})
	return err
}

// Release drops the pending decision without writing it, so a retried event is
// judged against the cache again.
func (r *Reservation) Release() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		r.ledger.dropPending(r.identity, r.entry)
	})
}
