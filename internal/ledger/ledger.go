package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
)

// Retention is how long an entry survives without being rewritten.
const Retention = 24 * time.Hour

const keyPrefix = "geoip:last_ip:"

// Cache is the key-value store holding one entry per identity.
type Cache interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Ledger decides whether an event's IP may update the identity's profile.
//
// Decisions that are reserved but not yet committed are kept in process and take
// precedence over the cache, so events enriched ahead of storage are judged
// against them. Across processes, reads and writes are not atomic: two replicas
// can both pass ShouldUpdate for one identity, and the later Record wins.
type Ledger struct {
	cache    Cache
	failOpen bool
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string][]Entry
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithFailOpen makes cache read failures behave like a missing entry instead of
// returning the error.
func WithFailOpen(failOpen bool) Option {
	return func(l *Ledger) {
		l.failOpen = failOpen
	}
}

// New creates a ledger on top of cache.
func New(cache Cache, log *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		cache:   cache,
		log:     log,
		pending: make(map[string][]Entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func key(identity string) string {
	return keyPrefix + identity
}

// Lookup returns the current entry for identity. Missing and malformed entries
// both report ok=false.
func (l *Ledger) Lookup(ctx context.Context, identity string) (Entry, bool, error) {
	raw, found, err := l.cache.Get(ctx, key(identity))
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read ledger entry: %w", err)
	}
	if !found {
		return Entry{}, false, nil
	}

	entry, err := ParseEntry(raw)
	if err != nil {
		l.log.Warn("Ignoring malformed ledger entry",
			zap.String("distinct_id", identity),
			zap.String("value", raw))
		return Entry{}, false, nil
	}

	return entry, true, nil
}

// ShouldUpdate reports whether an event carrying ip at timestamp is allowed to
// rewrite the identity's geo profile properties. It is false when ip equals the
// last recorded IP, or when the event is older than the one that last updated
// the profile.
func (l *Ledger) ShouldUpdate(ctx context.Context, identity, ip, timestamp string) (bool, error) {
	if last, ok := l.latestPending(identity); ok {
		return !(last.IP == ip || isLate(timestamp, last.Timestamp)), nil
	}

	last, found, err := l.Lookup(ctx, identity)
	if err != nil {
		if !l.failOpen {
			return false, err
		}
		l.log.Warn("Ledger read failed, treating identity as unseen",
			zap.String("distinct_id", identity),
			zap.Error(err))
		return true, nil
	}
	if !found {
		return true, nil
	}

	if last.IP == ip || isLate(timestamp, last.Timestamp) {
		return false, nil
	}
	return true, nil
}

// Reserve decides like ShouldUpdate and, when the event may update the profile,
// holds the decision in process until the returned reservation is committed or
// released. A nil reservation means the profile must not be updated.
func (l *Ledger) Reserve(ctx context.Context, identity, ip, timestamp string) (*Reservation, error) {
	ok, err := l.ShouldUpdate(ctx, identity, ip, timestamp)
	if err != nil || !ok {
		return nil, err
	}

	entry := Entry{IP: ip, Timestamp: timestamp}
	l.mu.Lock()
	l.pending[identity] = append(l.pending[identity], entry)
	l.mu.Unlock()

	return &Reservation{ledger: l, identity: identity, entry: entry}, nil
}

func (l *Ledger) latestPending(identity string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := l.pending[identity]
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[len(entries)-1], true
}

func (l *Ledger) dropPending(identity string, entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := l.pending[identity]
	for i, e := range entries {
		if e == entry {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(l.pending, identity)
		return
	}
	l.pending[identity] = entries
}

// Record stores ip and timestamp as the identity's latest profile-updating pair.
func (l *Ledger) Record(ctx context.Context, identity, ip, timestamp string) error {
	entry := Entry{IP: ip, Timestamp: timestamp}
	if err := l.cache.Set(ctx, key(identity), entry.String(), Retention); err != nil {
		return fmt.Errorf("failed to write ledger entry: %w", err)
	}
	return nil
}

// isLate is true only when both timestamps parse and candidate is strictly
// earlier than last.
func isLate(candidate, last string) bool {
	if candidate == "" || last == "" {
		return false
	}
	candidateTime, err := domain.ParseTimestamp(candidate)
	if err != nil {
		return false
	}
	lastTime, err := domain.ParseTimestamp(last)
	if err != nil {
		return false
	}
	return candidateTime.Before(lastTime)
}
