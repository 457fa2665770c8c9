// Package pending implements the pending-selection broker: a short-lived,
// in-memory correlation between an administrative command ("now pick a
// message") and the asynchronously delivered selection that completes it.
//
// Records are keyed by (guild, user) and hold an opaque continuation that
// lives only in process memory for the pending window. State is
// non-authoritative; losing it on restart just means the user retries.
package pending

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ticketbird/ticketbird/internal/platform"
)

// Default timing for the selection flow.
const (
	DefaultExpiry        = 180 * time.Second
	DefaultGrace         = 300 * time.Second
	DefaultSweepInterval = 60 * time.Second
)

var (
	// ErrNonePending is reported when a selection arrives with no command
	// waiting for it.
	ErrNonePending = errors.New("pending: no selection pending")

	// ErrExpired is reported when the pending record is older than the
	// expiry threshold. The continuation is never invoked in that case.
	ErrExpired = errors.New("pending: selection expired")
)

// Continuation is the deferred work registered by step one of a selection
// flow, invoked with the eventually selected message.
type Continuation func(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error

type key struct {
	GuildID int64
	UserID  int64
}

type record struct {
	registeredAt time.Time
	fn           Continuation
}

// Broker correlates selection prompts with their follow-up selections.
// It is safe for concurrent use.
type Broker struct {
	mu      sync.Mutex
	entries map[key]record

	expiry time.Duration
	grace  time.Duration
	now    func() time.Time // overridable in tests
}

// NewBroker constructs a Broker with the default expiry and grace buffer.
func NewBroker() *Broker {
	return &Broker{
		entries: make(map[key]record),
		expiry:  DefaultExpiry,
		grace:   DefaultGrace,
		now:     time.Now,
	}
}

// Register stores the continuation for (guildID, userID), overwriting any
// previous record: the last registration wins and an abandoned continuation
// is dropped silently.
func (b *Broker) Register(guildID, userID int64, fn Continuation) {
	k := key{guildID, userID}

	b.mu.Lock()
	b.entries[k] = record{registeredAt: b.now(), fn: fn}
	b.mu.Unlock()
}

// Resolve routes a selected message to the continuation registered for
// (inter.GuildID, inter.UserID). It reports ErrNonePending or ErrExpired
// without invoking anything when no live record exists.
//
// If the continuation itself fails, the record is re-registered with a
// fresh timestamp (unless a newer registration appeared meanwhile) so the
// user's next selection retries the same continuation, and the failure is
// propagated to the caller.
func (b *Broker) Resolve(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error {
	k := key{inter.GuildID, inter.UserID}

	b.mu.Lock()
	rec, ok := b.entries[k]
	if !ok {
		b.mu.Unlock()
		return ErrNonePending
	}
	if b.now().After(rec.registeredAt.Add(b.expiry)) {
		b.mu.Unlock()
		return ErrExpired
	}
	delete(b.entries, k)
	b.mu.Unlock()

	err := rec.fn(ctx, inter, resp, msg)
	if err != nil {
		b.mu.Lock()
		if _, exists := b.entries[k]; !exists {
			b.entries[k] = record{registeredAt: b.now(), fn: rec.fn}
		}
		b.mu.Unlock()
	}
	return err
}

// Sweep removes records older than expiry plus the grace buffer and returns
// how many were evicted.
func (b *Broker) Sweep() int {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for k, rec := range b.entries {
		if now.After(rec.registeredAt.Add(b.expiry + b.grace)) {
			delete(b.entries, k)
			n++
		}
	}
	return n
}

// Run sweeps on the given interval until ctx is cancelled.
func (b *Broker) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.Sweep()
		}
	}
}

// Len returns the current number of pending records.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
