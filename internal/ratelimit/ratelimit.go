// Package ratelimit implements the per-(inbox, user) ticket-creation
// cooldown: one permit per window, where the window is supplied on every
// check because it derives from the inbox channel's live slow-mode setting.
//
// The table is process-local and non-authoritative; losing it on restart
// simply resets cooldowns. A periodic sweep bounds memory by evicting
// entries whose window has fully elapsed; a missed sweep can only delay
// reclamation, never grant incorrectly.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type key struct {
	InboxID int64
	UserID  int64
}

type entry struct {
	window    time.Duration
	grantedAt time.Time
}

// Limiter tracks one cooldown bucket per (inbox, user) pair.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	entries map[key]entry

	now func() time.Time // overridable in tests
}

// New constructs an empty Limiter.
func New() *Limiter {
	return &Limiter{
		entries: make(map[key]entry),
		now:     time.Now,
	}
}

// Check decides whether a ticket-creation attempt is allowed right now and
// returns the remaining wait; zero means allowed, in which case the permit
// is consumed immediately.
//
// A bucket whose recorded window differs from the supplied one resets as if
// never used: changing slow-mode intentionally allows one immediate burst.
func (l *Limiter) Check(inboxID, userID int64, window time.Duration) time.Duration {
	k := key{inboxID, userID}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[k]
	if ok && e.window == window {
		if remaining := e.grantedAt.Add(e.window).Sub(now); remaining > 0 {
			return remaining
		}
	}

	l.entries[k] = entry{window: window, grantedAt: now}
	return 0
}

// Sweep removes entries whose window has fully elapsed and returns how many
// were evicted.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, e := range l.entries {
		if now.After(e.grantedAt.Add(e.window)) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

// Run sweeps on the given interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

// Len returns the current number of tracked buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
