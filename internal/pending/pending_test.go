package pending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ticketbird/ticketbird/internal/platform"
)

type nopResponder struct{}

func (nopResponder) Send(context.Context, string, bool) error  { return nil }
func (nopResponder) Edit(context.Context, string) error        { return nil }
func (nopResponder) Followup(context.Context, string, bool) error {
	return nil
}

func newTestBroker() (*Broker, *time.Time) {
	b := NewBroker()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func resolve(b *Broker, guildID, userID int64) error {
	inter := platform.Interaction{GuildID: guildID, UserID: userID}
	return b.Resolve(context.Background(), inter, nopResponder{}, platform.Message{ID: 99})
}

func TestResolveNonePending(t *testing.T) {
	b, _ := newTestBroker()
	if err := resolve(b, 1, 2); !errors.Is(err, ErrNonePending) {
		t.Fatalf("err = %v, want ErrNonePending", err)
	}
}

func TestResolveInvokesOnce(t *testing.T) {
	b, now := newTestBroker()

	calls := 0
	b.Register(1, 2, func(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error {
		calls++
		if msg.ID != 99 {
			t.Errorf("msg.ID = %d", msg.ID)
		}
		return nil
	})

	*now = now.Add(179 * time.Second)
	if err := resolve(b, 1, 2); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	// The record is consumed; a second selection has nothing to resolve.
	if err := resolve(b, 1, 2); !errors.Is(err, ErrNonePending) {
		t.Fatalf("second resolve err = %v, want ErrNonePending", err)
	}
}

func TestResolveExpired(t *testing.T) {
	b, now := newTestBroker()

	invoked := false
	b.Register(1, 2, func(context.Context, platform.Interaction, platform.Responder, platform.Message) error {
		invoked = true
		return nil
	})

	*now = now.Add(181 * time.Second)
	if err := resolve(b, 1, 2); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	if invoked {
		t.Fatal("expired continuation must never be invoked")
	}
}

func TestResolveRetryOnFailure(t *testing.T) {
	b, now := newTestBroker()

	boom := errors.New("boom")
	calls := 0
	b.Register(1, 2, func(context.Context, platform.Interaction, platform.Responder, platform.Message) error {
		calls++
		if calls == 1 {
			return boom
		}
		return nil
	})

	if err := resolve(b, 1, 2); !errors.Is(err, boom) {
		t.Fatalf("first resolve err = %v, want boom", err)
	}

	// The failed continuation was re-registered with a fresh timestamp, so
	// even past the original expiry the retry still works.
	*now = now.Add(100 * time.Second)
	if err := resolve(b, 1, 2); err != nil {
		t.Fatalf("retry resolve: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	b, _ := newTestBroker()

	var got string
	mk := func(tag string) Continuation {
		return func(context.Context, platform.Interaction, platform.Responder, platform.Message) error {
			got = tag
			return nil
		}
	}

	b.Register(1, 2, mk("first"))
	b.Register(1, 2, mk("second"))

	if err := resolve(b, 1, 2); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "second" {
		t.Fatalf("invoked %q, want second (last registration wins)", got)
	}
}

func TestSweepRemovesStaleRecords(t *testing.T) {
	b, now := newTestBroker()

	b.Register(1, 2, func(context.Context, platform.Interaction, platform.Responder, platform.Message) error {
		return nil
	})

	// Still inside expiry + grace: nothing to evict.
	*now = now.Add(DefaultExpiry + DefaultGrace)
	if n := b.Sweep(); n != 0 {
		t.Fatalf("early sweep evicted %d", n)
	}

	*now = now.Add(time.Second)
	if n := b.Sweep(); n != 1 {
		t.Fatalf("sweep evicted %d, want 1", n)
	}
	if b.Len() != 0 {
		t.Fatalf("len = %d, want 0", b.Len())
	}
}
