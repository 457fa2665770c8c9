package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ticketbird/ticketbird/internal/repo"
)

func TestSweepGuildsRemovesDepartedOnly(t *testing.T) {
	db := newServiceDB(t)
	state := newFakeState()
	svc := NewCleanupService(db, zerolog.Nop(), state)
	ctx := context.Background()

	for _, guildID := range []int64{1, 2} {
		id := guildID
		if err := repo.AddInbox(ctx, db, 100*guildID, 10*guildID, &id); err != nil {
			t.Fatalf("AddInbox: %v", err)
		}
	}
	state.guilds = []int64{1}

	n, err := svc.SweepGuilds(ctx)
	if err != nil {
		t.Fatalf("SweepGuilds: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept = %d, want 1", n)
	}

	if _, err := repo.GetInbox(ctx, db, 100); err != nil {
		t.Fatalf("guild 1 inbox: %v", err)
	}
	if _, err := repo.GetInbox(ctx, db, 200); err != repo.ErrNotFound {
		t.Fatalf("guild 2 inbox err = %v, want ErrNotFound", err)
	}
}

func TestSweepGuildsNothingStale(t *testing.T) {
	db := newServiceDB(t)
	state := newFakeState()
	svc := NewCleanupService(db, zerolog.Nop(), state)
	ctx := context.Background()

	guildID := int64(1)
	if err := repo.AddInbox(ctx, db, 100, 10, &guildID); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	state.guilds = []int64{1}

	n, err := svc.SweepGuilds(ctx)
	if err != nil {
		t.Fatalf("SweepGuilds: %v", err)
	}
	if n != 0 {
		t.Fatalf("swept = %d, want 0", n)
	}
}

func TestNextSaturdayMidnight(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		// Monday morning rolls forward to Saturday.
		{
			time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
		},
		// A Saturday resolves to the next Saturday, never itself.
		{
			time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		},
		// Friday just before midnight still lands on the coming Saturday.
		{
			time.Date(2025, 6, 6, 23, 59, 59, 0, time.UTC),
			time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		if got := nextSaturdayMidnight(tc.now); !got.Equal(tc.want) {
			t.Fatalf("nextSaturdayMidnight(%v) = %v, want %v", tc.now, got, tc.want)
		}
	}
}

func TestHandleMessageDeleteRemovesInbox(t *testing.T) {
	db := newServiceDB(t)
	svc := NewCleanupService(db, zerolog.Nop(), newFakeState())
	ctx := context.Background()

	guildID := int64(1)
	if err := repo.AddInbox(ctx, db, 100, 10, &guildID); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}

	if err := svc.HandleMessageDelete(ctx, 100); err != nil {
		t.Fatalf("HandleMessageDelete: %v", err)
	}
	if _, err := repo.GetInbox(ctx, db, 100); err != repo.ErrNotFound {
		t.Fatalf("inbox err = %v, want ErrNotFound", err)
	}
}
