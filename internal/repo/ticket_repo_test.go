package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/ticketbird/ticketbird/internal/domain"
)

func TestAddTicketCreatesChain(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := AddTicket(ctx, db, 500, 100, 200, 1); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	owner, err := GetTicketOwner(ctx, db, 500)
	if err != nil {
		t.Fatalf("GetTicketOwner: %v", err)
	}
	if owner != 200 {
		t.Fatalf("owner = %d, want 200", owner)
	}

	// Owner's member row was created lazily.
	var member domain.Member
	if err := db.First(&member, "guild_id = ? AND user_id = ?", int64(1), int64(200)).Error; err != nil {
		t.Fatalf("member row missing: %v", err)
	}
}

func TestAddTicketDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := AddTicket(ctx, db, 500, 100, 200, 1); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}
	if err := AddTicket(ctx, db, 500, 100, 200, 1); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestListTicketIDsOrdersAscending(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	for _, id := range []int64{503, 501, 502} {
		if err := AddTicket(ctx, db, id, 100, 200, 1); err != nil {
			t.Fatalf("AddTicket(%d): %v", id, err)
		}
	}
	// Another user's ticket must not appear.
	if err := AddTicket(ctx, db, 504, 100, 201, 1); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	ids, err := ListTicketIDs(ctx, db, 100, 200)
	if err != nil {
		t.Fatalf("ListTicketIDs: %v", err)
	}
	want := []int64{501, 502, 503}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestCountMatchingTickets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := AddTicket(ctx, db, 500, 100, 200, 1); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	n, err := CountMatchingTickets(ctx, db, []int64{500, 9999})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	n, err = CountMatchingTickets(ctx, db, nil)
	if err != nil || n != 0 {
		t.Fatalf("empty count = %d, %v; want 0, nil", n, err)
	}
}

func TestGetTicketOwnerNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := GetTicketOwner(context.Background(), db, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListGuildTicketsByOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Two inboxes in guild 1, one in guild 2, same owner everywhere.
	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := AddInbox(ctx, db, 101, 11, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := AddInbox(ctx, db, 102, 12, ptr[int64](2)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}

	if err := AddTicket(ctx, db, 500, 100, 200, 1); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}
	if err := AddTicket(ctx, db, 501, 101, 200, 1); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}
	if err := AddTicket(ctx, db, 502, 102, 200, 2); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	ids, err := ListGuildTicketsByOwner(ctx, db, 1, 200)
	if err != nil {
		t.Fatalf("ListGuildTicketsByOwner: %v", err)
	}
	if len(ids) != 2 || ids[0] != 500 || ids[1] != 501 {
		t.Fatalf("ids = %v, want [500 501]", ids)
	}
}
