package repo

import (
	"context"
	"errors"
	"testing"
)

func TestDeleteChannelCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := AddInboxStaff(ctx, db, 100, "<@201>"); err != nil {
		t.Fatalf("AddInboxStaff: %v", err)
	}
	if err := AddTicket(ctx, db, 500, 100, 200, 1); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	// Deleting the inbox's channel takes out the message, inbox, staff
	// links, and through the inbox, its tickets.
	if err := DeleteChannel(ctx, db, 10); err != nil {
		t.Fatalf("DeleteChannel: %v", err)
	}

	if _, err := GetInbox(ctx, db, 100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inbox err = %v, want ErrNotFound", err)
	}
	staff, err := ListInboxStaff(ctx, db, 100)
	if err != nil || len(staff) != 0 {
		t.Fatalf("staff = %v, %v; want empty", staff, err)
	}
	if _, err := GetTicketOwner(ctx, db, 500); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ticket err = %v, want ErrNotFound", err)
	}
}

func TestDeleteMessageCascadesToInbox(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := DeleteMessage(ctx, db, 100); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if _, err := GetInbox(ctx, db, 100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inbox err = %v, want ErrNotFound", err)
	}
}

func TestDeleteThreadChannelRemovesTicket(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := AddTicket(ctx, db, 500, 100, 200, 1); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	if err := DeleteChannel(ctx, db, 500); err != nil {
		t.Fatalf("DeleteChannel: %v", err)
	}
	if _, err := GetTicketOwner(ctx, db, 500); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ticket err = %v, want ErrNotFound", err)
	}

	// The inbox itself is untouched.
	if _, err := GetInbox(ctx, db, 100); err != nil {
		t.Fatalf("inbox should survive: %v", err)
	}
}

func TestDeleteGuildsSweep(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddInbox(ctx, db, 100, 10, ptr[int64](1)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}
	if err := AddInbox(ctx, db, 102, 12, ptr[int64](2)); err != nil {
		t.Fatalf("AddInbox: %v", err)
	}

	ids, err := ListGuildIDs(ctx, db)
	if err != nil {
		t.Fatalf("ListGuildIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("guilds = %v, want 2", ids)
	}

	// Guild 2 is gone from the platform; its whole subtree goes with it.
	n, err := DeleteGuilds(ctx, db, []int64{2})
	if err != nil || n != 1 {
		t.Fatalf("DeleteGuilds = %d, %v; want 1, nil", n, err)
	}
	if _, err := GetInbox(ctx, db, 102); !errors.Is(err, ErrNotFound) {
		t.Fatalf("guild-2 inbox err = %v, want ErrNotFound", err)
	}
	if _, err := GetInbox(ctx, db, 100); err != nil {
		t.Fatalf("guild-1 inbox should survive: %v", err)
	}

	n, err = DeleteGuilds(ctx, db, nil)
	if err != nil || n != 0 {
		t.Fatalf("empty DeleteGuilds = %d, %v; want 0, nil", n, err)
	}
}
