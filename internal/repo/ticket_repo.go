// This file provides repository functions for tickets.
//
// A ticket's primary key is its thread channel's ID. Ticket rows are never
// deleted directly; channel deletion cascades take them out when the thread
// goes away.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ticketbird/ticketbird/internal/domain"
)

// AddTicket persists a new ticket, ensuring the owner's member row and the
// thread and inbox channel rows exist first. Callers should run this inside
// a transaction so a failed insert leaves no partial chain behind.
func AddTicket(ctx context.Context, db *gorm.DB, ticketID, inboxID, ownerID, guildID int64) error {
	if err := EnsureMember(ctx, db, ownerID, guildID); err != nil {
		return err
	}
	if err := EnsureChannel(ctx, db, ticketID, &guildID); err != nil {
		return err
	}
	if err := EnsureChannel(ctx, db, inboxID, &guildID); err != nil {
		return err
	}
	err := db.WithContext(ctx).Create(&domain.Ticket{
		ID:      ticketID,
		InboxID: inboxID,
		OwnerID: ownerID,
	}).Error
	return translateErr(err)
}

// ListTicketIDs returns the IDs of all tickets a user owns in an inbox,
// ascending. Archived threads are indistinguishable here; callers intersect
// with the platform's live thread list to find active tickets.
func ListTicketIDs(ctx context.Context, db *gorm.DB, inboxID, ownerID int64) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("inbox_id = ? AND owner_id = ?", inboxID, ownerID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// CountMatchingTickets counts how many of the given IDs exist as tickets.
func CountMatchingTickets(ctx context.Context, db *gorm.DB, ticketIDs []int64) (int64, error) {
	if len(ticketIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("id IN ?", ticketIDs).
		Count(&n).Error
	return n, err
}

// GetTicketOwner returns the owner of a ticket, or ErrNotFound if the
// thread is not a ticket.
func GetTicketOwner(ctx context.Context, db *gorm.DB, ticketID int64) (int64, error) {
	var ticket domain.Ticket
	if err := db.WithContext(ctx).First(&ticket, "id = ?", ticketID).Error; err != nil {
		return 0, err
	}
	return ticket.OwnerID, nil
}

// ListGuildTicketsByOwner returns the IDs of every ticket a user owns across
// a guild, joining through the ticket's channel row.
func ListGuildTicketsByOwner(ctx context.Context, db *gorm.DB, guildID, ownerID int64) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Joins("JOIN channel ON channel.id = ticket.id").
		Where("channel.guild_id = ? AND ticket.owner_id = ?", guildID, ownerID).
		Order("ticket.id").
		Pluck("ticket.id", &ids).Error
	return ids, err
}
