// This file provides repository functions for inboxes and their staff links.
//
// An inbox's primary key is the ID of the message carrying the create-ticket
// control, so registering an inbox first ensures the message chain exists.
// Staff are stored as raw mention tokens, validated against the platform
// mention grammar on insert.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ticketbird/ticketbird/internal/domain"
	"github.com/ticketbird/ticketbird/internal/platform"
)

// ErrInvalidMention is returned when a staff mention token does not match
// the user or role mention format.
var ErrInvalidMention = fmt.Errorf("repo: invalid user/role mention")

// AddInbox registers messageID as an inbox, ensuring the message, channel,
// and guild rows exist first. Returns ErrDuplicate if the message is
// already an inbox.
func AddInbox(ctx context.Context, db *gorm.DB, messageID, channelID int64, guildID *int64) error {
	if err := EnsureMessage(ctx, db, messageID, channelID, guildID); err != nil {
		return err
	}
	err := db.WithContext(ctx).Create(&domain.Inbox{ID: messageID}).Error
	return translateErr(err)
}

// GetInbox fetches an inbox by ID, or ErrNotFound if the message is not an
// inbox.
func GetInbox(ctx context.Context, db *gorm.DB, inboxID int64) (*domain.Inbox, error) {
	var inbox domain.Inbox
	if err := db.WithContext(ctx).First(&inbox, "id = ?", inboxID).Error; err != nil {
		return nil, err
	}
	return &inbox, nil
}

// InboxExists reports whether the given message is registered as an inbox.
func InboxExists(ctx context.Context, db *gorm.DB, inboxID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Inbox{}).
		Where("id = ?", inboxID).
		Count(&n).Error
	return n > 0, err
}

// SetInboxStarterContent sets the starter message template for an inbox.
// nil reverts the inbox to the built-in default.
func SetInboxStarterContent(ctx context.Context, db *gorm.DB, inboxID int64, content *string) error {
	return updateInboxColumn(ctx, db, inboxID, "starter_content", content)
}

// SetInboxDefaultTicketName sets the ticket name template for an inbox.
// nil reverts the inbox to the built-in default.
func SetInboxDefaultTicketName(ctx context.Context, db *gorm.DB, inboxID int64, name *string) error {
	return updateInboxColumn(ctx, db, inboxID, "default_ticket_name", name)
}

// SetInboxMaxTicketsPerUser sets the per-user active ticket quota for an
// inbox. Zero disables the quota.
func SetInboxMaxTicketsPerUser(ctx context.Context, db *gorm.DB, inboxID int64, max int) error {
	return updateInboxColumn(ctx, db, inboxID, "max_tickets_per_user", max)
}

// SetInboxDestination points an inbox at a different channel for ticket
// creation, ensuring the channel row exists. nil reverts tickets to the
// inbox's own channel.
func SetInboxDestination(ctx context.Context, db *gorm.DB, inboxID int64, channelID, guildID *int64) error {
	if channelID != nil {
		if err := EnsureChannel(ctx, db, *channelID, guildID); err != nil {
			return err
		}
	}
	return updateInboxColumn(ctx, db, inboxID, "destination_channel_id", channelID)
}

func updateInboxColumn(ctx context.Context, db *gorm.DB, inboxID int64, column string, value any) error {
	res := db.WithContext(ctx).
		Model(&domain.Inbox{}).
		Where("id = ?", inboxID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementInboxCounter bumps the inbox's ticket counter and returns the new
// value. The counter may skip values when ticket creation later fails; it
// only promises uniqueness, not density.
func IncrementInboxCounter(ctx context.Context, db *gorm.DB, inboxID int64) (int, error) {
	var counter int
	err := db.WithContext(ctx).
		Raw("UPDATE inbox SET counter = counter + 1 WHERE id = ? RETURNING counter", inboxID).
		Scan(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter, nil
}

// AddInboxStaff links a staff mention to an inbox. Returns ErrInvalidMention
// for malformed tokens and ErrDuplicate if the mention is already staff.
func AddInboxStaff(ctx context.Context, db *gorm.DB, inboxID int64, mention string) error {
	if !platform.ValidMention(mention) {
		return fmt.Errorf("%w: %q", ErrInvalidMention, mention)
	}
	err := db.WithContext(ctx).
		Create(&domain.InboxStaff{InboxID: inboxID, Mention: mention}).Error
	return translateErr(err)
}

// ListInboxStaff returns all staff mentions for an inbox. An unknown inbox
// yields an empty list.
func ListInboxStaff(ctx context.Context, db *gorm.DB, inboxID int64) ([]string, error) {
	var mentions []string
	err := db.WithContext(ctx).
		Model(&domain.InboxStaff{}).
		Where("inbox_id = ?", inboxID).
		Order("mention").
		Pluck("mention", &mentions).Error
	return mentions, err
}

// RemoveInboxStaff unlinks a staff mention from an inbox and reports whether
// it existed.
func RemoveInboxStaff(ctx context.Context, db *gorm.DB, inboxID int64, mention string) (bool, error) {
	res := db.WithContext(ctx).
		Where("inbox_id = ? AND mention = ?", inboxID, mention).
		Delete(&domain.InboxStaff{})
	return res.RowsAffected > 0, res.Error
}
