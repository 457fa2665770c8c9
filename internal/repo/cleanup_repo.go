// This file provides repository functions for pruning rows whose platform
// objects no longer exist. Channel and guild deletes cascade through
// messages, inboxes, staff links, and tickets.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ticketbird/ticketbird/internal/domain"
)

// DeleteChannel removes a channel (or thread) row if present.
func DeleteChannel(ctx context.Context, db *gorm.DB, channelID int64) error {
	return db.WithContext(ctx).Delete(&domain.Channel{}, "id = ?", channelID).Error
}

// DeleteMessage removes a message row if present.
func DeleteMessage(ctx context.Context, db *gorm.DB, messageID int64) error {
	return db.WithContext(ctx).Delete(&domain.Message{}, "id = ?", messageID).Error
}

// DeleteMessages removes a batch of message rows.
func DeleteMessages(ctx context.Context, db *gorm.DB, messageIDs []int64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Delete(&domain.Message{}, "id IN ?", messageIDs).Error
}

// ListGuildIDs returns every guild ID known to the database.
func ListGuildIDs(ctx context.Context, db *gorm.DB) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Model(&domain.Guild{}).
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteGuilds removes a batch of guild rows and returns how many existed.
func DeleteGuilds(ctx context.Context, db *gorm.DB, guildIDs []int64) (int64, error) {
	if len(guildIDs) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Delete(&domain.Guild{}, "id IN ?", guildIDs)
	return res.RowsAffected, res.Error
}
