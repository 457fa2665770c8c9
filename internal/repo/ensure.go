package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ticketbird/ticketbird/internal/domain"
)

// Entity rows are created lazily the first time something references them.
// Each Ensure function inserts the row and its parents if missing and is a
// no-op otherwise, so callers can reference platform objects without caring
// whether the bot has seen them before.

// EnsureUser inserts a user row if missing.
func EnsureUser(ctx context.Context, db *gorm.DB, userID int64) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.User{ID: userID}).Error
}

// EnsureGuild inserts a guild row if missing.
func EnsureGuild(ctx context.Context, db *gorm.DB, guildID int64) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Guild{ID: guildID}).Error
}

// EnsureMember inserts a member row if missing, along with its user and
// guild parents.
func EnsureMember(ctx context.Context, db *gorm.DB, userID, guildID int64) error {
	if err := EnsureUser(ctx, db, userID); err != nil {
		return err
	}
	if err := EnsureGuild(ctx, db, guildID); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Member{GuildID: guildID, UserID: userID}).Error
}

// EnsureChannel inserts a channel row if missing. guildID may be nil for
// channels outside a guild; when set, the guild parent is ensured first.
func EnsureChannel(ctx context.Context, db *gorm.DB, channelID int64, guildID *int64) error {
	if guildID != nil {
		if err := EnsureGuild(ctx, db, *guildID); err != nil {
			return err
		}
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Channel{ID: channelID, GuildID: guildID}).Error
}

// EnsureMessage inserts a message row if missing, along with its channel
// (and guild) parents.
func EnsureMessage(ctx context.Context, db *gorm.DB, messageID, channelID int64, guildID *int64) error {
	if err := EnsureChannel(ctx, db, channelID, guildID); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Message{ID: messageID, ChannelID: channelID}).Error
}
