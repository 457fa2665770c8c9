// This file implements database cleanup: event-driven row pruning when
// platform objects disappear, and a weekly sweep for guilds the bot is no
// longer a member of.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ticketbird/ticketbird/internal/platform"
	"github.com/ticketbird/ticketbird/internal/repo"
)

// CleanupService prunes rows for deleted channels, threads, messages, and
// departed guilds. Rows can still accumulate during downtime; the weekly
// guild sweep is the backstop.
type CleanupService struct {
	DB    *gorm.DB
	Log   zerolog.Logger
	State platform.GuildState
}

// NewCleanupService constructs a CleanupService.
func NewCleanupService(db *gorm.DB, log zerolog.Logger, state platform.GuildState) *CleanupService {
	return &CleanupService{DB: db, Log: log, State: state}
}

// HandleChannelDelete prunes a deleted channel or thread. Cascades remove
// dependent messages, inboxes, staff links, and tickets.
func (s *CleanupService) HandleChannelDelete(ctx context.Context, channelID int64) error {
	return repo.DeleteChannel(ctx, s.DB, channelID)
}

// HandleMessageDelete prunes a deleted message and, through cascades, any
// inbox it carried.
func (s *CleanupService) HandleMessageDelete(ctx context.Context, messageID int64) error {
	return repo.DeleteMessage(ctx, s.DB, messageID)
}

// HandleBulkMessageDelete prunes a batch of deleted messages.
func (s *CleanupService) HandleBulkMessageDelete(ctx context.Context, messageIDs []int64) error {
	return repo.DeleteMessages(ctx, s.DB, messageIDs)
}

// SweepGuilds deletes rows for guilds the bot is no longer a member of and
// returns how many were removed. An unintentional kick keeps its data until
// the next sweep rather than losing it instantly.
func (s *CleanupService) SweepGuilds(ctx context.Context) (int64, error) {
	live, err := s.State.GuildIDs(ctx)
	if err != nil {
		return 0, err
	}
	liveSet := make(map[int64]bool, len(live))
	for _, id := range live {
		liveSet[id] = true
	}

	known, err := repo.ListGuildIDs(ctx, s.DB)
	if err != nil {
		return 0, err
	}

	var stale []int64
	for _, id := range known {
		if !liveSet[id] {
			stale = append(stale, id)
		}
	}

	n, err := repo.DeleteGuilds(ctx, s.DB, stale)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Log.Info().Int64("guilds", n).Msg("Cleaned up departed guilds")
	}
	return n, nil
}

// Run fires SweepGuilds at the first midnight UTC falling on a Saturday,
// then weekly, until ctx is cancelled.
func (s *CleanupService) Run(ctx context.Context) {
	for {
		next := nextSaturdayMidnight(time.Now().UTC())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if _, err := s.SweepGuilds(ctx); err != nil {
				s.Log.Error().Err(err).Msg("Guild cleanup sweep failed")
			}
		}
	}
}

func nextSaturdayMidnight(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	for next.Weekday() != time.Saturday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
