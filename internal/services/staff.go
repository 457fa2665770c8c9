package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/ticketbird/ticketbird/internal/platform"
	"github.com/ticketbird/ticketbird/internal/repo"
)

// ReconcileStaff returns the staff mentions for an inbox after pruning role
// mentions whose roles no longer exist in the guild. Stale entries are
// removed from the database as a side effect; deleted users cannot be
// detected this way and are kept.
func ReconcileStaff(ctx context.Context, db *gorm.DB, state platform.GuildState, guildID, inboxID int64) ([]string, error) {
	mentions, err := repo.ListInboxStaff(ctx, db, inboxID)
	if err != nil {
		return nil, err
	}

	roles, err := state.Roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	current := make(map[string]bool, len(roles))
	for _, r := range roles {
		current[r.Mention()] = true
	}

	kept := mentions[:0]
	for _, m := range mentions {
		if platform.IsRoleMention(m) && !current[m] {
			if _, err := repo.RemoveInboxStaff(ctx, db, inboxID, m); err != nil {
				return nil, err
			}
			continue
		}
		kept = append(kept, m)
	}
	return kept, nil
}
