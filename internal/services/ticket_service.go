// This file implements the ticket workflow: the create-ticket control
// handler and the listeners that archive tickets when their owners leave.
//
// User-correctable outcomes (unknown inbox, quota, cooldown) respond
// ephemerally and succeed from the dispatcher's point of view; only
// unexpected platform or database failures propagate as errors.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ticketbird/ticketbird/internal/domain"
	"github.com/ticketbird/ticketbird/internal/i18n"
	"github.com/ticketbird/ticketbird/internal/observability"
	"github.com/ticketbird/ticketbird/internal/platform"
	"github.com/ticketbird/ticketbird/internal/ratelimit"
	"github.com/ticketbird/ticketbird/internal/repo"
	"github.com/ticketbird/ticketbird/internal/utils"
)

const (
	// DefaultTicketName is the thread name template used when an inbox has
	// no override.
	DefaultTicketName = "$year-$month-$day $author"

	// maxThreadNameLen and maxMessageLen are platform limits.
	maxThreadNameLen = 100
	maxMessageLen    = 2000

	// DefaultRateFloor is the minimum cooldown window between tickets from
	// the same user in the same inbox, regardless of channel slow-mode.
	DefaultRateFloor = 60 * time.Second
)

// TicketService drives ticket creation and archival.
type TicketService struct {
	DB      *gorm.DB
	Log     zerolog.Logger
	State   platform.GuildState
	Threads platform.ThreadManager
	Limiter *ratelimit.Limiter
	Catalog *i18n.Catalog
	Metrics *observability.Metrics

	// RateFloor overrides DefaultRateFloor when positive.
	RateFloor time.Duration
}

// NewTicketService constructs a TicketService with the default rate floor.
func NewTicketService(
	db *gorm.DB,
	log zerolog.Logger,
	state platform.GuildState,
	threads platform.ThreadManager,
	limiter *ratelimit.Limiter,
	catalog *i18n.Catalog,
	metrics *observability.Metrics,
) *TicketService {
	return &TicketService{
		DB:        db,
		Log:       log,
		State:     state,
		Threads:   threads,
		Limiter:   limiter,
		Catalog:   catalog,
		Metrics:   metrics,
		RateFloor: DefaultRateFloor,
	}
}

func (s *TicketService) rateFloor() time.Duration {
	if s.RateFloor > 0 {
		return s.RateFloor
	}
	return DefaultRateFloor
}

// CreateTicket handles a press of an inbox's create-ticket control. The
// control's message ID identifies the inbox; inter.ChannelID is the inbox's
// channel.
func (s *TicketService) CreateTicket(ctx context.Context, inter platform.Interaction, resp platform.Responder) error {
	inbox, err := repo.GetInbox(ctx, s.DB, inter.MessageID)
	if errors.Is(err, repo.ErrNotFound) {
		// The database was wiped or this message predates it.
		s.Metrics.TicketRejected(observability.ReasonUnknownInbox)
		content := s.Catalog.Translate(inter.Locale, i18n.KeyTicketUnknown, nil)
		return resp.Send(ctx, content, true)
	} else if err != nil {
		return err
	}

	active, err := s.activeUserTickets(ctx, inter.ChannelID, inbox.ID, inter.UserID)
	if err != nil {
		return err
	}
	if inbox.MaxTicketsPerUser > 0 && len(active) >= inbox.MaxTicketsPerUser {
		s.Metrics.TicketRejected(observability.ReasonQuota)
		content := s.Catalog.Translate(inter.Locale, i18n.KeyTicketMaxPerUser, map[string]string{
			"ticket": active[len(active)-1].JumpURL,
		})
		return resp.Send(ctx, content, true)
	}

	slowmode, err := s.State.SlowmodeDelay(ctx, inter.ChannelID)
	if err != nil {
		return err
	}
	window := s.rateFloor()
	if slowmode > window {
		window = slowmode
	}
	if remaining := s.Limiter.Check(inbox.ID, inter.UserID, window); remaining > 0 {
		s.Metrics.TicketRejected(observability.ReasonRateLimited)
		content := s.Catalog.Translate(inter.Locale, i18n.KeyTicketOnCooldown, map[string]string{
			"duration": remaining.Round(time.Second).String(),
		})
		return resp.Send(ctx, content, true)
	}

	// Acknowledge before the slow work; further updates edit this response.
	content := s.Catalog.Translate(inter.Locale, i18n.KeyTicketCreating, nil)
	if err := resp.Send(ctx, content, true); err != nil {
		return err
	}

	thread, err := s.createThread(ctx, inter, inbox)
	if err == nil {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			return repo.AddTicket(ctx, tx, thread.ID, inbox.ID, inter.UserID, inter.GuildID)
		})
	}
	if err == nil {
		err = s.sendStarterMessage(ctx, inter, inbox, thread)
	}

	if errors.Is(err, platform.ErrForbidden) {
		s.Metrics.TicketFailed()
		content := s.Catalog.Translate(inter.Locale, i18n.KeyTicketErrForbidden, nil)
		return resp.Edit(ctx, content)
	} else if err != nil {
		s.Metrics.TicketFailed()
		content := s.Catalog.Translate(inter.Locale, i18n.KeyTicketErrUnknown, nil)
		if editErr := resp.Edit(ctx, content); editErr != nil {
			s.Log.Warn().Err(editErr).Msg("Failed to edit ticket acknowledgement")
		}
		return err
	}

	s.Metrics.TicketCreated()
	content = s.Catalog.Translate(inter.Locale, i18n.KeyTicketFinished, map[string]string{
		"ticket": thread.JumpURL,
	})
	return resp.Edit(ctx, content)
}

// activeUserTickets returns the user's tickets in this inbox that are still
// live threads of the inbox channel, ascending by ID. When thread-membership
// data is available, threads the owner has left are not counted.
func (s *TicketService) activeUserTickets(ctx context.Context, channelID, inboxID, ownerID int64) ([]platform.Thread, error) {
	ids, err := repo.ListTicketIDs(ctx, s.DB, inboxID, ownerID)
	if err != nil {
		return nil, err
	}
	owned := make(map[int64]bool, len(ids))
	for _, id := range ids {
		owned[id] = true
	}

	threads, err := s.State.ActiveThreads(ctx, channelID)
	if err != nil {
		return nil, err
	}

	presence := s.State.MemberPresence()
	var active []platform.Thread
	for _, t := range threads {
		if !owned[t.ID] || t.Archived {
			continue
		}
		if presence && !t.HasMember(ownerID) {
			continue
		}
		active = append(active, t)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (s *TicketService) createThread(ctx context.Context, inter platform.Interaction, inbox *domain.Inbox) (*platform.Thread, error) {
	destination, err := s.resolveDestination(ctx, inbox, inter.ChannelID)
	if err != nil {
		return nil, err
	}

	template := DefaultTicketName
	if inbox.DefaultTicketName != nil && *inbox.DefaultTicketName != "" {
		template = *inbox.DefaultTicketName
	}

	// The counter may skip values if thread creation fails afterwards.
	counter, err := repo.IncrementInboxCounter(ctx, s.DB, inbox.ID)
	if err != nil {
		return nil, err
	}

	created := inter.CreatedAt
	name := utils.Substitute(template, map[string]string{
		"year":    fmt.Sprintf("%d", created.Year()),
		"month":   fmt.Sprintf("%02d", created.Month()),
		"day":     fmt.Sprintf("%02d", created.Day()),
		"author":  inter.DisplayName,
		"counter": fmt.Sprintf("%04d", counter%10000),
	})

	locale, err := s.State.PreferredLocale(ctx, inter.GuildID)
	if err != nil {
		return nil, err
	}
	reason := s.Catalog.Translate(locale, i18n.KeyTicketCreatingReason, map[string]string{
		"owner": inter.UserName,
	})

	return s.Threads.CreatePrivateThread(ctx, destination, utils.TruncateRunes(name, maxThreadNameLen), reason)
}

// resolveDestination picks the channel tickets are created in: the inbox's
// destination override if it still exists, otherwise the inbox's own channel.
func (s *TicketService) resolveDestination(ctx context.Context, inbox *domain.Inbox, inboxChannelID int64) (int64, error) {
	if inbox.DestinationChannelID == nil {
		return inboxChannelID, nil
	}
	ok, err := s.State.HasChannel(ctx, *inbox.DestinationChannelID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return inboxChannelID, nil
	}
	return *inbox.DestinationChannelID, nil
}

func (s *TicketService) sendStarterMessage(ctx context.Context, inter platform.Interaction, inbox *domain.Inbox, thread *platform.Thread) error {
	staff, err := ReconcileStaff(ctx, s.DB, s.State, inter.GuildID, inbox.ID)
	if err != nil {
		return err
	}

	template := s.Catalog.Translate(inter.Locale, i18n.KeyTicketStarterContent, nil)
	if inbox.StarterContent != nil && *inbox.StarterContent != "" {
		template = *inbox.StarterContent
	}

	content := utils.Substitute(template, map[string]string{
		"author": platform.FormatUserMention(inter.UserID),
		"staff":  joinMentions(staff),
	})
	return s.Threads.SendThreadMessage(ctx, thread.ID, utils.TruncateRunes(content, maxMessageLen), false)
}

func joinMentions(mentions []string) string {
	return strings.Join(mentions, " ")
}

// HandleThreadMemberRemove archives a ticket when its owner leaves the
// thread. The event may not fire for already-archived tickets.
func (s *TicketService) HandleThreadMemberRemove(ctx context.Context, ev platform.ThreadMemberRemoveEvent) error {
	thread, err := s.State.Thread(ctx, ev.ThreadID)
	if err != nil {
		return err
	}
	if thread == nil {
		s.Log.Warn().Int64("thread_id", ev.ThreadID).Msg("Ignoring unknown thread")
		return nil
	}
	if thread.OwnerID != s.State.BotID() {
		return nil
	}

	ownerID, err := repo.GetTicketOwner(ctx, s.DB, ev.ThreadID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	removed := false
	for _, id := range ev.RemovedUserIDs {
		if id == ownerID {
			removed = true
			break
		}
	}
	if !removed {
		return nil
	}

	locale, err := s.State.PreferredLocale(ctx, ev.GuildID)
	if err != nil {
		return err
	}
	content := s.Catalog.Translate(locale, i18n.KeyTicketArchivedThread, map[string]string{
		"owner": platform.FormatUserMention(ownerID),
	})
	return s.archiveWithNotice(ctx, thread, content)
}

// HandleGuildMemberRemove archives every ticket owned by a user who left
// the guild.
func (s *TicketService) HandleGuildMemberRemove(ctx context.Context, ev platform.GuildMemberRemoveEvent) error {
	ids, err := repo.ListGuildTicketsByOwner(ctx, s.DB, ev.GuildID, ev.UserID)
	if err != nil {
		return err
	}

	locale, err := s.State.PreferredLocale(ctx, ev.GuildID)
	if err != nil {
		return err
	}
	content := s.Catalog.Translate(locale, i18n.KeyTicketArchivedGuild, map[string]string{
		"owner": platform.FormatUserMention(ev.UserID),
	})

	for _, id := range ids {
		thread, err := s.State.Thread(ctx, id)
		if err != nil {
			return err
		}
		if thread == nil {
			s.Log.Warn().Int64("thread_id", id).Msg("Ignoring unknown thread")
			continue
		}
		if err := s.archiveWithNotice(ctx, thread, content); err != nil {
			return err
		}
	}
	return nil
}

// archiveWithNotice posts content to the thread without notifying anyone,
// then archives it. The thread is locked too when the bot may manage
// threads in the parent channel.
func (s *TicketService) archiveWithNotice(ctx context.Context, thread *platform.Thread, content string) error {
	perms, err := s.State.Permissions(ctx, thread.ParentID)
	if err != nil {
		return err
	}
	canLock := perms.Has(platform.PermManageThreads)

	if err := s.Threads.SendThreadMessage(ctx, thread.ID, content, true); err != nil {
		return err
	}
	return s.Threads.EditThread(ctx, thread.ID, true, canLock)
}

// HandleThreadUpdate locks tickets that were archived without being locked,
// so archived tickets cannot be silently reopened by their owners.
func (s *TicketService) HandleThreadUpdate(ctx context.Context, ev platform.ThreadUpdateEvent) error {
	if ev.OwnerID != s.State.BotID() {
		return nil
	}
	if !ev.Archived || ev.Locked {
		return nil
	}

	perms, err := s.State.Permissions(ctx, ev.ParentID)
	if err != nil {
		return err
	}
	if !perms.Has(platform.PermManageThreads) {
		return nil
	}

	if _, err := repo.GetTicketOwner(ctx, s.DB, ev.ThreadID); errors.Is(err, repo.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	locale, err := s.State.PreferredLocale(ctx, ev.GuildID)
	if err != nil {
		return err
	}
	content := s.Catalog.Translate(locale, i18n.KeyTicketArchivedLock, nil)

	// Sending into the archived thread unarchives it, so re-apply both
	// flags in one edit.
	if err := s.Threads.SendThreadMessage(ctx, ev.ThreadID, content, true); err != nil {
		return err
	}
	return s.Threads.EditThread(ctx, ev.ThreadID, true, true)
}
