// Package bot glues the services to a platform session: it implements
// platform.EventHandler, routes each inbound event to the right service
// call, and funnels every command error through the error dispatcher.
package bot

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ticketbird/ticketbird/internal/pending"
	"github.com/ticketbird/ticketbird/internal/platform"
	"github.com/ticketbird/ticketbird/internal/services"
)

// Bot implements platform.EventHandler over the assembled services.
type Bot struct {
	Log        zerolog.Logger
	Inboxes    *services.InboxService
	Tickets    *services.TicketService
	Cleanup    *services.CleanupService
	Broker     *pending.Broker
	Dispatcher *services.ErrorDispatcher
}

// New assembles a Bot from its services.
func New(
	log zerolog.Logger,
	inboxes *services.InboxService,
	tickets *services.TicketService,
	cleanup *services.CleanupService,
	broker *pending.Broker,
	dispatcher *services.ErrorDispatcher,
) *Bot {
	return &Bot{
		Log:        log,
		Inboxes:    inboxes,
		Tickets:    tickets,
		Cleanup:    cleanup,
		Broker:     broker,
		Dispatcher: dispatcher,
	}
}

var _ platform.EventHandler = (*Bot)(nil)

func (b *Bot) HandleComponent(ctx context.Context, inter platform.Interaction, resp platform.Responder, customID string) {
	if customID != services.CreateTicketCustomID {
		return
	}
	err := b.Tickets.CreateTicket(ctx, inter, resp)
	b.Dispatcher.Dispatch(ctx, inter, resp, "ticket create", err)
}

func (b *Bot) HandleMessageSelected(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) {
	err := b.Broker.Resolve(ctx, inter, resp, msg)
	b.Dispatcher.Dispatch(ctx, inter, resp, "message select", err)
}

func (b *Bot) HandleInboxCreate(ctx context.Context, inter platform.Interaction, resp platform.Responder, channelID, destinationID int64) {
	err := b.Inboxes.CreateCommand(ctx, inter, resp, channelID, destinationID)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox create", err)
}

func (b *Bot) HandleInboxEditMessage(ctx context.Context, inter platform.Interaction, resp platform.Responder) {
	err := b.Inboxes.EditMessageCommand(ctx, inter, resp)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox message", err)
}

func (b *Bot) HandleInboxStaff(ctx context.Context, inter platform.Interaction, resp platform.Responder) {
	err := b.Inboxes.StaffCommand(ctx, inter, resp)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox staff", err)
}

func (b *Bot) HandleInboxStaffSubmit(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message, selected []string) {
	err := b.Inboxes.SubmitStaff(ctx, inter, resp, inbox, selected)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox staff submit", err)
}

func (b *Bot) HandleInboxDestination(ctx context.Context, inter platform.Interaction, resp platform.Responder, channelID int64) {
	err := b.Inboxes.DestinationCommand(ctx, inter, resp, channelID)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox destination", err)
}

func (b *Bot) HandleInboxStarter(ctx context.Context, inter platform.Interaction, resp platform.Responder, open platform.ModalPrompt) {
	err := b.Inboxes.StarterCommand(ctx, inter, resp, open)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox starter", err)
}

func (b *Bot) HandleInboxStarterSubmit(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message, value string) {
	err := b.Inboxes.SubmitStarter(ctx, inter, resp, inbox, value)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox starter submit", err)
}

func (b *Bot) HandleInboxTicketName(ctx context.Context, inter platform.Interaction, resp platform.Responder, open platform.ModalPrompt) {
	err := b.Inboxes.TicketNameCommand(ctx, inter, resp, open)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox new-tickets", err)
}

func (b *Bot) HandleInboxTicketNameSubmit(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message, value string) {
	err := b.Inboxes.SubmitTicketName(ctx, inter, resp, inbox, value)
	b.Dispatcher.Dispatch(ctx, inter, resp, "inbox new-tickets submit", err)
}

func (b *Bot) HandleThreadMemberRemove(ctx context.Context, ev platform.ThreadMemberRemoveEvent) {
	if err := b.Tickets.HandleThreadMemberRemove(ctx, ev); err != nil {
		b.Log.Error().Err(err).Int64("thread_id", ev.ThreadID).Msg("Failed to archive ticket after member removal")
	}
}

func (b *Bot) HandleGuildMemberRemove(ctx context.Context, ev platform.GuildMemberRemoveEvent) {
	if err := b.Tickets.HandleGuildMemberRemove(ctx, ev); err != nil {
		b.Log.Error().Err(err).Int64("user_id", ev.UserID).Msg("Failed to archive tickets after guild departure")
	}
}

func (b *Bot) HandleThreadUpdate(ctx context.Context, ev platform.ThreadUpdateEvent) {
	if err := b.Tickets.HandleThreadUpdate(ctx, ev); err != nil {
		b.Log.Error().Err(err).Int64("thread_id", ev.ThreadID).Msg("Failed to lock archived ticket")
	}
}

func (b *Bot) HandleChannelDelete(ctx context.Context, channelID int64) {
	if err := b.Cleanup.HandleChannelDelete(ctx, channelID); err != nil {
		b.Log.Error().Err(err).Int64("channel_id", channelID).Msg("Failed to clean up deleted channel")
	}
}

func (b *Bot) HandleMessageDelete(ctx context.Context, messageIDs []int64) {
	var err error
	if len(messageIDs) == 1 {
		err = b.Cleanup.HandleMessageDelete(ctx, messageIDs[0])
	} else {
		err = b.Cleanup.HandleBulkMessageDelete(ctx, messageIDs)
	}
	if err != nil {
		b.Log.Error().Err(err).Int("messages", len(messageIDs)).Msg("Failed to clean up deleted messages")
	}
}
