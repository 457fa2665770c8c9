// This file implements inbox administration: creating inboxes, replacing
// their messages, managing staff, retargeting destinations, and editing the
// per-inbox ticket defaults.
//
// Commands that operate on an existing inbox run in two steps: the command
// responds with instructions and registers a continuation with the pending
// broker, and the user's follow-up message selection completes it.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/ticketbird/ticketbird/internal/i18n"
	"github.com/ticketbird/ticketbird/internal/pending"
	"github.com/ticketbird/ticketbird/internal/platform"
	"github.com/ticketbird/ticketbird/internal/repo"
)

// CreateTicketCustomID identifies the create-ticket control on inbox
// messages. It is stable across restarts so old messages keep working.
const CreateTicketCustomID = "create-ticket"

// DefaultMaxAttachmentSize caps the total size of attachments copied into
// an inbox message.
const DefaultMaxAttachmentSize int64 = 25 << 20

// Permissions the bot needs in the relevant channels before an inbox is
// created or retargeted.
const (
	requiredChannelPerms = platform.PermViewChannel |
		platform.PermSendMessages
	requiredDestinationPerms = platform.PermViewChannel |
		platform.PermCreatePrivateThreads |
		platform.PermSendMessagesInThreads
)

// Control describes the interactive component attached to an inbox message.
type Control struct {
	CustomID string
	Label    string
}

// InboxService manages inbox lifecycle and configuration.
type InboxService struct {
	DB      *gorm.DB
	Log     zerolog.Logger
	Msg     platform.Messenger
	State   platform.GuildState
	Broker  *pending.Broker
	Catalog *i18n.Catalog

	// MaxAttachmentSize caps the total attachment bytes copied into an
	// inbox message.
	MaxAttachmentSize int64

	// DefaultMaxTicketsPerUser is stored on newly created inboxes as their
	// per-user active ticket quota; 0 means unlimited.
	DefaultMaxTicketsPerUser int

	// uploadPacer spaces out attachment re-uploads so a message with many
	// attachments does not trip the platform's rate limits.
	uploadPacer *rate.Limiter

	mu       sync.Mutex
	controls map[int64]Control
}

// NewInboxService constructs an InboxService with default limits.
func NewInboxService(
	db *gorm.DB,
	log zerolog.Logger,
	msg platform.Messenger,
	state platform.GuildState,
	broker *pending.Broker,
	catalog *i18n.Catalog,
) *InboxService {
	return &InboxService{
		DB:                       db,
		Log:                      log,
		Msg:                      msg,
		State:                    state,
		Broker:                   broker,
		Catalog:                  catalog,
		MaxAttachmentSize:        DefaultMaxAttachmentSize,
		DefaultMaxTicketsPerUser: 1,
		uploadPacer:              rate.NewLimiter(rate.Every(time.Second), 1),
		controls:                 make(map[int64]Control),
	}
}

// Control returns the registered control for a message, if any.
func (s *InboxService) Control(messageID int64) (Control, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.controls[messageID]
	return c, ok
}

func (s *InboxService) registerControl(messageID int64, label string) {
	s.mu.Lock()
	s.controls[messageID] = Control{CustomID: CreateTicketCustomID, Label: label}
	s.mu.Unlock()
}

// checkBotPermissions verifies the bot holds required in the channel.
func (s *InboxService) checkBotPermissions(ctx context.Context, channelID int64, required platform.Permissions) error {
	perms, err := s.State.Permissions(ctx, channelID)
	if err != nil {
		return err
	}
	if missing := perms.Missing(required); missing != 0 {
		return &CapabilityError{ChannelID: channelID, Missing: missing}
	}
	return nil
}

// CreateCommand starts the inbox creation flow. destinationID may be zero
// to create tickets in the inbox's own channel.
func (s *InboxService) CreateCommand(ctx context.Context, inter platform.Interaction, resp platform.Responder, channelID, destinationID int64) error {
	if destinationID == 0 {
		destinationID = channelID
	}

	destPerms := requiredDestinationPerms
	if channelID != destinationID {
		if err := s.checkBotPermissions(ctx, channelID, requiredChannelPerms); err != nil {
			return err
		}
	} else {
		destPerms |= requiredChannelPerms
	}
	if err := s.checkBotPermissions(ctx, destinationID, destPerms); err != nil {
		return err
	}

	content := s.Catalog.Translate(inter.Locale, i18n.KeyInboxCreateSelect, map[string]string{
		"channel":     platform.FormatChannelMention(channelID),
		"destination": platform.FormatChannelMention(destinationID),
	})
	if err := resp.Send(ctx, content, true); err != nil {
		return err
	}

	s.Broker.Register(inter.GuildID, inter.UserID, func(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error {
		return s.CreateInbox(ctx, inter, resp, msg, channelID, destinationID)
	})
	return nil
}

// CreateInbox copies source into a new inbox message in channelID and
// registers the inbox, wiring its destination and default staff.
func (s *InboxService) CreateInbox(ctx context.Context, inter platform.Interaction, resp platform.Responder, source platform.Message, channelID, destinationID int64) error {
	params, err := s.buildInboxMessage(ctx, source, platform.ChannelJumpURL(inter.GuildID, channelID))
	if err != nil {
		return err
	}

	locale, err := s.State.PreferredLocale(ctx, inter.GuildID)
	if err != nil {
		return err
	}
	params.AttachControl = true
	params.ControlLabel = s.Catalog.Translate(locale, i18n.KeyTicketButton, nil)

	msg, err := s.Msg.SendMessage(ctx, channelID, *params)
	if err != nil {
		return err
	}
	s.registerControl(msg.ID, params.ControlLabel)

	staff, err := s.defaultInboxStaff(ctx, destinationID)
	if err != nil {
		return err
	}

	starter := s.Catalog.Translate(locale, i18n.KeyTicketStarterContent, nil)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := repo.AddInbox(ctx, tx, msg.ID, msg.ChannelID, &inter.GuildID); err != nil {
			return err
		}
		if err := repo.SetInboxStarterContent(ctx, tx, msg.ID, &starter); err != nil {
			return err
		}
		if err := repo.SetInboxMaxTicketsPerUser(ctx, tx, msg.ID, s.DefaultMaxTicketsPerUser); err != nil {
			return err
		}
		for _, mention := range staff {
			if err := repo.AddInboxStaff(ctx, tx, msg.ID, mention); err != nil {
				return err
			}
		}
		if destinationID != channelID {
			return repo.SetInboxDestination(ctx, tx, msg.ID, &destinationID, &inter.GuildID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	content := s.Catalog.Translate(inter.Locale, i18n.KeyInboxCreateFinished, map[string]string{
		"inbox": msg.JumpURL,
	})
	return resp.Followup(ctx, content, true)
}

// buildInboxMessage converts a source message into the embeds and files of
// an inbox message. Content and attachments are copied into embeds; when
// the source has no content of its own, its embeds are copied instead.
func (s *InboxService) buildInboxMessage(ctx context.Context, source platform.Message, embedURL string) (*platform.MessageParams, error) {
	maxSize := s.MaxAttachmentSize
	if maxSize <= 0 {
		maxSize = DefaultMaxAttachmentSize
	}
	var total int64
	for _, a := range source.Attachments {
		total += a.Size
	}
	if total > maxSize {
		return nil, Respond(i18n.KeyInboxCreateOversized, map[string]string{
			"filesize": humanize.Bytes(uint64(maxSize)),
		})
	}

	embeds := []platform.Embed{{Description: source.Content}}

	embedsCopied := false
	if embeds[0].IsZero() && len(source.Embeds) > 0 {
		embeds = append([]platform.Embed(nil), source.Embeds...)
		embedsCopied = true
	}

	var files []platform.File
	for _, attachment := range source.Attachments {
		if err := s.uploadPacer.Wait(ctx); err != nil {
			return nil, err
		}
		f, err := s.Msg.UploadAttachment(ctx, attachment)
		if err != nil {
			return nil, err
		}
		files = append(files, f)

		switch {
		case embedsCopied:
		case embeds[0].URL == "":
			embeds[0].URL = embedURL
			embeds[0].ImageURL = f.AttachmentURL
		default:
			// Embeds sharing a URL render as one gallery.
			embeds = append(embeds, platform.Embed{URL: embedURL, ImageURL: f.AttachmentURL})
		}
	}

	return &platform.MessageParams{Embeds: embeds, Files: files}, nil
}

// defaultInboxStaff derives the initial staff from the destination
// channel's permission overwrites: every principal allowed to manage
// threads, except the bot itself.
func (s *InboxService) defaultInboxStaff(ctx context.Context, channelID int64) ([]string, error) {
	overwrites, err := s.State.Overwrites(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var staff []string
	for _, o := range overwrites {
		if !o.Allow.Has(platform.PermManageThreads) {
			continue
		}
		if !o.TargetIsRole && o.TargetID == s.State.BotID() {
			continue
		}
		staff = append(staff, o.Mention())
	}
	return staff, nil
}

// registerInboxSelection registers a continuation that first verifies the
// selected message is a known inbox.
func (s *InboxService) registerInboxSelection(inter platform.Interaction, fn pending.Continuation) {
	s.Broker.Register(inter.GuildID, inter.UserID, func(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error {
		if err := s.checkInboxMessage(ctx, msg); err != nil {
			return err
		}
		return fn(ctx, inter, resp, msg)
	})
}

// checkInboxMessage verifies msg is a registered inbox and distinguishes a
// forgotten inbox (ours, but missing from the database) from an arbitrary
// message.
func (s *InboxService) checkInboxMessage(ctx context.Context, msg platform.Message) error {
	exists, err := repo.InboxExists(ctx, s.DB, msg.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	key := i18n.KeySelectInvalidInbox
	if s.looksLikeInbox(msg) {
		key = i18n.KeySelectUnknownInbox
	}
	return Respond(key, map[string]string{"message": msg.JumpURL})
}

// looksLikeInbox is a heuristic: our own message carrying components.
func (s *InboxService) looksLikeInbox(msg platform.Message) bool {
	return msg.AuthorID == s.State.BotID() && msg.HasComponents
}

// EditMessageCommand starts the inbox message replacement flow.
func (s *InboxService) EditMessageCommand(ctx context.Context, inter platform.Interaction, resp platform.Responder) error {
	content := s.Catalog.Translate(inter.Locale, i18n.KeySelectInboxToEdit, nil)
	if err := resp.Send(ctx, content, true); err != nil {
		return err
	}
	s.registerInboxSelection(inter, s.selectMessageToEditInbox)
	return nil
}

// selectMessageToEditInbox is step two of the message replacement flow: an
// inbox is selected, and the user must now select the message to copy.
func (s *InboxService) selectMessageToEditInbox(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message) error {
	content := s.Catalog.Translate(inter.Locale, i18n.KeyInboxMessageSelect, map[string]string{
		"inbox": inbox.JumpURL,
	})
	if err := resp.Send(ctx, content, true); err != nil {
		return err
	}

	s.Broker.Register(inter.GuildID, inter.UserID, func(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error {
		return s.EditInboxMessage(ctx, inter, resp, msg, inbox)
	})
	return nil
}

// EditInboxMessage replaces an inbox's message content with a copy of
// source, refreshing the control label for the guild's current locale.
func (s *InboxService) EditInboxMessage(ctx context.Context, inter platform.Interaction, resp platform.Responder, source, inbox platform.Message) error {
	if source.ID == inbox.ID {
		return Respond(i18n.KeyInboxMessageSelf, nil)
	}

	params, err := s.buildInboxMessage(ctx, source, platform.ChannelJumpURL(inter.GuildID, inbox.ChannelID))
	if err != nil {
		return err
	}

	locale, err := s.State.PreferredLocale(ctx, inter.GuildID)
	if err != nil {
		return err
	}
	params.AttachControl = true
	params.ControlLabel = s.Catalog.Translate(locale, i18n.KeyTicketButton, nil)

	if _, err := s.Msg.EditMessage(ctx, inbox.ChannelID, inbox.ID, *params); err != nil {
		return err
	}
	s.registerControl(inbox.ID, params.ControlLabel)

	content := s.Catalog.Translate(inter.Locale, i18n.KeyInboxMessageFinished, map[string]string{
		"inbox": inbox.JumpURL,
	})
	return resp.Followup(ctx, content, true)
}

// StaffCommand starts the staff management flow.
func (s *InboxService) StaffCommand(ctx context.Context, inter platform.Interaction, resp platform.Responder) error {
	content := s.Catalog.Translate(inter.Locale, i18n.KeySelectInboxStaff, nil)
	if err := resp.Send(ctx, content, true); err != nil {
		return err
	}
	s.registerInboxSelection(inter, s.manageInboxStaff)
	return nil
}

// manageInboxStaff shows the inbox's current staff after pruning stale
// role mentions.
func (s *InboxService) manageInboxStaff(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message) error {
	staff, err := ReconcileStaff(ctx, s.DB, s.State, inter.GuildID, inbox.ID)
	if err != nil {
		return err
	}

	content := s.Catalog.Translate(inter.Locale, i18n.KeyInboxStaffMessage, map[string]string{
		"inbox": inbox.JumpURL,
	})
	if len(staff) > 0 {
		content += "\n" + strings.Join(staff, " ")
	}
	return resp.Send(ctx, content, true)
}

// SubmitStaff applies a staff selection to an inbox as a diff against the
// current set. An empty diff is rejected so accidental submissions do not
// silently succeed.
func (s *InboxService) SubmitStaff(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message, selected []string) error {
	current, err := repo.ListInboxStaff(ctx, s.DB, inbox.ID)
	if err != nil {
		return err
	}

	currentSet := make(map[string]bool, len(current))
	for _, m := range current {
		currentSet[m] = true
	}
	selectedSet := make(map[string]bool, len(selected))
	for _, m := range selected {
		selectedSet[m] = true
	}

	var added, removed []string
	for _, m := range selected {
		if !currentSet[m] {
			added = append(added, m)
		}
	}
	for _, m := range current {
		if !selectedSet[m] {
			removed = append(removed, m)
		}
	}

	if len(added) == 0 && len(removed) == 0 {
		return Respond(i18n.KeyInboxStaffNoEdits, nil)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range added {
			if err := repo.AddInboxStaff(ctx, tx, inbox.ID, m); err != nil {
				return err
			}
		}
		for _, m := range removed {
			if _, err := repo.RemoveInboxStaff(ctx, tx, inbox.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	content := s.Catalog.Translate(inter.Locale, i18n.KeyInboxStaffMessage, map[string]string{
		"inbox": inbox.JumpURL,
	})
	if len(selected) > 0 {
		content += "\n" + strings.Join(selected, " ")
	}
	return resp.Send(ctx, content, true)
}

// DestinationCommand starts the destination retargeting flow.
func (s *InboxService) DestinationCommand(ctx context.Context, inter platform.Interaction, resp platform.Responder, channelID int64) error {
	if err := s.checkBotPermissions(ctx, channelID, requiredDestinationPerms); err != nil {
		return err
	}

	content := s.Catalog.Translate(inter.Locale, i18n.KeySelectInboxToEdit, nil)
	if err := resp.Send(ctx, content, true); err != nil {
		return err
	}
	s.registerInboxSelection(inter, func(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error {
		return s.EditDestination(ctx, inter, resp, msg, channelID)
	})
	return nil
}

// EditDestination points an inbox at a new ticket destination. Selecting
// the current destination is reported without a write.
func (s *InboxService) EditDestination(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message, destinationID int64) error {
	row, err := repo.GetInbox(ctx, s.DB, inbox.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrInboxNotFound
	} else if err != nil {
		return err
	}

	old := inbox.ChannelID
	if row.DestinationChannelID != nil {
		ok, err := s.State.HasChannel(ctx, *row.DestinationChannelID)
		if err != nil {
			return err
		}
		if ok {
			old = *row.DestinationChannelID
		}
	}

	if old == destinationID {
		content := s.Catalog.Translate(inter.Locale, i18n.KeyDestinationMatches, map[string]string{
			"inbox":       inbox.JumpURL,
			"destination": platform.FormatChannelMention(destinationID),
		})
		return resp.Send(ctx, content, true)
	}

	if err := repo.SetInboxDestination(ctx, s.DB, inbox.ID, &destinationID, &inter.GuildID); err != nil {
		return err
	}

	content := s.Catalog.Translate(inter.Locale, i18n.KeyDestinationChanged, map[string]string{
		"inbox": inbox.JumpURL,
		"old":   platform.FormatChannelMention(old),
		"new":   platform.FormatChannelMention(destinationID),
	})
	return resp.Send(ctx, content, true)
}

// StarterCommand starts the starter message editing flow. The continuation
// reports the inbox so the caller can open a prefilled modal.
func (s *InboxService) StarterCommand(ctx context.Context, inter platform.Interaction, resp platform.Responder, open func(ctx context.Context, inter platform.Interaction, inbox platform.Message, prefill string) error) error {
	content := s.Catalog.Translate(inter.Locale, i18n.KeySelectInboxToEdit, nil)
	if err := resp.Send(ctx, content, true); err != nil {
		return err
	}
	s.registerInboxSelection(inter, func(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error {
		prefill, err := s.StarterPrefill(ctx, msg.ID)
		if err != nil {
			return err
		}
		return open(ctx, inter, msg, prefill)
	})
	return nil
}

// StarterPrefill returns the inbox's starter template, or the built-in
// default when unset.
func (s *InboxService) StarterPrefill(ctx context.Context, inboxID int64) (string, error) {
	row, err := repo.GetInbox(ctx, s.DB, inboxID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrInboxNotFound
	} else if err != nil {
		return "", err
	}
	if row.StarterContent != nil && *row.StarterContent != "" {
		return *row.StarterContent, nil
	}
	return s.Catalog.Translate("", i18n.KeyTicketStarterContent, nil), nil
}

// SubmitStarter stores a new starter template for the inbox. An empty
// value reverts to the built-in default.
func (s *InboxService) SubmitStarter(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message, content string) error {
	var value *string
	if content != "" {
		value = &content
	}
	if err := repo.SetInboxStarterContent(ctx, s.DB, inbox.ID, value); err != nil {
		return err
	}

	reply := s.Catalog.Translate(inter.Locale, i18n.KeyStarterFinished, map[string]string{
		"inbox": inbox.JumpURL,
	})
	return resp.Send(ctx, reply, true)
}

// TicketNameCommand starts the ticket defaults editing flow, mirroring
// StarterCommand.
func (s *InboxService) TicketNameCommand(ctx context.Context, inter platform.Interaction, resp platform.Responder, open func(ctx context.Context, inter platform.Interaction, inbox platform.Message, prefill string) error) error {
	content := s.Catalog.Translate(inter.Locale, i18n.KeySelectInboxToEdit, nil)
	if err := resp.Send(ctx, content, true); err != nil {
		return err
	}
	s.registerInboxSelection(inter, func(ctx context.Context, inter platform.Interaction, resp platform.Responder, msg platform.Message) error {
		prefill, err := s.TicketNamePrefill(ctx, msg.ID)
		if err != nil {
			return err
		}
		return open(ctx, inter, msg, prefill)
	})
	return nil
}

// TicketNamePrefill returns the inbox's ticket name template, or the
// built-in default when unset.
func (s *InboxService) TicketNamePrefill(ctx context.Context, inboxID int64) (string, error) {
	row, err := repo.GetInbox(ctx, s.DB, inboxID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrInboxNotFound
	} else if err != nil {
		return "", err
	}
	if row.DefaultTicketName != nil && *row.DefaultTicketName != "" {
		return *row.DefaultTicketName, nil
	}
	return DefaultTicketName, nil
}

// SubmitTicketName stores a new ticket name template for the inbox. An
// empty value reverts to the built-in default.
func (s *InboxService) SubmitTicketName(ctx context.Context, inter platform.Interaction, resp platform.Responder, inbox platform.Message, name string) error {
	var value *string
	if name != "" {
		value = &name
	}
	if err := repo.SetInboxDefaultTicketName(ctx, s.DB, inbox.ID, value); err != nil {
		return err
	}

	reply := s.Catalog.Translate(inter.Locale, i18n.KeyNewTicketsFinished, map[string]string{
		"inbox": inbox.JumpURL,
	})
	return resp.Send(ctx, reply, true)
}
