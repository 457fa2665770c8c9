// Package platform defines the abstract capabilities the bot consumes from
// the chat platform. The gateway connection, wire format, and SDK binding
// live outside this module; the core is written and tested against these
// interfaces only.
//
// Identifiers are snowflakes (opaque int64, chronological by construction).
// Permission checks use a small bitset covering only the capabilities the
// core cares about.
package platform

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrForbidden is reported by capability calls the bot lacks permission for.
// Implementations must wrap or return it for permission-denied failures so
// callers can distinguish them from unexpected platform errors.
var ErrForbidden = errors.New("platform: missing permissions")

// Permissions is a bitset of the channel capabilities the core checks.
type Permissions uint64

const (
	PermViewChannel Permissions = 1 << iota
	PermSendMessages
	PermCreatePrivateThreads
	PermSendMessagesInThreads
	PermManageThreads
)

var permNames = map[Permissions]string{
	PermViewChannel:           "view_channel",
	PermSendMessages:          "send_messages",
	PermCreatePrivateThreads:  "create_private_threads",
	PermSendMessagesInThreads: "send_messages_in_threads",
	PermManageThreads:         "manage_threads",
}

// Has reports whether p contains every bit of q.
func (p Permissions) Has(q Permissions) bool { return p&q == q }

// Missing returns the bits of required that p lacks.
func (p Permissions) Missing(required Permissions) Permissions {
	return p&required ^ required
}

// Names lists the set bits as backticked permission names, joined with
// commas, for user-facing "missing permissions" messages.
func (p Permissions) Names() string {
	var out []string
	for bit := PermViewChannel; bit <= PermManageThreads; bit <<= 1 {
		if p&bit != 0 {
			out = append(out, "`"+permNames[bit]+"`")
		}
	}
	return strings.Join(out, ", ")
}

// Embed is the minimal embed surface the core constructs: a description,
// a defining URL, and at most one image slot.
type Embed struct {
	Description string
	URL         string
	ImageURL    string
}

// IsZero reports whether the embed carries no visible content.
func (e Embed) IsZero() bool {
	return e.Description == "" && e.URL == "" && e.ImageURL == ""
}

// Attachment is a file attached to a source message, not yet re-uploaded.
type Attachment struct {
	Filename string
	Size     int64
	URL      string
}

// File references an attachment after re-upload. AttachmentURL is the
// "attachment://name" form usable as an embed image URL.
type File struct {
	Filename      string
	AttachmentURL string
}

// Message is a channel message as seen by the core.
type Message struct {
	ID            int64
	ChannelID     int64
	GuildID       int64
	AuthorID      int64
	Content       string
	Embeds        []Embed
	Attachments   []Attachment
	HasComponents bool
	JumpURL       string
}

// Thread is a (private) thread channel.
type Thread struct {
	ID        int64
	ParentID  int64
	OwnerID   int64
	Name      string
	Archived  bool
	Locked    bool
	MemberIDs []int64
	JumpURL   string
}

// HasMember reports whether userID is currently a member of the thread.
func (t *Thread) HasMember(userID int64) bool {
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Role is a guild role.
type Role struct {
	ID int64
}

// Mention returns the role's mention token.
func (r Role) Mention() string { return FormatRoleMention(r.ID) }

// Overwrite is a channel permission overwrite for a user or role principal.
type Overwrite struct {
	TargetID     int64
	TargetIsRole bool
	Allow        Permissions
}

// Mention returns the principal's mention token.
func (o Overwrite) Mention() string {
	if o.TargetIsRole {
		return FormatRoleMention(o.TargetID)
	}
	return FormatUserMention(o.TargetID)
}

// MessageParams describes an outbound message or edit. AttachControl asks
// the platform layer to attach the inbox's create-ticket button with the
// given label.
type MessageParams struct {
	Content       string
	Embeds        []Embed
	Files         []File
	AttachControl bool
	ControlLabel  string
}

// Interaction is the core's view of an inbound user action: a button press,
// a command invocation, or a correlated follow-up selection.
type Interaction struct {
	GuildID     int64
	ChannelID   int64
	MessageID   int64
	UserID      int64
	UserName    string
	DisplayName string
	Locale      string
	CreatedAt   time.Time
}

// Responder sends responses tied to a single interaction. The platform
// enforces a short response deadline: the first Send must happen quickly and
// later updates go through Edit.
type Responder interface {
	// Send sends the initial response. Ephemeral responses are visible to
	// the invoking user only. Implementations deliver content as a
	// follow-up when the initial response was already sent, so error
	// dispatch can always call Send.
	Send(ctx context.Context, content string, ephemeral bool) error

	// Edit replaces the content of the initial response.
	Edit(ctx context.Context, content string) error

	// Followup sends an additional message after the initial response.
	Followup(ctx context.Context, content string, ephemeral bool) error
}

// Messenger sends and edits channel messages and re-uploads attachments.
type Messenger interface {
	SendMessage(ctx context.Context, channelID int64, params MessageParams) (*Message, error)
	EditMessage(ctx context.Context, channelID, messageID int64, params MessageParams) (*Message, error)

	// UploadAttachment re-uploads a source attachment so it can be linked
	// from an embed image slot.
	UploadAttachment(ctx context.Context, a Attachment) (File, error)
}

// ThreadManager creates and manages (private) threads.
type ThreadManager interface {
	// CreatePrivateThread creates a non-invitable private thread under the
	// given channel. May fail with ErrForbidden or an unspecified platform
	// error.
	CreatePrivateThread(ctx context.Context, channelID int64, name, reason string) (*Thread, error)

	// SendThreadMessage sends content as a message in the thread. When
	// suppressMentions is set, mention tokens in content do not notify.
	SendThreadMessage(ctx context.Context, threadID int64, content string, suppressMentions bool) error

	// EditThread updates the thread's archived/locked flags.
	EditThread(ctx context.Context, threadID int64, archived, locked bool) error
}

// GuildState queries live guild state.
type GuildState interface {
	// BotID returns the bot's own user ID.
	BotID() int64

	// MemberPresence reports whether thread-membership data is available.
	// When false, quota checks count all non-archived threads.
	MemberPresence() bool

	Roles(ctx context.Context, guildID int64) ([]Role, error)
	PreferredLocale(ctx context.Context, guildID int64) (string, error)

	// Permissions resolves the bot's effective permissions in a channel.
	Permissions(ctx context.Context, channelID int64) (Permissions, error)

	// Overwrites lists the channel's permission overwrites.
	Overwrites(ctx context.Context, channelID int64) ([]Overwrite, error)

	// SlowmodeDelay returns the channel's live slow-mode delay.
	SlowmodeDelay(ctx context.Context, channelID int64) (time.Duration, error)

	// ActiveThreads lists the channel's non-deleted threads.
	ActiveThreads(ctx context.Context, channelID int64) ([]Thread, error)

	// Thread looks up a thread; returns (nil, nil) when unknown.
	Thread(ctx context.Context, threadID int64) (*Thread, error)

	// HasChannel reports whether the channel still exists in the guild.
	HasChannel(ctx context.Context, channelID int64) (bool, error)

	// GuildIDs lists the guilds the bot is currently a member of.
	GuildIDs(ctx context.Context) ([]int64, error)
}

// ThreadMemberRemoveEvent reports members removed from a thread.
type ThreadMemberRemoveEvent struct {
	GuildID        int64
	ThreadID       int64
	RemovedUserIDs []int64
}

// GuildMemberRemoveEvent reports a user leaving a guild.
type GuildMemberRemoveEvent struct {
	GuildID int64
	UserID  int64
}

// ThreadUpdateEvent is the raw thread-update payload the archive/lock
// reconciliation listens on.
type ThreadUpdateEvent struct {
	GuildID  int64
	ThreadID int64
	ParentID int64
	OwnerID  int64
	Archived bool
	Locked   bool
}
