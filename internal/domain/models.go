// Package domain defines the persistence models for the ticket bot: guilds,
// channels, messages, inboxes, staff links, and tickets. These types are
// mapped with GORM and form the core data layer of the application.
//
// All identifiers are platform-assigned snowflakes stored as int64 and never
// generated locally. Users, guilds, members, channels, and messages are
// created lazily the first time anything references them; deletion cascades
// follow channel -> message -> inbox and channel -> ticket.
package domain

// User is a platform user known to the bot. Rows are created lazily on
// first reference and never deleted explicitly.
type User struct {
	ID int64 `gorm:"primaryKey;autoIncrement:false"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "user" }

// Guild is a server the bot has been referenced from. Rows are removed only
// by the periodic cleanup sweep once the bot is no longer a member.
type Guild struct {
	ID int64 `gorm:"primaryKey;autoIncrement:false"`
}

// TableName returns the database table name for Guild.
func (Guild) TableName() string { return "guild" }

// Member records that a user is known within a guild. The composite key
// mirrors the platform's (guild, user) identity.
type Member struct {
	GuildID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID  int64 `gorm:"primaryKey;autoIncrement:false"`
}

// TableName returns the database table name for Member.
func (Member) TableName() string { return "member" }

// Channel is any channel or thread referenced by an inbox or ticket.
// GuildID is nil for non-guild contexts. Deleting a channel cascades to its
// messages (and through them, inboxes).
type Channel struct {
	ID      int64  `gorm:"primaryKey;autoIncrement:false"`
	GuildID *int64 `gorm:"index"`
}

// TableName returns the database table name for Channel.
func (Channel) TableName() string { return "channel" }

// Message is a platform message referenced by an inbox. Deleting the parent
// channel cascades here, and deleting a message cascades to its inbox.
type Message struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	ChannelID int64 `gorm:"not null;index"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "message" }

// Inbox is a posted message with a create-ticket control attached. Its ID is
// the underlying message's ID; the row disappears with the message.
//
// StarterContent and DefaultTicketName are templates with $placeholder
// substitution; nil means "use the built-in default". Counter increments
// once per ticket-creation attempt and may skip values when thread creation
// fails after the increment. MaxTicketsPerUser of 0 means unlimited.
type Inbox struct {
	ID                   int64 `gorm:"primaryKey;autoIncrement:false"`
	StarterContent       *string
	DefaultTicketName    *string
	Counter              int    `gorm:"not null;default:0"`
	MaxTicketsPerUser    int    `gorm:"not null;default:1"`
	DestinationChannelID *int64 `gorm:"column:destination_channel_id"`
}

// TableName returns the database table name for Inbox.
func (Inbox) TableName() string { return "inbox" }

// InboxStaff links an inbox to a staff mention token, either a user mention
// ("<@123>") or a role mention ("<@&456>"). Mention strings rather than bare
// IDs are stored so staff render correctly inside message content.
type InboxStaff struct {
	InboxID int64  `gorm:"primaryKey;autoIncrement:false"`
	Mention string `gorm:"primaryKey"`
}

// TableName returns the database table name for InboxStaff.
func (InboxStaff) TableName() string { return "inbox_staff" }

// Ticket is a private thread spawned from an inbox. Its ID is the thread
// channel's ID. OwnerID is the logical owner (the requesting user); the
// technical thread owner on the platform side is the bot. Rows are never
// deleted directly; the channel cascade removes them when the backing
// thread's channel row goes away.
type Ticket struct {
	ID      int64 `gorm:"primaryKey;autoIncrement:false"`
	InboxID int64 `gorm:"not null;index"`
	OwnerID int64 `gorm:"not null;index"`
}

// TableName returns the database table name for Ticket.
func (Ticket) TableName() string { return "ticket" }
