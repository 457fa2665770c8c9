package platform

import (
	"context"
	"fmt"
	"sync"
)

// ModalPrompt asks the user for a single text value, prefilled with the
// current template. The driver routes the eventual submission back through
// the matching EventHandler submit method.
type ModalPrompt func(ctx context.Context, inter Interaction, inbox Message, prefill string) error

// EventHandler is the surface a Session delivers inbound activity to.
// The bot package implements it; drivers call into it from their own
// dispatch loops.
type EventHandler interface {
	// HandleComponent is invoked when a message component is pressed.
	HandleComponent(ctx context.Context, inter Interaction, resp Responder, customID string)

	// HandleMessageSelected is invoked when the user runs the
	// select-this-message command on a message.
	HandleMessageSelected(ctx context.Context, inter Interaction, resp Responder, msg Message)

	HandleInboxCreate(ctx context.Context, inter Interaction, resp Responder, channelID, destinationID int64)
	HandleInboxEditMessage(ctx context.Context, inter Interaction, resp Responder)
	HandleInboxStaff(ctx context.Context, inter Interaction, resp Responder)
	HandleInboxStaffSubmit(ctx context.Context, inter Interaction, resp Responder, inbox Message, selected []string)
	HandleInboxDestination(ctx context.Context, inter Interaction, resp Responder, channelID int64)
	HandleInboxStarter(ctx context.Context, inter Interaction, resp Responder, open ModalPrompt)
	HandleInboxStarterSubmit(ctx context.Context, inter Interaction, resp Responder, inbox Message, value string)
	HandleInboxTicketName(ctx context.Context, inter Interaction, resp Responder, open ModalPrompt)
	HandleInboxTicketNameSubmit(ctx context.Context, inter Interaction, resp Responder, inbox Message, value string)

	HandleThreadMemberRemove(ctx context.Context, ev ThreadMemberRemoveEvent)
	HandleGuildMemberRemove(ctx context.Context, ev GuildMemberRemoveEvent)
	HandleThreadUpdate(ctx context.Context, ev ThreadUpdateEvent)

	HandleChannelDelete(ctx context.Context, channelID int64)
	HandleMessageDelete(ctx context.Context, messageIDs []int64)
}

// Session is a live connection to the chat platform.
type Session interface {
	Messenger() Messenger
	Threads() ThreadManager
	State() GuildState

	// Start delivers events to h until ctx is cancelled or the connection
	// fails terminally.
	Start(ctx context.Context, h EventHandler) error

	Close() error
}

// Driver opens sessions for one concrete platform binding.
type Driver interface {
	Open(ctx context.Context, token string) (Session, error)
}

var (
	driversMu sync.Mutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver makes a driver available under the given name, typically
// from the driver package's init. Registering the same name twice panics.
func RegisterDriver(name string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, dup := drivers[name]; dup {
		panic(fmt.Sprintf("platform: driver %q registered twice", name))
	}
	drivers[name] = d
}

// LookupDriver returns the driver registered under name.
func LookupDriver(name string) (Driver, bool) {
	driversMu.Lock()
	defer driversMu.Unlock()
	d, ok := drivers[name]
	return d, ok
}
