// Package services implements the business logic for inboxes, tickets,
// selection flows, and cleanup. This file centralizes the service-level
// error values and types so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages is performed by the error
// dispatcher (see respond.go); services either respond to the user
// directly or raise one of these for the dispatcher to render.
package services

import (
	"errors"
	"fmt"

	"github.com/ticketbird/ticketbird/internal/platform"
)

// ErrInboxNotFound indicates that the referenced message is not (or is no
// longer) a registered inbox. Selection flows validate up front, so this
// surfaces only when the inbox disappears mid-flow.
var ErrInboxNotFound = errors.New("inbox not found")

// ResponseError carries a translatable message straight to the invoking
// user. It marks expected, user-correctable outcomes; the dispatcher
// renders it without logging a traceback.
type ResponseError struct {
	// Key is an i18n message key.
	Key string
	// Data holds the template placeholders for the message.
	Data map[string]string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("response required: %s", e.Key)
}

// Respond constructs a ResponseError for the given message key.
func Respond(key string, data map[string]string) *ResponseError {
	return &ResponseError{Key: key, Data: data}
}

// CapabilityError reports that the bot lacks permissions in a channel.
type CapabilityError struct {
	ChannelID int64
	Missing   platform.Permissions
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("missing permissions in channel %d: %s", e.ChannelID, e.Missing.Names())
}
