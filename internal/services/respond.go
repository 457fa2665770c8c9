// This file implements the error dispatcher: the last stop for errors
// coming out of command and selection handlers. Expected, user-correctable
// errors are translated and sent back quietly; anything else is logged with
// a short correlation code that is also shown to the user.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ticketbird/ticketbird/internal/i18n"
	"github.com/ticketbird/ticketbird/internal/pending"
	"github.com/ticketbird/ticketbird/internal/platform"
)

// ErrorDispatcher renders handler errors into user responses.
type ErrorDispatcher struct {
	Log     zerolog.Logger
	Catalog *i18n.Catalog
}

// errorCode returns a short uppercase token correlating a user report with
// a log line.
func errorCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Dispatch sends the appropriate response for err. command names the
// operation for the log line; a nil err is a no-op.
func (d *ErrorDispatcher) Dispatch(ctx context.Context, inter platform.Interaction, resp platform.Responder, command string, err error) {
	if err == nil {
		return
	}

	var (
		content string
		re      *ResponseError
		ce      *CapabilityError
	)
	switch {
	case errors.As(err, &re):
		content = d.Catalog.Translate(inter.Locale, re.Key, re.Data)

	case errors.As(err, &ce):
		content = d.Catalog.Translate(inter.Locale, i18n.KeyInboxCreateNoPerms, map[string]string{
			"channel":     platform.FormatChannelMention(ce.ChannelID),
			"permissions": ce.Missing.Names(),
		})

	case errors.Is(err, pending.ErrNonePending):
		content = d.Catalog.Translate(inter.Locale, i18n.KeySelectNoCommand, nil)

	case errors.Is(err, pending.ErrExpired):
		content = d.Catalog.Translate(inter.Locale, i18n.KeySelectExpired, nil)

	default:
		code := errorCode()
		d.Log.Error().
			Err(err).
			Str("command", command).
			Str("code", code).
			Msg("Unhandled command error")
		content = d.Catalog.Translate(inter.Locale, i18n.KeyErrorUnknownCommand, nil) +
			d.Catalog.Translate(inter.Locale, i18n.KeyErrorCode, map[string]string{"code": code})
	}

	if sendErr := resp.Send(ctx, content, true); sendErr != nil {
		d.Log.Warn().Err(sendErr).Str("command", command).Msg("Failed to send error response")
	}
}
