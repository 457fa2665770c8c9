package i18n

// Message keys for every user-facing string. Values are en-US source
// templates; translations register overrides under the same keys.
const (
	KeyTicketButton          = "inbox-ticket-button"
	KeyTicketUnknown         = "inbox-ticket-unknown"
	KeyTicketMaxPerUser      = "inbox-ticket-max-per-user"
	KeyTicketOnCooldown      = "inbox-ticket-on-cooldown"
	KeyTicketCreating        = "inbox-ticket-creating"
	KeyTicketCreatingReason  = "inbox-ticket-creating-reason"
	KeyTicketErrForbidden    = "inbox-ticket-error-insufficient-bot-permissions"
	KeyTicketErrUnknown      = "inbox-ticket-error-unknown"
	KeyTicketFinished        = "inbox-ticket-finished"
	KeyTicketStarterContent  = "ticket-starter-message-content"
	KeyTicketArchivedThread  = "ticket-archived-owner-left"
	KeyTicketArchivedGuild   = "ticket-archived-owner-left-guild"
	KeyTicketArchivedLock    = "ticket-archived-lock"
	KeySelectNoCommand       = "select-no-command"
	KeySelectExpired         = "select-expired"
	KeySelectUnknownInbox    = "select-unknown-inbox"
	KeySelectInvalidInbox    = "select-invalid-inbox"
	KeySelectInboxToEdit     = "select-inbox-to-edit"
	KeySelectInboxStaff      = "select-inbox-to-edit-staff"
	KeyInboxCreateNoPerms    = "inbox-create-insufficient-permissions"
	KeyInboxCreateSelect     = "inbox-create-with-message"
	KeyInboxCreateFinished   = "inbox-create-finished"
	KeyInboxCreateOversized  = "inbox-create-oversized-attachments"
	KeyInboxMessageSelect    = "inbox-message-select"
	KeyInboxMessageSelf      = "inbox-message-selected-self"
	KeyInboxMessageFinished  = "inbox-message-finished"
	KeyInboxStaffMessage     = "inbox-staff-message"
	KeyInboxStaffNoEdits     = "inbox-staff-no-edits"
	KeyDestinationMatches    = "inbox-destination-matches"
	KeyDestinationChanged    = "inbox-destination-changed"
	KeyStarterFinished       = "modal-starter-finished"
	KeyNewTicketsFinished    = "inbox-new-tickets-finished"
	KeyErrorUnknownCommand   = "error-unknown-command"
	KeyErrorCode             = "error-code"
)

var sourceMessages = map[string]string{
	KeyTicketButton: "Create Ticket",
	KeyTicketUnknown: "Sorry, this inbox is no longer recognized and must be re-created. " +
		"Please notify a server admin!",
	KeyTicketMaxPerUser: "You have too many tickets open in this inbox. " +
		"Please close your last ticket before creating a new one. ( $ticket )",
	KeyTicketOnCooldown:     "You are creating tickets too quickly! Please wait $duration before trying again.",
	KeyTicketCreating:       "Creating your ticket...",
	KeyTicketCreatingReason: "Ticket created by $owner",
	KeyTicketErrForbidden: "I am missing the permissions needed to create your ticket. " +
		"Please notify a server admin!",
	KeyTicketErrUnknown:     "An unexpected error occurred while creating your ticket.",
	KeyTicketFinished:       "Your ticket is ready! $ticket",
	KeyTicketStarterContent: "$author Thank you for creating a ticket!\n$staff",
	KeyTicketArchivedThread: "This ticket is now archived since its owner ( $owner ) left the thread.",
	KeyTicketArchivedGuild:  "This ticket is now archived since its owner ( $owner ) left the server.",
	KeyTicketArchivedLock:   "This archived ticket has been locked. Staff can unlock the thread if needed.",
	KeySelectNoCommand: "You can't select a message right now! " +
		"Please use a command that asks for a message first.",
	KeySelectExpired: "Sorry, your last command has expired. " +
		"Please use a command again and then select this message.",
	KeySelectUnknownInbox: "Sorry, $message is no longer recognized as an inbox " +
		"and must be re-created.",
	KeySelectInvalidInbox: "Sorry, $message does not look like an inbox. " +
		"The message you select should have a **Create Ticket** button under it.",
	KeySelectInboxToEdit: "You must now select the inbox you want to edit. " +
		"To do this, right click or long tap a message, then open Apps " +
		"and pick the *Select this message* command.",
	KeySelectInboxStaff: "You must now select the inbox you want to manage staff for. " +
		"To do this, right click or long tap a message, then open Apps " +
		"and pick the *Select this message* command.",
	KeyInboxCreateNoPerms: "I need the following permissions in $channel: $permissions",
	KeyInboxCreateSelect: "Your inbox will be created in $channel. " +
		"You must now select the message you want your inbox to copy. " +
		"To do this, right click or long tap a message, then open Apps " +
		"and pick the *Select this message* command.",
	KeyInboxCreateFinished: "Your inbox has been created! $inbox",
	KeyInboxCreateOversized: "The message's attachments are too large! " +
		"The total size must be under $filesize.",
	KeyInboxMessageSelect: "$inbox will be edited. " +
		"You must now select the message you want your inbox to copy. " +
		"To do this, right click or long tap a message, then open Apps " +
		"and pick the *Select this message* command.",
	KeyInboxMessageSelf: "The inbox cannot be edited with its own message. " +
		"Please select another message you want your inbox to copy.",
	KeyInboxMessageFinished: "$inbox has been updated!",
	KeyInboxStaffMessage:    "Staff for $inbox :",
	KeyInboxStaffNoEdits:    "You have not made any changes!",
	KeyDestinationMatches:   "$inbox is already creating tickets in $destination.",
	KeyDestinationChanged:   "$inbox will now create tickets in $new instead of $old.",
	KeyStarterFinished:      "The starting message for $inbox has been set!",
	KeyNewTicketsFinished:   "The ticket defaults for $inbox have been set!",
	KeyErrorUnknownCommand:  "An unknown error occurred while running this command.",
	KeyErrorCode:            "\nError code: $code",
}
