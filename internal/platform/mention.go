package platform

import (
	"fmt"
	"regexp"
	"strconv"
)

// Staff mentions are stored as rendered tokens, so the two accepted shapes
// are validated at the edge and parsed back whenever an ID is needed.
var mentionPattern = regexp.MustCompile(`^<@(&?)(\d+)>$`)

// FormatUserMention returns the mention token for a user ID.
func FormatUserMention(id int64) string { return fmt.Sprintf("<@%d>", id) }

// FormatRoleMention returns the mention token for a role ID.
func FormatRoleMention(id int64) string { return fmt.Sprintf("<@&%d>", id) }

// FormatChannelMention returns the mention token for a channel ID.
func FormatChannelMention(id int64) string { return fmt.Sprintf("<#%d>", id) }

// ChannelJumpURL returns the canonical link to a guild channel, usable as an
// embed's defining URL.
func ChannelJumpURL(guildID, channelID int64) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d", guildID, channelID)
}

// ValidMention reports whether s is a user or role mention token.
func ValidMention(s string) bool { return mentionPattern.MatchString(s) }

// IsRoleMention reports whether s is a role mention token.
func IsRoleMention(s string) bool {
	m := mentionPattern.FindStringSubmatch(s)
	return m != nil && m[1] == "&"
}

// ParseMention extracts the ID from a mention token and reports whether it
// names a role. Invalid tokens return an error.
func ParseMention(s string) (id int64, isRole bool, err error) {
	m := mentionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false, fmt.Errorf("invalid user/role mention: %q", s)
	}
	id, err = strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid user/role mention: %q", s)
	}
	return id, m[1] == "&", nil
}
