package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/arm32x/bobux-economy/models"
)

// NoResults is shown when a listing is empty
const NoResults = "No results"

// MentionUser formats a user mention
func MentionUser(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// MentionRole formats a role mention
func MentionRole(roleID int64) string {
	return fmt.Sprintf("<@&%d>", roleID)
}

// MentionChannel formats a channel mention. Categories render as mentions too.
func MentionChannel(channelID int64) string {
	return fmt.Sprintf("<#%d>", channelID)
}

// MentionOrUnset mentions an optional id, or says "unset"
func MentionOrUnset(id *int64, mention func(int64) string) string {
	if id == nil {
		return "unset"
	}
	return mention(*id)
}

// FormatBalanceLine formats "<@user>: 12 bobux"
func FormatBalanceLine(userID int64, balance models.Bobux) string {
	return fmt.Sprintf("%s: %s", MentionUser(userID), balance)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// JoinLines joins message lines, or returns NoResults when there are none
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return NoResults
	}
	return strings.Join(lines, "\n")
}
