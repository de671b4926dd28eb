package models

// Member is a guild member as seen by the economy
type Member struct {
	UserID      int64
	GuildID     int64
	DisplayName string
	AvatarURL   string
	RoleIDs     []int64
	Bot         bool

	// Permissions is the member's computed permission bitset, when known
	Permissions int64
}

// HasRole reports whether the member has the given role
func (m *Member) HasRole(roleID int64) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Message is a chat message as seen by the economy.
// AuthorMember is set only when the platform delivered the author as a guild member.
type Message struct {
	ID             int64
	ChannelID      int64
	GuildID        int64
	AuthorID       int64
	AuthorMember   *Member
	WebhookID      int64
	Content        string
	AttachmentURLs []string
}

// ReactionEvent is a reaction added to or removed from a message
type ReactionEvent struct {
	MessageID int64
	ChannelID int64
	GuildID   int64
	UserID    int64
	Emoji     string
}
