package common

import (
	"fmt"
	"strconv"

	"github.com/arm32x/bobux-economy/models"
	"github.com/bwmarrin/discordgo"
)

// ParseSnowflake parses a Discord id. The empty string is 0.
func ParseSnowflake(id string) (int64, error) {
	if id == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return parsed, nil
}

// FormatSnowflake formats an id for the Discord API
func FormatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ToMember converts a guild member. m.User must be set.
func ToMember(m *discordgo.Member, guildID int64) (*models.Member, error) {
	if m.User == nil {
		return nil, fmt.Errorf("member without user")
	}

	userID, err := ParseSnowflake(m.User.ID)
	if err != nil {
		return nil, err
	}

	roles := make([]int64, 0, len(m.Roles))
	for _, r := range m.Roles {
		roleID, err := ParseSnowflake(r)
		if err != nil {
			return nil, err
		}
		roles = append(roles, roleID)
	}

	return &models.Member{
		UserID:      userID,
		GuildID:     guildID,
		DisplayName: m.DisplayName(),
		AvatarURL:   m.AvatarURL(""),
		RoleIDs:     roles,
		Bot:         m.User.Bot,
		Permissions: m.Permissions,
	}, nil
}

// ToMessage converts a message. The author member is only set when Discord delivered it.
func ToMessage(m *discordgo.Message) (*models.Message, error) {
	id, err := ParseSnowflake(m.ID)
	if err != nil {
		return nil, err
	}
	channelID, err := ParseSnowflake(m.ChannelID)
	if err != nil {
		return nil, err
	}
	guildID, err := ParseSnowflake(m.GuildID)
	if err != nil {
		return nil, err
	}
	webhookID, err := ParseSnowflake(m.WebhookID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        id,
		ChannelID: channelID,
		GuildID:   guildID,
		WebhookID: webhookID,
		Content:   m.Content,
	}

	if m.Author != nil {
		if msg.AuthorID, err = ParseSnowflake(m.Author.ID); err != nil {
			return nil, err
		}
		if m.Member != nil && guildID != 0 && webhookID == 0 {
			// Gateway members arrive without their user
			member := *m.Member
			member.User = m.Author
			if msg.AuthorMember, err = ToMember(&member, guildID); err != nil {
				return nil, err
			}
		}
	}

	for _, a := range m.Attachments {
		msg.AttachmentURLs = append(msg.AttachmentURLs, a.URL)
	}

	return msg, nil
}

// ToReactionEvent converts a gateway reaction
func ToReactionEvent(r *discordgo.MessageReaction) (models.ReactionEvent, error) {
	var event models.ReactionEvent
	var err error

	if event.MessageID, err = ParseSnowflake(r.MessageID); err != nil {
		return event, err
	}
	if event.ChannelID, err = ParseSnowflake(r.ChannelID); err != nil {
		return event, err
	}
	if event.GuildID, err = ParseSnowflake(r.GuildID); err != nil {
		return event, err
	}
	if event.UserID, err = ParseSnowflake(r.UserID); err != nil {
		return event, err
	}
	event.Emoji = r.Emoji.APIName()

	return event, nil
}
