package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
)

// reactionPageSize is the largest page the reactions endpoint returns
const reactionPageSize = 100

// discordSession is the part of *discordgo.Session the platform adapter calls
type discordSession interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	WebhookCreate(channelID, name, avatar string, options ...discordgo.RequestOption) (*discordgo.Webhook, error)
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	WebhookDelete(webhookID string, options ...discordgo.RequestOption) error
}

// Platform adapts a Discord session to the chat platform the economy talks to
type Platform struct {
	session   discordSession
	botUserID func() int64
}

// NewPlatform creates the adapter over a live session
func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{
		session: s,
		botUserID: func() int64 {
			if s.State == nil || s.State.User == nil {
				return 0
			}
			id, _ := common.ParseSnowflake(s.State.User.ID)
			return id
		},
	}
}

var (
	_ service.ChatPlatform     = (*Platform)(nil)
	_ service.RoleManager      = (*Platform)(nil)
	_ service.ChannelManager   = (*Platform)(nil)
	_ service.MessageRelocator = (*Platform)(nil)
)

// mapError turns 403 responses into service.ErrForbidden
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", service.ErrForbidden, err)
	}
	return err
}

// isUnknown reports whether Discord answered with one of the given "unknown entity" codes
func isUnknown(err error, codes ...int) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	for _, code := range codes {
		if restErr.Message.Code == code {
			return true
		}
	}
	return false
}

func (p *Platform) BotUserID() int64 {
	return p.botUserID()
}

func (p *Platform) FetchMessage(ctx context.Context, channelID, messageID int64) (*models.Message, error) {
	m, err := p.session.ChannelMessage(common.FormatSnowflake(channelID), common.FormatSnowflake(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return common.ToMessage(m)
}

// MessagesAfter returns messages oldest first. Discord returns each page newest first.
func (p *Platform) MessagesAfter(ctx context.Context, channelID, afterID int64, limit int) ([]*models.Message, error) {
	page, err := p.session.ChannelMessages(common.FormatSnowflake(channelID), limit, "", common.FormatSnowflake(afterID), "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}

	messages := make([]*models.Message, 0, len(page))
	for _, m := range page {
		msg, err := common.ToMessage(m)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })

	return messages, nil
}

func (p *Platform) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	return mapError(p.session.MessageReactionAdd(common.FormatSnowflake(channelID), common.FormatSnowflake(messageID), emoji, discordgo.WithContext(ctx)))
}

func (p *Platform) RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, userID int64) error {
	return mapError(p.session.MessageReactionRemove(common.FormatSnowflake(channelID), common.FormatSnowflake(messageID), emoji, common.FormatSnowflake(userID), discordgo.WithContext(ctx)))
}

// ReactionUsers pages through every user who reacted with emoji
func (p *Platform) ReactionUsers(ctx context.Context, channelID, messageID int64, emoji string) ([]int64, error) {
	var ids []int64
	after := ""

	for {
		users, err := p.session.MessageReactions(common.FormatSnowflake(channelID), common.FormatSnowflake(messageID), emoji, reactionPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapError(err)
		}

		for _, u := range users {
			id, err := common.ParseSnowflake(u.ID)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}

		if len(users) < reactionPageSize {
			return ids, nil
		}
		after = users[len(users)-1].ID
	}
}

func (p *Platform) GrantRole(ctx context.Context, guildID, userID, roleID int64) error {
	return mapError(p.session.GuildMemberRoleAdd(common.FormatSnowflake(guildID), common.FormatSnowflake(userID), common.FormatSnowflake(roleID), discordgo.WithContext(ctx)))
}

func (p *Platform) RevokeRole(ctx context.Context, guildID, userID, roleID int64) error {
	return mapError(p.session.GuildMemberRoleRemove(common.FormatSnowflake(guildID), common.FormatSnowflake(userID), common.FormatSnowflake(roleID), discordgo.WithContext(ctx)))
}

// CreateOwnedChannel lets the owner manage the channel. The bot can see it but cannot post.
func (p *Platform) CreateOwnedChannel(ctx context.Context, guildID, categoryID, ownerID int64, name string, kind models.ChannelKind) (int64, error) {
	channelType := discordgo.ChannelTypeGuildText
	if kind == models.ChannelKindVoice {
		channelType = discordgo.ChannelTypeGuildVoice
	}

	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:    common.FormatSnowflake(ownerID),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionManageChannels,
		},
	}
	if botID := p.BotUserID(); botID != 0 {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    common.FormatSnowflake(botID),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionManageChannels,
			Deny:  discordgo.PermissionSendMessages,
		})
	}

	channel, err := p.session.GuildChannelCreateComplex(common.FormatSnowflake(guildID), discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 channelType,
		ParentID:             common.FormatSnowflake(categoryID),
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, mapError(err)
	}

	return common.ParseSnowflake(channel.ID)
}

func (p *Platform) DeleteChannel(ctx context.Context, channelID int64) error {
	_, err := p.session.ChannelDelete(common.FormatSnowflake(channelID), discordgo.WithContext(ctx))
	if isUnknown(err, discordgo.ErrCodeUnknownChannel) {
		return nil
	}
	return mapError(err)
}

func (p *Platform) CreateWebhook(ctx context.Context, channelID int64, name string) (*service.Webhook, error) {
	webhook, err := p.session.WebhookCreate(common.FormatSnowflake(channelID), name, "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}

	id, err := common.ParseSnowflake(webhook.ID)
	if err != nil {
		return nil, err
	}
	return &service.Webhook{ID: id, Token: webhook.Token}, nil
}

// ExecuteWebhook reposts content with the original attachments linked below it
func (p *Platform) ExecuteWebhook(ctx context.Context, webhook *service.Webhook, repost *service.Repost) error {
	content := repost.Content
	if len(repost.AttachmentURLs) > 0 {
		parts := append([]string{content}, repost.AttachmentURLs...)
		content = strings.TrimSpace(strings.Join(parts, "\n"))
	}

	_, err := p.session.WebhookExecute(common.FormatSnowflake(webhook.ID), webhook.Token, true, &discordgo.WebhookParams{
		Content:         content,
		Username:        repost.Username,
		AvatarURL:       repost.AvatarURL,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}, discordgo.WithContext(ctx))
	return mapError(err)
}

func (p *Platform) DeleteWebhook(ctx context.Context, webhookID int64) error {
	return mapError(p.session.WebhookDelete(common.FormatSnowflake(webhookID), discordgo.WithContext(ctx)))
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID int64) error {
	return mapError(p.session.ChannelMessageDelete(common.FormatSnowflake(channelID), common.FormatSnowflake(messageID), discordgo.WithContext(ctx)))
}
