package relocate

import (
	"context"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
)

// PermissionManageMessages is the Manage Messages permission bit
const PermissionManageMessages int64 = 1 << 13

// MessageFetcher loads the message named by /relocate
type MessageFetcher interface {
	FetchMessage(ctx context.Context, channelID, messageID int64) (*models.Message, error)
}

type Feature struct {
	relocate service.RelocateService
	settings service.GuildSettingsService
	messages MessageFetcher
}

func New(relocate service.RelocateService, settings service.GuildSettingsService, messages MessageFetcher) *Feature {
	return &Feature{
		relocate: relocate,
		settings: settings,
		messages: messages,
	}
}

// Commands returns /relocate and the "Send to Memes Channel" message command
func (f *Feature) Commands() []common.Command {
	relocate := &discordgo.ApplicationCommand{
		Name:         "relocate",
		Description:  "Move a message to a different channel",
		DMPermission: common.GuildOnly(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message_id",
				Description: "The ID of the message to relocate",
				Required:    true,
			},
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "destination",
				Description:  "The channel to relocate the message to",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildVoice},
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "remove_speech_bubbles",
				Description: "Whether to remove 💬 or 🗨️ from the start of the message",
			},
		},
	}

	sendToMemes := &discordgo.ApplicationCommand{
		Name:         "Send to Memes Channel",
		Type:         discordgo.MessageApplicationCommand,
		DMPermission: common.GuildOnly(),
	}

	return []common.Command{
		{Definition: relocate, Handle: f.handleRelocate, Deferred: true},
		{Definition: sendToMemes, Handle: f.handleSendToMemes, Deferred: true},
	}
}
