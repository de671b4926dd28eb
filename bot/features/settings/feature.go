package settings

import (
	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	settings service.GuildSettingsService
}

func New(settings service.GuildSettingsService) *Feature {
	return &Feature{
		settings: settings,
	}
}

// settingGroup builds the get, set and unset subcommands of one setting
func settingGroup(name, getDescription, setDescription, unsetDescription string, value *discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	value.Required = true
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        name,
		Description: setDescription,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "get",
				Description: getDescription,
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: setDescription,
				Options:     []*discordgo.ApplicationCommandOption{value},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "unset",
				Description: unsetDescription,
			},
		},
	}
}

// Commands returns /config
func (f *Feature) Commands() []common.Command {
	config := &discordgo.ApplicationCommand{
		Name:         "config",
		Description:  "Change the settings of the bot",
		DMPermission: common.GuildOnly(),
		Options: []*discordgo.ApplicationCommandOption{
			settingGroup("admin_role",
				"Show which role is currently required to modify balances",
				"Change which role is required to modify balances",
				"Unset the admin role, allowing anyone with Manage Server permissions to modify balances",
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role to set",
				}),
			settingGroup("memes_channel",
				"Show which channel vote reactions are enabled in",
				"Change which channel vote reactions are enabled in",
				"Unset the memes channel, disabling vote reactions",
				&discordgo.ApplicationCommandOption{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "The channel to enable reactions in",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				}),
			settingGroup("real_estate_category",
				"Show the category where purchased real estate channels appear",
				"Set the category where purchased real estate channels appear",
				"Unset the real estate category, preventing anyone from purchasing real estate channels",
				&discordgo.ApplicationCommandOption{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "category",
					Description:  "The category to set",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
				}),
		},
	}

	return []common.Command{{Definition: config, Handle: f.handleConfig}}
}
