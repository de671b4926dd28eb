package realestate

import (
	"fmt"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	realEstate service.RealEstateService
}

func New(realEstate service.RealEstateService) *Feature {
	return &Feature{
		realEstate: realEstate,
	}
}

func buySubcommand(kind models.ChannelKind) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        string(kind),
		Description: fmt.Sprintf("Buy a %s channel for %s", kind, service.ChannelPrices[kind]),
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "The name of the purchased channel",
			Required:    true,
			MaxLength:   100,
		}},
	}
}

// Commands returns /real_estate and the "Check Real Estate" user command
func (f *Feature) Commands() []common.Command {
	realEstate := &discordgo.ApplicationCommand{
		Name:         "real_estate",
		Description:  "Manage your real estate",
		DMPermission: common.GuildOnly(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "buy",
				Description: "Buy a real estate channel",
				Options: []*discordgo.ApplicationCommandOption{
					buySubcommand(models.ChannelKindText),
					buySubcommand(models.ChannelKindVoice),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sell",
				Description: "Sell one of your channels for half of its purchase price",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "The channel to sell",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildVoice},
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "check",
				Description: "Check the real estate holdings of yourself or someone else",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "self",
						Description: "Check your real estate holdings",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "user",
						Description: "Check someone's real estate holdings",
						Options: []*discordgo.ApplicationCommandOption{{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "target",
							Description: "The user to check the real estate holdings of",
							Required:    true,
						}},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "everyone",
						Description: "Check the real estate holdings of everyone in this server",
					},
				},
			},
		},
	}

	checkRealEstate := &discordgo.ApplicationCommand{
		Name:         "Check Real Estate",
		Type:         discordgo.UserApplicationCommand,
		DMPermission: common.GuildOnly(),
	}

	return []common.Command{
		{Definition: realEstate, Handle: f.handleRealEstate},
		{Definition: checkRealEstate, Handle: f.handleCheckRealEstate},
	}
}
