package subscriptions

import (
	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	subscriptions service.SubscriptionService
	settings      service.GuildSettingsService
}

func New(subscriptions service.SubscriptionService, settings service.GuildSettingsService) *Feature {
	return &Feature{
		subscriptions: subscriptions,
		settings:      settings,
	}
}

func roleOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "role",
		Description: description,
		Required:    true,
	}
}

// Commands returns /subscriptions, /subscribe and /unsubscribe
func (f *Feature) Commands() []common.Command {
	subscriptions := &discordgo.ApplicationCommand{
		Name:         "subscriptions",
		Description:  "Manage subscriptions",
		DMPermission: common.GuildOnly(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "new",
				Description: "Create a new subscription in this server",
				Options: []*discordgo.ApplicationCommandOption{
					roleOption("The role to grant to subscribers"),
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "price_per_week",
						Description: "The price of this subscription, charged weekly",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "delete",
				Description: "Delete a subscription from this server; current subscribers keep the role",
				Options:     []*discordgo.ApplicationCommandOption{roleOption("The role of the subscription to delete")},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List available subscriptions",
			},
		},
	}

	subscribe := &discordgo.ApplicationCommand{
		Name:         "subscribe",
		Description:  "Subscribe to a subscription",
		DMPermission: common.GuildOnly(),
		Options:      []*discordgo.ApplicationCommandOption{roleOption("The role of the subscription to subscribe to")},
	}

	unsubscribe := &discordgo.ApplicationCommand{
		Name:         "unsubscribe",
		Description:  "Unsubscribe from a subscription",
		DMPermission: common.GuildOnly(),
		Options:      []*discordgo.ApplicationCommandOption{roleOption("The role of the subscription to unsubscribe from")},
	}

	return []common.Command{
		{Definition: subscriptions, Handle: f.handleSubscriptions},
		{Definition: subscribe, Handle: f.handleSubscribe},
		{Definition: unsubscribe, Handle: f.handleUnsubscribe},
	}
}
