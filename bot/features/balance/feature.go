package balance

import (
	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	ledger   service.LedgerService
	settings service.GuildSettingsService
}

func New(ledger service.LedgerService, settings service.GuildSettingsService) *Feature {
	return &Feature{
		ledger:   ledger,
		settings: settings,
	}
}

func targetOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "target",
		Description: description,
		Required:    true,
	}
}

func amountOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionNumber,
		Name:        "amount",
		Description: description,
		Required:    true,
	}
}

// Commands returns /bal and the "Check Balance" user command
func (f *Feature) Commands() []common.Command {
	bal := &discordgo.ApplicationCommand{
		Name:         "bal",
		Description:  "Manage account balances",
		DMPermission: common.GuildOnly(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "check",
				Description: "Check the balance of yourself or someone else",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "self",
						Description: "Check your balance in this server",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "user",
						Description: "Check someone's balance in this server",
						Options:     []*discordgo.ApplicationCommandOption{targetOption("The user to check the balance of")},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "everyone",
						Description: "Check the balance of everyone in this server",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Set someone's balance",
				Options: []*discordgo.ApplicationCommandOption{
					targetOption("The user whose balance to set"),
					amountOption("The new balance"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Add bobux to someone's balance",
				Options: []*discordgo.ApplicationCommandOption{
					targetOption("The user to give bobux to"),
					amountOption("The amount to add"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sub",
				Description: "Remove bobux from someone's balance",
				Options: []*discordgo.ApplicationCommandOption{
					targetOption("The user to take bobux from"),
					amountOption("The amount to remove"),
				},
			},
		},
	}

	checkBalance := &discordgo.ApplicationCommand{
		Name:         "Check Balance",
		Type:         discordgo.UserApplicationCommand,
		DMPermission: common.GuildOnly(),
	}

	return []common.Command{
		{Definition: bal, Handle: f.handleBal},
		{Definition: checkBalance, Handle: f.handleCheckBalance},
	}
}
