package transfer

import (
	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	ledger service.LedgerService
}

func New(ledger service.LedgerService) *Feature {
	return &Feature{
		ledger: ledger,
	}
}

// Commands returns /pay
func (f *Feature) Commands() []common.Command {
	return []common.Command{{
		Definition: &discordgo.ApplicationCommand{
			Name:         "pay",
			Description:  "Pay someone",
			DMPermission: common.GuildOnly(),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "recipient",
					Description: "The user to pay",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "amount",
					Description: "The amount to pay",
					Required:    true,
				},
			},
		},
		Handle: f.handlePay,
	}}
}
