package realestate

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
)

func (f *Feature) handleRealEstate(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	switch inv.Subcommand() {
	case "buy text":
		return f.buy(ctx, inv, models.ChannelKindText)
	case "buy voice":
		return f.buy(ctx, inv, models.ChannelKindVoice)
	case "sell":
		return f.sell(ctx, inv)
	case "check self":
		return f.checkUser(ctx, inv.GuildID, inv.CallerID())
	case "check user":
		target, err := inv.Snowflake("target")
		if err != nil {
			return nil, err
		}
		return f.checkUser(ctx, inv.GuildID, target)
	case "check everyone":
		return f.checkEveryone(ctx, inv.GuildID)
	default:
		return nil, fmt.Errorf("unknown subcommand %q", inv.Subcommand())
	}
}

func (f *Feature) handleCheckRealEstate(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	return f.checkUser(ctx, inv.GuildID, inv.TargetID)
}

func (f *Feature) buy(ctx context.Context, inv *common.Invocation, kind models.ChannelKind) (*common.Response, error) {
	name := inv.String("name")
	if name == "" {
		return nil, service.NewUserError("Channel name cannot be empty.")
	}

	channel, err := f.realEstate.Buy(ctx, inv.GuildID, inv.CallerID(), kind, name)
	if err != nil {
		return nil, err
	}
	return common.Reply(fmt.Sprintf("Bought %s for %s", common.MentionChannel(channel.ChannelID), service.ChannelPrices[kind])), nil
}

func (f *Feature) sell(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	channelID, err := inv.Snowflake("channel")
	if err != nil {
		return nil, err
	}

	// The channel is gone once sold, so name it rather than mention it
	label := common.MentionChannel(channelID)
	if inv.Resolved != nil {
		if ch, ok := inv.Resolved.Channels[common.FormatSnowflake(channelID)]; ok && ch.Name != "" {
			label = fmt.Sprintf("‘%s’", ch.Name)
		}
	}

	refund, err := f.realEstate.Sell(ctx, inv.GuildID, inv.CallerID(), channelID)
	if err != nil {
		return nil, err
	}
	return common.Reply(fmt.Sprintf("Sold %s for %s", label, refund)), nil
}

func holdingLine(channel *models.PurchasedChannel) string {
	return fmt.Sprintf("%s: Purchased %s.", common.MentionChannel(channel.ChannelID), common.FormatDiscordTimestamp(channel.PurchaseTime, "f"))
}

func (f *Feature) checkUser(ctx context.Context, guildID, userID int64) (*common.Response, error) {
	holdings, err := f.realEstate.Holdings(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	lines := []string{common.MentionUser(userID) + ":"}
	for _, channel := range holdings {
		lines = append(lines, holdingLine(channel))
	}
	return common.Private(common.JoinLines(lines)), nil
}

// checkEveryone lists holdings grouped under their owner. Holdings arrive ordered by owner.
func (f *Feature) checkEveryone(ctx context.Context, guildID int64) (*common.Response, error) {
	holdings, err := f.realEstate.AllHoldings(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var lines []string
	var currentOwner int64
	for _, channel := range holdings {
		if channel.OwnerID != currentOwner {
			lines = append(lines, common.MentionUser(channel.OwnerID)+":")
			currentOwner = channel.OwnerID
		}
		lines = append(lines, holdingLine(channel))
	}
	return common.Private(common.JoinLines(lines)), nil
}
