package subscriptions

import (
	"context"
	"fmt"
	"strings"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
)

func (f *Feature) handleSubscriptions(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	switch inv.Subcommand() {
	case "new":
		return f.create(ctx, inv)
	case "delete":
		return f.delete(ctx, inv)
	case "list":
		return f.list(ctx, inv)
	default:
		return nil, fmt.Errorf("unknown subcommand %q", inv.Subcommand())
	}
}

func (f *Feature) create(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	if err := common.RequireAdmin(ctx, f.settings, inv); err != nil {
		return nil, err
	}

	roleID, err := inv.Snowflake("role")
	if err != nil {
		return nil, err
	}
	raw, err := inv.Number("price_per_week")
	if err != nil {
		return nil, err
	}
	price := models.BobuxFromFloat(raw)

	if err := f.subscriptions.Create(ctx, inv.GuildID, roleID, price); err != nil {
		return nil, err
	}
	return common.Reply(fmt.Sprintf("Created subscription for %s for %s per week", common.MentionRole(roleID), price)), nil
}

func (f *Feature) delete(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	if err := common.RequireAdmin(ctx, f.settings, inv); err != nil {
		return nil, err
	}

	roleID, err := inv.Snowflake("role")
	if err != nil {
		return nil, err
	}
	if err := f.subscriptions.Delete(ctx, inv.GuildID, roleID); err != nil {
		return nil, err
	}
	return common.Reply(fmt.Sprintf("Deleted subscription for role %s.", common.MentionRole(roleID))), nil
}

func (f *Feature) list(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	listings, err := f.subscriptions.List(ctx, inv.GuildID, inv.CallerID())
	if err != nil {
		return nil, err
	}

	lines := []string{"Available subscriptions in this server:"}
	for _, l := range listings {
		line := fmt.Sprintf("%s: %s per week", common.MentionRole(l.RoleID), l.PricePerWeek)
		if l.SubscribedSince != nil {
			line += fmt.Sprintf(" (subscribed since %s)", common.FormatDiscordTimestamp(*l.SubscribedSince, "f"))
		}
		lines = append(lines, line)
	}
	if len(listings) == 0 {
		lines = append(lines, common.NoResults)
	}
	return common.Private(strings.Join(lines, "\n")), nil
}

func (f *Feature) handleSubscribe(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	roleID, err := inv.Snowflake("role")
	if err != nil {
		return nil, err
	}

	subscription, err := f.subscriptions.Subscribe(ctx, inv.GuildID, inv.CallerID(), roleID)
	if err != nil {
		return nil, err
	}
	return common.Private(fmt.Sprintf("Subscribed to %s for %s per week. The first week has been charged.",
		common.MentionRole(roleID), subscription.PricePerWeek)), nil
}

func (f *Feature) handleUnsubscribe(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	roleID, err := inv.Snowflake("role")
	if err != nil {
		return nil, err
	}

	if err := f.subscriptions.Unsubscribe(ctx, inv.GuildID, inv.CallerID(), roleID); err != nil {
		return nil, err
	}
	return common.Private(fmt.Sprintf("Unsubscribed from %s.", common.MentionRole(roleID))), nil
}
