package balance

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
)

func (f *Feature) handleBal(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	switch inv.Subcommand() {
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
	case "set", "add", "sub":
		return f.adjust(ctx, inv)
	default:
		return nil, fmt.Errorf("unknown subcommand %q", inv.Subcommand())
	}
}

func (f *Feature) handleCheckBalance(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	return f.checkUser(ctx, inv.GuildID, inv.TargetID)
}

func (f *Feature) checkUser(ctx context.Context, guildID, userID int64) (*common.Response, error) {
	balance, err := f.ledger.GetBalance(ctx, models.NewAccount(userID, guildID))
	if err != nil {
		return nil, err
	}
	return common.Private(common.FormatBalanceLine(userID, balance)), nil
}

func (f *Feature) checkEveryone(ctx context.Context, guildID int64) (*common.Response, error) {
	balances, err := f.ledger.Leaderboard(ctx, guildID, 0)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(balances))
	for _, b := range balances {
		lines = append(lines, common.FormatBalanceLine(b.UserID, b.Balance))
	}
	return common.Private(common.JoinLines(lines)), nil
}

// adjust handles the admin-only set, add and sub subcommands
func (f *Feature) adjust(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	if err := common.RequireAdmin(ctx, f.settings, inv); err != nil {
		return nil, err
	}

	target, err := inv.Snowflake("target")
	if err != nil {
		return nil, err
	}
	raw, err := inv.Number("amount")
	if err != nil {
		return nil, err
	}
	amount := models.BobuxFromFloat(raw)
	account := models.NewAccount(target, inv.GuildID)

	switch inv.Subcommand() {
	case "set":
		err = f.ledger.SetBalance(ctx, account, amount)
	case "add":
		err = f.ledger.AddBalance(ctx, account, amount)
	case "sub":
		err = f.ledger.SubtractBalance(ctx, account, amount)
	}
	if err != nil {
		return nil, err
	}

	balance, err := f.ledger.GetBalance(ctx, account)
	if err != nil {
		return nil, err
	}
	return common.Reply(common.FormatBalanceLine(target, balance)), nil
}
