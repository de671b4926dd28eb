package transfer

import (
	"context"
	"strings"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
)

func (f *Feature) handlePay(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	recipient, err := inv.Snowflake("recipient")
	if err != nil {
		return nil, err
	}
	raw, err := inv.Number("amount")
	if err != nil {
		return nil, err
	}

	if err := f.ledger.Pay(ctx, inv.GuildID, inv.CallerID(), recipient, models.BobuxFromFloat(raw)); err != nil {
		return nil, err
	}

	// Show both balances after the payment
	lines := make([]string, 0, 2)
	for _, id := range []int64{inv.CallerID(), recipient} {
		balance, err := f.ledger.GetBalance(ctx, models.NewAccount(id, inv.GuildID))
		if err != nil {
			return nil, err
		}
		lines = append(lines, common.FormatBalanceLine(id, balance))
	}
	return common.Reply(strings.Join(lines, "\n")), nil
}
