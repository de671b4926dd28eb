package transfer

import (
	"context"
	"testing"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func payInvocation(recipient string, amount float64) *common.Invocation {
	return &common.Invocation{
		GuildID: 111,
		Member:  &models.Member{UserID: 201, GuildID: 111},
		Command: "pay",
		Options: map[string]*discordgo.ApplicationCommandInteractionDataOption{
			"recipient": {Name: "recipient", Value: recipient},
			"amount":    {Name: "amount", Value: amount},
		},
	}
}

func TestPay(t *testing.T) {
	ledger := new(service.MockLedgerService)
	ledger.On("Pay", mock.Anything, int64(111), int64(201), int64(202), models.NewBobux(2, true)).Return(nil)
	ledger.On("GetBalance", mock.Anything, models.NewAccount(201, 111)).Return(models.NewBobux(7, false), nil)
	ledger.On("GetBalance", mock.Anything, models.NewAccount(202, 111)).Return(models.NewBobux(2, true), nil)

	resp, err := New(ledger).handlePay(context.Background(), payInvocation("202", 2.5))

	require.NoError(t, err)
	assert.Equal(t, "<@201>: 7 bobux\n<@202>: 2 bobux and some spare change", resp.Content)
	assert.False(t, resp.Ephemeral)
	ledger.AssertExpectations(t)
}

func TestPay_InsufficientFunds(t *testing.T) {
	ledger := new(service.MockLedgerService)
	ledger.On("Pay", mock.Anything, int64(111), int64(201), int64(202), models.NewBobux(50, false)).
		Return(&service.InsufficientFundsError{})

	_, err := New(ledger).handlePay(context.Background(), payInvocation("202", 50))

	require.Error(t, err)
	_, ok := service.UserMessage(err)
	assert.True(t, ok)
	ledger.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything)
}

func TestPay_InvalidRecipient(t *testing.T) {
	ledger := new(service.MockLedgerService)

	_, err := New(ledger).handlePay(context.Background(), payInvocation("not-a-user", 1))

	assert.Error(t, err)
	ledger.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
