package realestate

import (
	"context"
	"testing"
	"time"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var purchased = time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

func realEstateInvocation(path []string, values map[string]any) *common.Invocation {
	options := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for name, value := range values {
		options[name] = &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: value}
	}
	return &common.Invocation{
		GuildID: 111,
		Member:  &models.Member{UserID: 201, GuildID: 111},
		Command: "real_estate",
		Path:    path,
		Options: options,
	}
}

func TestBuy(t *testing.T) {
	tests := []struct {
		kind models.ChannelKind
		want string
	}{
		{kind: models.ChannelKindText, want: "Bought <#801> for 150 bobux"},
		{kind: models.ChannelKindVoice, want: "Bought <#801> for 100 bobux"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			realEstate := new(service.MockRealEstateService)
			realEstate.On("Buy", mock.Anything, int64(111), int64(201), tt.kind, "my-channel").
				Return(&models.PurchasedChannel{ChannelID: 801, OwnerID: 201, GuildID: 111, Kind: tt.kind}, nil)

			resp, err := New(realEstate).handleRealEstate(context.Background(),
				realEstateInvocation([]string{"buy", string(tt.kind)}, map[string]any{"name": "my-channel"}))

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Content)
			assert.False(t, resp.Ephemeral)
		})
	}
}

func TestBuy_NotConfigured(t *testing.T) {
	realEstate := new(service.MockRealEstateService)
	realEstate.On("Buy", mock.Anything, int64(111), int64(201), models.ChannelKindText, "shop").
		Return(nil, service.NewNotConfiguredError("Real estate is not enabled on this server."))

	_, err := New(realEstate).handleRealEstate(context.Background(),
		realEstateInvocation([]string{"buy", "text"}, map[string]any{"name": "shop"}))

	require.Error(t, err)
	msg, ok := service.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Real estate is not enabled on this server.", msg)
}

func TestSell_UsesResolvedName(t *testing.T) {
	realEstate := new(service.MockRealEstateService)
	realEstate.On("Sell", mock.Anything, int64(111), int64(201), int64(801)).Return(models.NewBobux(75, false), nil)

	inv := realEstateInvocation([]string{"sell"}, map[string]any{"channel": "801"})
	inv.Resolved = &discordgo.ApplicationCommandInteractionDataResolved{
		Channels: map[string]*discordgo.Channel{"801": {ID: "801", Name: "my-channel"}},
	}
	resp, err := New(realEstate).handleRealEstate(context.Background(), inv)

	require.NoError(t, err)
	assert.Equal(t, "Sold ‘my-channel’ for 75 bobux", resp.Content)
}

func TestSell_FallsBackToMention(t *testing.T) {
	realEstate := new(service.MockRealEstateService)
	realEstate.On("Sell", mock.Anything, int64(111), int64(201), int64(801)).Return(models.NewBobux(50, false), nil)

	resp, err := New(realEstate).handleRealEstate(context.Background(),
		realEstateInvocation([]string{"sell"}, map[string]any{"channel": "801"}))

	require.NoError(t, err)
	assert.Equal(t, "Sold <#801> for 50 bobux", resp.Content)
}

func TestCheckSelf(t *testing.T) {
	realEstate := new(service.MockRealEstateService)
	realEstate.On("Holdings", mock.Anything, int64(111), int64(201)).Return([]*models.PurchasedChannel{
		{ChannelID: 801, OwnerID: 201, GuildID: 111, PurchaseTime: purchased},
	}, nil)

	resp, err := New(realEstate).handleRealEstate(context.Background(), realEstateInvocation([]string{"check", "self"}, nil))

	require.NoError(t, err)
	assert.Equal(t, "<@201>:\n<#801>: Purchased <t:1715169600:f>.", resp.Content)
	assert.True(t, resp.Ephemeral)
}

func TestCheckEveryone_GroupsByOwner(t *testing.T) {
	realEstate := new(service.MockRealEstateService)
	realEstate.On("AllHoldings", mock.Anything, int64(111)).Return([]*models.PurchasedChannel{
		{ChannelID: 801, OwnerID: 201, PurchaseTime: purchased},
		{ChannelID: 802, OwnerID: 201, PurchaseTime: purchased},
		{ChannelID: 803, OwnerID: 202, PurchaseTime: purchased},
	}, nil)

	resp, err := New(realEstate).handleRealEstate(context.Background(), realEstateInvocation([]string{"check", "everyone"}, nil))

	require.NoError(t, err)
	assert.Equal(t, "<@201>:\n"+
		"<#801>: Purchased <t:1715169600:f>.\n"+
		"<#802>: Purchased <t:1715169600:f>.\n"+
		"<@202>:\n"+
		"<#803>: Purchased <t:1715169600:f>.", resp.Content)
}

func TestCheckEveryone_Empty(t *testing.T) {
	realEstate := new(service.MockRealEstateService)
	realEstate.On("AllHoldings", mock.Anything, int64(111)).Return([]*models.PurchasedChannel{}, nil)

	resp, err := New(realEstate).handleRealEstate(context.Background(), realEstateInvocation([]string{"check", "everyone"}, nil))

	require.NoError(t, err)
	assert.Equal(t, common.NoResults, resp.Content)
}

func TestCheckRealEstateUserCommand(t *testing.T) {
	realEstate := new(service.MockRealEstateService)
	realEstate.On("Holdings", mock.Anything, int64(111), int64(203)).Return([]*models.PurchasedChannel{}, nil)

	inv := realEstateInvocation(nil, nil)
	inv.TargetID = 203
	resp, err := New(realEstate).handleCheckRealEstate(context.Background(), inv)

	require.NoError(t, err)
	assert.Equal(t, "<@203>:", resp.Content)
}
