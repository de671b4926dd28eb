package settings

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

var manager = &models.Member{UserID: 201, Permissions: service.PermissionManageGuild}

func configInvocation(member *models.Member, group, action string, values map[string]any) *common.Invocation {
	options := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for name, value := range values {
		options[name] = &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: value}
	}
	return &common.Invocation{
		GuildID: 111,
		Member:  member,
		Command: "config",
		Path:    []string{group, action},
		Options: options,
	}
}

func TestConfigGet(t *testing.T) {
	role := int64(601)
	channel := int64(501)

	tests := []struct {
		group string
		want  string
	}{
		{group: "admin_role", want: "Admin role is currently <@&601>"},
		{group: "memes_channel", want: "Memes channel is currently <#501>"},
		{group: "real_estate_category", want: "Real estate category is currently unset"},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			settings := new(service.MockGuildSettingsService)
			settings.On("GetOrCreateSettings", mock.Anything, int64(111)).
				Return(&models.GuildSettings{GuildID: 111, AdminRoleID: &role, MemesChannelID: &channel}, nil)

			resp, err := New(settings).handleConfig(context.Background(), configInvocation(&models.Member{UserID: 202}, tt.group, "get", nil))

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Content)
			assert.True(t, resp.Ephemeral)
		})
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		group  string
		option string
		method string
		want   string
	}{
		{group: "admin_role", option: "role", method: "UpdateAdminRole", want: "Set admin role to <@&700>"},
		{group: "memes_channel", option: "channel", method: "UpdateMemesChannel", want: "Set memes channel to <#700>"},
		{group: "real_estate_category", option: "category", method: "UpdateRealEstateCategory", want: "Set real estate category to <#700>"},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			settings := new(service.MockGuildSettingsService)
			settings.On(tt.method, mock.Anything, int64(111), mock.MatchedBy(func(id *int64) bool {
				return id != nil && *id == 700
			})).Return(nil)

			resp, err := New(settings).handleConfig(context.Background(), configInvocation(manager, tt.group, "set", map[string]any{tt.option: "700"}))

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Content)
			assert.False(t, resp.Ephemeral)
			settings.AssertExpectations(t)
		})
	}
}

func TestConfigUnset(t *testing.T) {
	settings := new(service.MockGuildSettingsService)
	settings.On("UpdateAdminRole", mock.Anything, int64(111), (*int64)(nil)).Return(nil)

	resp, err := New(settings).handleConfig(context.Background(), configInvocation(manager, "admin_role", "unset", nil))

	require.NoError(t, err)
	assert.Equal(t, "Unset admin role; falling back to Manage Server permissions", resp.Content)
	settings.AssertExpectations(t)
}

func TestConfigSet_RequiresManageServer(t *testing.T) {
	settings := new(service.MockGuildSettingsService)

	_, err := New(settings).handleConfig(context.Background(), configInvocation(&models.Member{UserID: 202}, "memes_channel", "set", map[string]any{"channel": "700"}))

	require.Error(t, err)
	msg, ok := service.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "You are missing Manage Server permission to run this command.", msg)
	settings.AssertNotCalled(t, "UpdateMemesChannel", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfigCommandShape(t *testing.T) {
	commands := New(new(service.MockGuildSettingsService)).Commands()

	require.Len(t, commands, 1)
	groups := commands[0].Definition.Options
	require.Len(t, groups, 3)
	for _, group := range groups {
		assert.Equal(t, discordgo.ApplicationCommandOptionSubCommandGroup, group.Type)
		assert.Len(t, group.Options, 3)
	}
}
