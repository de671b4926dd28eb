package relocate

import (
	"context"
	"net/http"
	"testing"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var moderator = &models.Member{UserID: 201, GuildID: 111, Permissions: PermissionManageMessages}

func relocateInvocation(member *models.Member, values map[string]any) *common.Invocation {
	options := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for name, value := range values {
		options[name] = &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: value}
	}
	return &common.Invocation{
		GuildID:   111,
		ChannelID: 500,
		Member:    member,
		Command:   "relocate",
		Options:   options,
	}
}

type testDeps struct {
	relocate *service.MockRelocateService
	settings *service.MockGuildSettingsService
	messages *service.MockChatPlatform
}

func newTestFeature() (*Feature, testDeps) {
	deps := testDeps{
		relocate: new(service.MockRelocateService),
		settings: new(service.MockGuildSettingsService),
		messages: new(service.MockChatPlatform),
	}
	return New(deps.relocate, deps.settings, deps.messages), deps
}

func TestRelocate(t *testing.T) {
	f, deps := newTestFeature()
	msg := &models.Message{ID: 900, ChannelID: 500, GuildID: 111, AuthorID: 202, Content: "💬 hello"}
	deps.messages.On("FetchMessage", mock.Anything, int64(500), int64(900)).Return(msg, nil)
	deps.relocate.On("Relocate", mock.Anything, msg, int64(501), true).Return(nil)

	resp, err := f.handleRelocate(context.Background(), relocateInvocation(moderator, map[string]any{
		"message_id":            " 900 ",
		"destination":           "501",
		"remove_speech_bubbles": true,
	}))

	require.NoError(t, err)
	assert.Equal(t, "Relocated message to <#501>", resp.Content)
	assert.True(t, resp.Ephemeral)
	deps.relocate.AssertExpectations(t)
}

func TestRelocate_DefaultsKeepSpeechBubbles(t *testing.T) {
	f, deps := newTestFeature()
	msg := &models.Message{ID: 900, ChannelID: 500, GuildID: 111, AuthorID: 202}
	deps.messages.On("FetchMessage", mock.Anything, int64(500), int64(900)).Return(msg, nil)
	deps.relocate.On("Relocate", mock.Anything, msg, int64(501), false).Return(nil)

	_, err := f.handleRelocate(context.Background(), relocateInvocation(moderator, map[string]any{
		"message_id":  "900",
		"destination": "501",
	}))

	require.NoError(t, err)
	deps.relocate.AssertExpectations(t)
}

func TestRelocate_RequiresManageMessages(t *testing.T) {
	f, deps := newTestFeature()

	_, err := f.handleRelocate(context.Background(), relocateInvocation(&models.Member{UserID: 202}, map[string]any{
		"message_id":  "900",
		"destination": "501",
	}))

	require.Error(t, err)
	msg, _ := service.UserMessage(err)
	assert.Equal(t, "You are missing Manage Messages permission to run this command.", msg)
	deps.messages.AssertNotCalled(t, "FetchMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelocate_InvalidMessageID(t *testing.T) {
	f, _ := newTestFeature()

	_, err := f.handleRelocate(context.Background(), relocateInvocation(moderator, map[string]any{
		"message_id":  "abc",
		"destination": "501",
	}))

	require.Error(t, err)
	msg, _ := service.UserMessage(err)
	assert.Equal(t, "Input a valid integer.", msg)
}

func TestRelocate_UnknownMessage(t *testing.T) {
	f, deps := newTestFeature()
	deps.messages.On("FetchMessage", mock.Anything, int64(500), int64(900)).Return(nil, &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage},
	})

	_, err := f.handleRelocate(context.Background(), relocateInvocation(moderator, map[string]any{
		"message_id":  "900",
		"destination": "501",
	}))

	require.Error(t, err)
	msg, ok := service.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Message 900 was not found in this channel.", msg)
}

func TestSendToMemes(t *testing.T) {
	f, deps := newTestFeature()
	memes := int64(501)
	deps.settings.On("GetOrCreateSettings", mock.Anything, int64(111)).
		Return(&models.GuildSettings{GuildID: 111, MemesChannelID: &memes}, nil)
	deps.relocate.On("Relocate", mock.Anything, mock.MatchedBy(func(msg *models.Message) bool {
		return msg.ID == 900 && msg.AuthorID == 202 && msg.GuildID == 111
	}), int64(501), true).Return(nil)

	inv := relocateInvocation(moderator, nil)
	inv.TargetID = 900
	inv.Resolved = &discordgo.ApplicationCommandInteractionDataResolved{
		Messages: map[string]*discordgo.Message{
			"900": {ID: "900", ChannelID: "500", Author: &discordgo.User{ID: "202"}, Content: "meme"},
		},
	}
	resp, err := f.handleSendToMemes(context.Background(), inv)

	require.NoError(t, err)
	assert.Equal(t, "Relocated message to <#501>", resp.Content)
	deps.relocate.AssertExpectations(t)
}

func TestSendToMemes_NoMemesChannel(t *testing.T) {
	f, deps := newTestFeature()
	deps.settings.On("GetOrCreateSettings", mock.Anything, int64(111)).Return(&models.GuildSettings{GuildID: 111}, nil)

	_, err := f.handleSendToMemes(context.Background(), relocateInvocation(moderator, nil))

	require.Error(t, err)
	msg, _ := service.UserMessage(err)
	assert.Equal(t, "No memes channel is configured on this server.", msg)
}

func TestCommandsAreDeferred(t *testing.T) {
	f, _ := newTestFeature()

	for _, cmd := range f.Commands() {
		assert.True(t, cmd.Deferred, cmd.Name())
	}
}
