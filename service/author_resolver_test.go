package service

import (
	"context"
	"errors"
	"testing"

	"github.com/arm32x/bobux-economy/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testWebhookID   int64 = 700
	testWebhookUser int64 = 701
)

func webhookMessage() *models.Message {
	return &models.Message{
		ID:        testMessage,
		ChannelID: testChannel,
		GuildID:   testGuildID,
		AuthorID:  testWebhookUser,
		WebhookID: testWebhookID,
		Content:   "relocated meme",
	}
}

func TestAuthorResolver_PrefersDeliveredMember(t *testing.T) {
	members := new(MockMemberResolver)
	resolver := NewAuthorResolver(members, new(MockWebhookRepository))

	author, err := resolver.ResolveOriginalAuthor(context.Background(), posterMessage())

	require.NoError(t, err)
	assert.Equal(t, testPoster, author.UserID)
	members.AssertNotCalled(t, "ResolveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthorResolver_ResolvesAuthorMember(t *testing.T) {
	members := new(MockMemberResolver)
	resolver := NewAuthorResolver(members, new(MockWebhookRepository))
	msg := posterMessage()
	msg.AuthorMember = nil

	members.On("ResolveMember", mock.Anything, testGuildID, testPoster).
		Return(&models.Member{UserID: testPoster, GuildID: testGuildID}, nil)

	author, err := resolver.ResolveOriginalAuthor(context.Background(), msg)

	require.NoError(t, err)
	require.NotNil(t, author)
	assert.Equal(t, testPoster, author.UserID)
	members.AssertExpectations(t)
}

func TestAuthorResolver_FollowsWebhookPuppet(t *testing.T) {
	store := newFakeStore()
	store.state.webhooks[testWebhookID] = testPoster
	members := new(MockMemberResolver)
	resolver := NewAuthorResolver(members, fakeWebhookRepo{store})

	members.On("ResolveMember", mock.Anything, testGuildID, testWebhookUser).Return(nil, nil)
	members.On("ResolveMember", mock.Anything, testGuildID, testPoster).
		Return(&models.Member{UserID: testPoster, GuildID: testGuildID}, nil)

	author, err := resolver.ResolveOriginalAuthor(context.Background(), webhookMessage())

	require.NoError(t, err)
	require.NotNil(t, author)
	assert.Equal(t, testPoster, author.UserID)
	members.AssertExpectations(t)
}

func TestAuthorResolver_UnknownWebhook(t *testing.T) {
	store := newFakeStore()
	members := new(MockMemberResolver)
	resolver := NewAuthorResolver(members, fakeWebhookRepo{store})

	members.On("ResolveMember", mock.Anything, testGuildID, testWebhookUser).Return(nil, nil)

	author, err := resolver.ResolveOriginalAuthor(context.Background(), webhookMessage())

	require.NoError(t, err)
	assert.Nil(t, author)
}

func TestAuthorResolver_PuppetLeftGuild(t *testing.T) {
	store := newFakeStore()
	store.state.webhooks[testWebhookID] = testPoster
	members := new(MockMemberResolver)
	resolver := NewAuthorResolver(members, fakeWebhookRepo{store})

	members.On("ResolveMember", mock.Anything, testGuildID, mock.Anything).Return(nil, nil)

	author, err := resolver.ResolveOriginalAuthor(context.Background(), webhookMessage())

	require.NoError(t, err)
	assert.Nil(t, author)
	members.AssertNumberOfCalls(t, "ResolveMember", 2)
}

func TestAuthorResolver_PlainUserWithoutWebhook(t *testing.T) {
	members := new(MockMemberResolver)
	webhooks := new(MockWebhookRepository)
	resolver := NewAuthorResolver(members, webhooks)
	msg := posterMessage()
	msg.AuthorMember = nil

	members.On("ResolveMember", mock.Anything, testGuildID, testPoster).Return(nil, nil)

	author, err := resolver.ResolveOriginalAuthor(context.Background(), msg)

	require.NoError(t, err)
	assert.Nil(t, author)
	webhooks.AssertNotCalled(t, "GetMemberID", mock.Anything, mock.Anything)
}

func TestAuthorResolver_PropagatesLookupErrors(t *testing.T) {
	members := new(MockMemberResolver)
	webhooks := new(MockWebhookRepository)
	resolver := NewAuthorResolver(members, webhooks)

	members.On("ResolveMember", mock.Anything, testGuildID, testWebhookUser).Return(nil, nil)
	webhooks.On("GetMemberID", mock.Anything, testWebhookID).Return(nil, errors.New("connection refused"))

	_, err := resolver.ResolveOriginalAuthor(context.Background(), webhookMessage())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
