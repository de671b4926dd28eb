package service

import (
	"context"

	"github.com/arm32x/bobux-economy/models"

	"github.com/stretchr/testify/mock"
)

// MockChatPlatform is a mock implementation of ChatPlatform
type MockChatPlatform struct {
	mock.Mock
	BotID int64
}

func (m *MockChatPlatform) BotUserID() int64 { return m.BotID }

func (m *MockChatPlatform) FetchMessage(ctx context.Context, channelID, messageID int64) (*models.Message, error) {
	args := m.Called(ctx, channelID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockChatPlatform) MessagesAfter(ctx context.Context, channelID, afterID int64, limit int) ([]*models.Message, error) {
	args := m.Called(ctx, channelID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockChatPlatform) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

func (m *MockChatPlatform) RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, userID int64) error {
	args := m.Called(ctx, channelID, messageID, emoji, userID)
	return args.Error(0)
}

func (m *MockChatPlatform) ReactionUsers(ctx context.Context, channelID, messageID int64, emoji string) ([]int64, error) {
	args := m.Called(ctx, channelID, messageID, emoji)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockMemberResolver is a mock implementation of MemberResolver
type MockMemberResolver struct {
	mock.Mock
}

func (m *MockMemberResolver) ResolveMember(ctx context.Context, guildID, userID int64) (*models.Member, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

// MockRoleManager is a mock implementation of RoleManager
type MockRoleManager struct {
	mock.Mock
}

func (m *MockRoleManager) GrantRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockRoleManager) RevokeRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

// MockChannelManager is a mock implementation of ChannelManager
type MockChannelManager struct {
	mock.Mock
}

func (m *MockChannelManager) CreateOwnedChannel(ctx context.Context, guildID, categoryID, ownerID int64, name string, kind models.ChannelKind) (int64, error) {
	args := m.Called(ctx, guildID, categoryID, ownerID, name, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChannelManager) DeleteChannel(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

// MockMessageRelocator is a mock implementation of MessageRelocator
type MockMessageRelocator struct {
	mock.Mock
}

func (m *MockMessageRelocator) CreateWebhook(ctx context.Context, channelID int64, name string) (*Webhook, error) {
	args := m.Called(ctx, channelID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Webhook), args.Error(1)
}

func (m *MockMessageRelocator) ExecuteWebhook(ctx context.Context, webhook *Webhook, repost *Repost) error {
	args := m.Called(ctx, webhook, repost)
	return args.Error(0)
}

func (m *MockMessageRelocator) DeleteWebhook(ctx context.Context, webhookID int64) error {
	args := m.Called(ctx, webhookID)
	return args.Error(0)
}

func (m *MockMessageRelocator) DeleteMessage(ctx context.Context, channelID, messageID int64) error {
	args := m.Called(ctx, channelID, messageID)
	return args.Error(0)
}
