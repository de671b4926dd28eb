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

type syncFixture struct {
	store    *fakeStore
	platform *MockChatPlatform
	gate     *SyncGate
	service  SyncService
}

func newSyncFixture(fullRescan bool) *syncFixture {
	store := newFakeStore()
	platform := &MockChatPlatform{BotID: testBotID}
	gate := NewSyncGate()
	authors := NewAuthorResolver(new(MockMemberResolver), fakeWebhookRepo{store})

	return &syncFixture{
		store:    store,
		platform: platform,
		gate:     gate,
		service:  NewSyncService(store, store, platform, authors, testEmoji, gate, fullRescan),
	}
}

func (f *syncFixture) expectMarkers() {
	f.platform.On("AddReaction", mock.Anything, testChannel, mock.Anything, mock.Anything).Return(nil)
}

func (f *syncFixture) liveReactions(messageID int64, emoji string, users ...int64) {
	if users == nil {
		users = []int64{}
	}
	f.platform.On("ReactionUsers", mock.Anything, testChannel, messageID, emoji).Return(users, nil)
}

func messageWithID(id int64) *models.Message {
	msg := posterMessage()
	msg.ID = id
	return msg
}

func TestSyncMessage_UnchangedVoteIsNotPaidTwice(t *testing.T) {
	f := newSyncFixture(false)
	f.store.putVote(testGuildID, testChannel, testMessage, testVoter, models.VoteUpvote)
	f.store.setBalance(testPoster, testGuildID, bx(5, false))
	f.store.setBalance(testVoter, testGuildID, bx(2, true))

	f.expectMarkers()
	f.liveReactions(testMessage, upvoteMark, testBotID, testVoter)
	f.liveReactions(testMessage, downvoteMark, testBotID)

	require.NoError(t, f.service.SyncMessage(context.Background(), posterMessage()))

	assert.Equal(t, models.VoteUpvote, f.store.vote(testMessage, testVoter))
	assert.Equal(t, bx(5, false), f.store.balance(testPoster, testGuildID))
	assert.Equal(t, bx(2, true), f.store.balance(testVoter, testGuildID))
	assert.Empty(t, f.store.state.history)
}

func TestSyncMessage_MissedVoteIsPaid(t *testing.T) {
	f := newSyncFixture(false)
	f.expectMarkers()
	f.liveReactions(testMessage, upvoteMark, testBotID, testVoter)
	f.liveReactions(testMessage, downvoteMark, testBotID)

	require.NoError(t, f.service.SyncMessage(context.Background(), posterMessage()))

	assert.Equal(t, models.VoteUpvote, f.store.vote(testMessage, testVoter))
	assert.Equal(t, 5.0, f.store.balance(testPoster, testGuildID).Float64())
	assert.Equal(t, 2.5, f.store.balance(testVoter, testGuildID).Float64())
}

func TestSyncMessage_SwitchedVoteIsPaidDifference(t *testing.T) {
	f := newSyncFixture(false)
	f.store.putVote(testGuildID, testChannel, testMessage, testVoter, models.VoteUpvote)
	f.store.setBalance(testPoster, testGuildID, bx(5, false))
	f.store.setBalance(testVoter, testGuildID, bx(2, true))

	f.expectMarkers()
	f.liveReactions(testMessage, upvoteMark, testBotID)
	f.liveReactions(testMessage, downvoteMark, testBotID, testVoter)

	require.NoError(t, f.service.SyncMessage(context.Background(), posterMessage()))

	assert.Equal(t, models.VoteDownvote, f.store.vote(testMessage, testVoter))
	assert.Equal(t, -5.0, f.store.balance(testPoster, testGuildID).Float64())
	assert.Equal(t, 7.5, f.store.balance(testVoter, testGuildID).Float64())
}

func TestSyncMessage_VanishedVoteIsReversed(t *testing.T) {
	f := newSyncFixture(false)
	f.store.putVote(testGuildID, testChannel, testMessage, testVoter, models.VoteUpvote)
	f.store.setBalance(testPoster, testGuildID, bx(5, false))
	f.store.setBalance(testVoter, testGuildID, bx(2, true))

	f.expectMarkers()
	f.liveReactions(testMessage, upvoteMark, testBotID)
	f.liveReactions(testMessage, downvoteMark, testBotID)

	require.NoError(t, f.service.SyncMessage(context.Background(), posterMessage()))

	assert.Equal(t, models.VoteNone, f.store.vote(testMessage, testVoter))
	assert.True(t, f.store.balance(testPoster, testGuildID).IsZero())
	assert.True(t, f.store.balance(testVoter, testGuildID).IsZero())
}

func TestSyncMessage_UnaffordableReversalKeepsVote(t *testing.T) {
	f := newSyncFixture(false)
	f.store.putVote(testGuildID, testChannel, testMessage, testVoter, models.VoteUpvote)
	f.store.setBalance(testPoster, testGuildID, bx(5, false))

	f.expectMarkers()
	f.liveReactions(testMessage, upvoteMark, testBotID)
	f.liveReactions(testMessage, downvoteMark, testBotID)

	require.NoError(t, f.service.SyncMessage(context.Background(), posterMessage()))

	assert.Equal(t, models.VoteUpvote, f.store.vote(testMessage, testVoter))
	assert.Equal(t, bx(5, false), f.store.balance(testPoster, testGuildID))
	assert.True(t, f.store.balance(testVoter, testGuildID).IsZero())
}

func TestSyncMessage_PosterReactionIsIgnored(t *testing.T) {
	f := newSyncFixture(false)
	f.expectMarkers()
	f.liveReactions(testMessage, upvoteMark, testBotID, testPoster)
	f.liveReactions(testMessage, downvoteMark, testBotID)

	require.NoError(t, f.service.SyncMessage(context.Background(), posterMessage()))

	assert.Empty(t, f.store.state.votes)
	assert.Empty(t, f.store.state.balances)
}

func TestSyncMessage_UnknownPosterSyncsWithoutRewards(t *testing.T) {
	store := newFakeStore()
	platform := &MockChatPlatform{BotID: testBotID}
	members := new(MockMemberResolver)
	svc := NewSyncService(store, store, platform, NewAuthorResolver(members, fakeWebhookRepo{store}),
		testEmoji, NewSyncGate(), false)

	msg := posterMessage()
	msg.AuthorMember = nil
	members.On("ResolveMember", mock.Anything, testGuildID, testPoster).Return(nil, nil)
	platform.On("AddReaction", mock.Anything, testChannel, testMessage, mock.Anything).Return(nil)
	platform.On("ReactionUsers", mock.Anything, testChannel, testMessage, upvoteMark).Return([]int64{testVoter}, nil)
	platform.On("ReactionUsers", mock.Anything, testChannel, testMessage, downvoteMark).Return([]int64{}, nil)

	require.NoError(t, svc.SyncMessage(context.Background(), msg))

	assert.Equal(t, models.VoteUpvote, store.vote(testMessage, testVoter))
	assert.Empty(t, store.state.balances)
}

func TestSyncVotes_PagesThroughHistory(t *testing.T) {
	f := newSyncFixture(false)
	f.store.putSettings(models.GuildSettings{
		GuildID:            testGuildID,
		MemesChannelID:     int64Ptr(testChannel),
		LastMemesMessageID: int64Ptr(10),
	})

	first := make([]*models.Message, 0, SyncPageSize)
	for id := int64(11); id < 11+SyncPageSize; id++ {
		msg := messageWithID(id)
		if id != 50 {
			msg.AuthorID = testBotID
			msg.AuthorMember = nil
		}
		first = append(first, msg)
	}
	lastOfFirst := int64(10 + SyncPageSize)
	second := []*models.Message{messageWithID(lastOfFirst + 1)}

	f.platform.On("MessagesAfter", mock.Anything, testChannel, int64(10), SyncPageSize).Return(first, nil).Once()
	f.platform.On("MessagesAfter", mock.Anything, testChannel, lastOfFirst, SyncPageSize).Return(second, nil).Once()
	f.expectMarkers()
	f.liveReactions(50, upvoteMark, testBotID, testVoter)
	f.liveReactions(50, downvoteMark, testBotID)
	f.liveReactions(lastOfFirst+1, upvoteMark, testBotID)
	f.liveReactions(lastOfFirst+1, downvoteMark, testBotID, testVoter)

	require.NoError(t, f.service.SyncVotes(context.Background()))

	assert.Equal(t, models.VoteUpvote, f.store.vote(50, testVoter))
	assert.Equal(t, models.VoteDownvote, f.store.vote(lastOfFirst+1, testVoter))
	assert.True(t, f.store.balance(testPoster, testGuildID).IsZero())
	assert.Equal(t, 5.0, f.store.balance(testVoter, testGuildID).Float64())

	last := f.store.state.settings[testGuildID].LastMemesMessageID
	require.NotNil(t, last)
	assert.Equal(t, lastOfFirst+1, *last)
	assert.NoError(t, f.gate.Wait(context.Background()))
	f.platform.AssertExpectations(t)
}

func TestSyncVotes_FailedMessageDoesNotAbortPass(t *testing.T) {
	f := newSyncFixture(false)
	f.store.putSettings(models.GuildSettings{
		GuildID:            testGuildID,
		MemesChannelID:     int64Ptr(testChannel),
		LastMemesMessageID: int64Ptr(10),
	})

	page := []*models.Message{messageWithID(11), messageWithID(12)}
	f.platform.On("MessagesAfter", mock.Anything, testChannel, int64(10), SyncPageSize).Return(page, nil)
	f.platform.On("AddReaction", mock.Anything, testChannel, int64(11), mock.Anything).Return(errors.New("unknown message"))
	f.expectMarkers()
	f.liveReactions(12, upvoteMark, testVoter)
	f.liveReactions(12, downvoteMark)

	require.NoError(t, f.service.SyncVotes(context.Background()))

	assert.Equal(t, models.VoteUpvote, f.store.vote(12, testVoter))
	assert.Equal(t, int64(12), *f.store.state.settings[testGuildID].LastMemesMessageID)
}

func TestSyncVotes_HistoryErrorStillReleasesGate(t *testing.T) {
	f := newSyncFixture(false)
	f.store.putSettings(models.GuildSettings{
		GuildID:            testGuildID,
		MemesChannelID:     int64Ptr(testChannel),
		LastMemesMessageID: int64Ptr(10),
	})
	f.platform.On("MessagesAfter", mock.Anything, testChannel, int64(10), SyncPageSize).Return(nil, errors.New("missing access"))

	require.NoError(t, f.service.SyncVotes(context.Background()))

	assert.NoError(t, f.gate.Wait(context.Background()))
	assert.Equal(t, int64(10), *f.store.state.settings[testGuildID].LastMemesMessageID)
}

func TestSyncVotes_FullRescanRevisitsVotedMessages(t *testing.T) {
	f := newSyncFixture(true)
	f.store.putSettings(models.GuildSettings{
		GuildID:            testGuildID,
		MemesChannelID:     int64Ptr(testChannel),
		LastMemesMessageID: int64Ptr(testMessage),
	})
	f.store.putVote(testGuildID, testChannel, testMessage, testVoter, models.VoteUpvote)
	f.store.setBalance(testPoster, testGuildID, bx(5, false))
	f.store.setBalance(testVoter, testGuildID, bx(2, true))

	f.platform.On("FetchMessage", mock.Anything, testChannel, testMessage).Return(posterMessage(), nil)
	f.platform.On("MessagesAfter", mock.Anything, testChannel, testMessage, SyncPageSize).Return([]*models.Message{}, nil)
	f.expectMarkers()
	f.liveReactions(testMessage, upvoteMark, testBotID)
	f.liveReactions(testMessage, downvoteMark, testBotID)

	require.NoError(t, f.service.SyncVotes(context.Background()))

	assert.Equal(t, models.VoteNone, f.store.vote(testMessage, testVoter))
	assert.True(t, f.store.balance(testPoster, testGuildID).IsZero())
	assert.True(t, f.store.balance(testVoter, testGuildID).IsZero())
}
