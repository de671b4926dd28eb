package service

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/models"
	log "github.com/sirupsen/logrus"
)

// VoteEmoji maps reaction markers to vote directions
type VoteEmoji struct {
	Upvote   string
	Downvote string
}

// VoteFor returns the direction of a marker, or VoteNone for any other emoji
func (e VoteEmoji) VoteFor(emoji string) models.Vote {
	switch emoji {
	case e.Upvote:
		return models.VoteUpvote
	case e.Downvote:
		return models.VoteDownvote
	default:
		return models.VoteNone
	}
}

// EmojiFor returns the marker of a direction
func (e VoteEmoji) EmojiFor(vote models.Vote) string {
	switch vote {
	case models.VoteUpvote:
		return e.Upvote
	case models.VoteDownvote:
		return e.Downvote
	default:
		return ""
	}
}

// Markers returns both markers in the order they are added to a message
func (e VoteEmoji) Markers() []models.Vote {
	return []models.Vote{models.VoteUpvote, models.VoteDownvote}
}

type votingService struct {
	uowFactory UnitOfWorkFactory
	settings   GuildSettingsService
	platform   ChatPlatform
	authors    *AuthorResolver
	tracker    *ReactionRemovalTracker
	emoji      VoteEmoji
	gate       *SyncGate
}

// NewVotingService creates the live vote handlers. Reaction handlers block until gate is
// released by the first reconciliation pass.
func NewVotingService(
	uowFactory UnitOfWorkFactory,
	settings GuildSettingsService,
	platform ChatPlatform,
	authors *AuthorResolver,
	tracker *ReactionRemovalTracker,
	emoji VoteEmoji,
	gate *SyncGate,
) VotingService {
	return &votingService{
		uowFactory: uowFactory,
		settings:   settings,
		platform:   platform,
		authors:    authors,
		tracker:    tracker,
		emoji:      emoji,
		gate:       gate,
	}
}

// HandleMessagePosted adds the vote markers to eligible messages
func (s *votingService) HandleMessagePosted(ctx context.Context, msg *models.Message) error {
	if msg.GuildID == 0 || msg.AuthorID == s.platform.BotUserID() {
		return nil
	}

	settings, err := s.settings.GetOrCreateSettings(ctx, msg.GuildID)
	if err != nil {
		return err
	}
	if !IsEligible(settings, msg) {
		return nil
	}

	if err := s.addMarkers(ctx, msg); err != nil {
		return err
	}

	uow := s.uowFactory.CreateForGuild(msg.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.GuildSettingsRepository().SetLastMemesMessage(ctx, msg.GuildID, msg.ID); err != nil {
		return fmt.Errorf("failed to record last memes message: %w", err)
	}

	return uow.Commit()
}

// HandleReactionAdded records a vote and pays its rewards
func (s *votingService) HandleReactionAdded(ctx context.Context, reaction models.ReactionEvent) error {
	msg, vote, err := s.eligibleReaction(ctx, reaction)
	if err != nil || msg == nil {
		return err
	}

	logger := log.WithFields(log.Fields{
		"guildID":   reaction.GuildID,
		"messageID": reaction.MessageID,
		"voterID":   reaction.UserID,
		"vote":      vote.String(),
	})

	poster, err := s.authors.ResolveOriginalAuthor(ctx, msg)
	if err != nil {
		logger.WithError(err).Warn("Failed to resolve poster, ignoring vote")
		return nil
	}
	if poster == nil {
		logger.Debug("Poster not found, ignoring vote")
		return nil
	}

	if poster.UserID == reaction.UserID {
		logger.Debug("Stripping self-vote")
		return s.removeExtraReactions(ctx, msg, reaction.UserID, models.VoteNone)
	}

	uow := s.uowFactory.CreateForGuild(reaction.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	previous, err := uow.VoteRepository().Record(ctx, msg.ID, msg.ChannelID, reaction.UserID, vote)
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	if err := ApplyVoteTransition(ctx, uow, VoteTransition{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		Poster:    models.NewAccount(poster.UserID, msg.GuildID),
		Voter:     models.NewAccount(reaction.UserID, msg.GuildID),
		Old:       previous,
		New:       vote,
	}); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.WithField("previous", previous.String()).Debug("Vote recorded")

	return s.removeExtraReactions(ctx, msg, reaction.UserID, vote)
}

// HandleReactionRemoved removes a vote unless the bot removed the reaction itself
func (s *votingService) HandleReactionRemoved(ctx context.Context, reaction models.ReactionEvent) error {
	msg, vote, err := s.eligibleReaction(ctx, reaction)
	if err != nil || msg == nil {
		return err
	}

	if s.tracker.Consume(reaction.MessageID, vote, reaction.UserID) {
		return nil
	}

	uow := s.uowFactory.CreateForGuild(reaction.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	previous, err := uow.VoteRepository().Delete(ctx, msg.ID, reaction.UserID, vote)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	if err := s.ApplyVoteTransition(ctx, uow, msg, reaction.UserID, previous, models.VoteNone); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":   reaction.GuildID,
		"messageID": reaction.MessageID,
		"voterID":   reaction.UserID,
		"previous":  previous.String(),
	}).Debug("Vote removed")

	// A mismatched removal leaves the stored vote and its reaction in place
	if previous == models.VoteNone {
		return nil
	}
	return s.removeExtraReactions(ctx, msg, reaction.UserID, models.VoteNone)
}

// ApplyVoteTransition resolves the poster of msg and applies the reward change
func (s *votingService) ApplyVoteTransition(ctx context.Context, uow UnitOfWork, msg *models.Message, voterID int64, old, new models.Vote) error {
	if old == new {
		return nil
	}

	poster, err := s.authors.ResolveOriginalAuthor(ctx, msg)
	if err != nil || poster == nil {
		log.WithFields(log.Fields{
			"guildID":   msg.GuildID,
			"messageID": msg.ID,
			"voterID":   voterID,
		}).WithError(err).Warn("Poster could not be resolved, skipping vote rewards")
		return nil
	}

	return ApplyVoteTransition(ctx, uow, VoteTransition{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		Poster:    models.NewAccount(poster.UserID, msg.GuildID),
		Voter:     models.NewAccount(voterID, msg.GuildID),
		Old:       old,
		New:       new,
	})
}

// eligibleReaction returns the message and vote of a reaction that counts, or a nil message
func (s *votingService) eligibleReaction(ctx context.Context, reaction models.ReactionEvent) (*models.Message, models.Vote, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return nil, models.VoteNone, err
	}

	if reaction.GuildID == 0 || reaction.UserID == s.platform.BotUserID() {
		return nil, models.VoteNone, nil
	}

	vote := s.emoji.VoteFor(reaction.Emoji)
	if vote == models.VoteNone {
		return nil, models.VoteNone, nil
	}

	settings, err := s.settings.GetOrCreateSettings(ctx, reaction.GuildID)
	if err != nil {
		return nil, models.VoteNone, err
	}
	if settings.MemesChannelID == nil || *settings.MemesChannelID != reaction.ChannelID {
		return nil, models.VoteNone, nil
	}

	msg, err := s.platform.FetchMessage(ctx, reaction.ChannelID, reaction.MessageID)
	if err != nil {
		return nil, models.VoteNone, fmt.Errorf("failed to fetch message %d: %w", reaction.MessageID, err)
	}
	if msg.GuildID == 0 {
		msg.GuildID = reaction.GuildID
	}
	if !IsEligible(settings, msg) {
		return nil, models.VoteNone, nil
	}

	return msg, vote, nil
}

func (s *votingService) addMarkers(ctx context.Context, msg *models.Message) error {
	for _, v := range s.emoji.Markers() {
		if err := s.platform.AddReaction(ctx, msg.ChannelID, msg.ID, s.emoji.EmojiFor(v)); err != nil {
			return fmt.Errorf("failed to add %s marker to message %d: %w", v, msg.ID, err)
		}
	}
	return nil
}

// removeExtraReactions strips every marker of userID other than keep
func (s *votingService) removeExtraReactions(ctx context.Context, msg *models.Message, userID int64, keep models.Vote) error {
	for _, v := range s.emoji.Markers() {
		if v == keep {
			continue
		}

		emoji := s.emoji.EmojiFor(v)
		users, err := s.platform.ReactionUsers(ctx, msg.ChannelID, msg.ID, emoji)
		if err != nil {
			return fmt.Errorf("failed to list %s reactions on message %d: %w", v, msg.ID, err)
		}
		if !containsID(users, userID) {
			continue
		}

		s.tracker.Expect(msg.ID, v, userID)
		if err := s.platform.RemoveReaction(ctx, msg.ChannelID, msg.ID, emoji, userID); err != nil {
			return fmt.Errorf("failed to remove %s reaction from message %d: %w", v, msg.ID, err)
		}
	}
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
