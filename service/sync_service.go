package service

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/models"
	log "github.com/sirupsen/logrus"
)

// SyncPageSize is the number of messages fetched per history request
const SyncPageSize = 100

type syncService struct {
	uowFactory UnitOfWorkFactory
	directory  GuildDirectory
	platform   ChatPlatform
	authors    *AuthorResolver
	emoji      VoteEmoji
	gate       *SyncGate
	fullRescan bool
}

// NewSyncService creates the reconciliation pass. With fullRescan every message that already
// has a stored vote is re-synced before the history after the last known message.
func NewSyncService(
	uowFactory UnitOfWorkFactory,
	directory GuildDirectory,
	platform ChatPlatform,
	authors *AuthorResolver,
	emoji VoteEmoji,
	gate *SyncGate,
	fullRescan bool,
) SyncService {
	return &syncService{
		uowFactory: uowFactory,
		directory:  directory,
		platform:   platform,
		authors:    authors,
		emoji:      emoji,
		gate:       gate,
		fullRescan: fullRescan,
	}
}

// SyncVotes reconciles every configured memes channel. Failures are logged per channel and
// per message. The sync gate is released when it returns.
func (s *syncService) SyncVotes(ctx context.Context) error {
	defer s.gate.Release()

	targets, err := s.directory.ListSyncTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sync targets: %w", err)
	}

	log.WithField("guildCount", len(targets)).Info("Synchronizing votes")

	for _, target := range targets {
		logger := log.WithFields(log.Fields{
			"guildID":   target.GuildID,
			"channelID": target.MemesChannelID,
		})

		if s.fullRescan {
			if err := s.rescanVotedMessages(ctx, target); err != nil {
				logger.WithError(err).Error("Failed to rescan voted messages")
			}
		}

		synced, err := s.syncHistory(ctx, target)
		if err != nil {
			logger.WithError(err).Error("Failed to sync memes channel history")
			continue
		}
		logger.WithField("messageCount", synced).Info("Memes channel synchronized")
	}

	return nil
}

// syncHistory walks the channel history after the last known message
func (s *syncService) syncHistory(ctx context.Context, target *models.SyncTarget) (int, error) {
	settings := &models.GuildSettings{
		GuildID:        target.GuildID,
		MemesChannelID: &target.MemesChannelID,
	}

	after := target.LastMemesMessageID
	synced := 0
	for {
		page, err := s.platform.MessagesAfter(ctx, target.MemesChannelID, after, SyncPageSize)
		if err != nil {
			return synced, fmt.Errorf("failed to fetch messages after %d: %w", after, err)
		}
		if len(page) == 0 {
			return synced, nil
		}

		for _, msg := range page {
			if msg.GuildID == 0 {
				msg.GuildID = target.GuildID
			}
			if msg.ID > after {
				after = msg.ID
			}
			if msg.AuthorID == s.platform.BotUserID() || !IsEligible(settings, msg) {
				continue
			}
			if err := s.SyncMessage(ctx, msg); err != nil {
				log.WithFields(log.Fields{
					"guildID":   target.GuildID,
					"messageID": msg.ID,
				}).WithError(err).Error("Failed to sync message")
				continue
			}
			synced++
		}

		if err := s.advance(ctx, target.GuildID, after); err != nil {
			return synced, err
		}
		if len(page) < SyncPageSize {
			return synced, nil
		}
	}
}

func (s *syncService) advance(ctx context.Context, guildID, messageID int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.GuildSettingsRepository().SetLastMemesMessage(ctx, guildID, messageID); err != nil {
		return fmt.Errorf("failed to advance last memes message: %w", err)
	}
	return uow.Commit()
}

// rescanVotedMessages re-syncs every message in the memes channel with a stored vote
func (s *syncService) rescanVotedMessages(ctx context.Context, target *models.SyncTarget) error {
	uow := s.uowFactory.CreateForGuild(target.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	voted, err := uow.VoteRepository().ListVotedMessages(ctx)
	uow.Rollback()
	if err != nil {
		return fmt.Errorf("failed to list voted messages: %w", err)
	}

	for _, vm := range voted {
		if vm.ChannelID != target.MemesChannelID {
			continue
		}

		logger := log.WithFields(log.Fields{
			"guildID":   target.GuildID,
			"messageID": vm.MessageID,
		})

		msg, err := s.platform.FetchMessage(ctx, vm.ChannelID, vm.MessageID)
		if err != nil {
			logger.WithError(err).Warn("Failed to fetch voted message")
			continue
		}
		if msg.GuildID == 0 {
			msg.GuildID = target.GuildID
		}
		if err := s.SyncMessage(ctx, msg); err != nil {
			logger.WithError(err).Error("Failed to sync voted message")
		}
	}
	return nil
}

// SyncMessage replaces the stored votes on msg with its live reactions, paying only the
// difference between the two.
func (s *syncService) SyncMessage(ctx context.Context, msg *models.Message) error {
	for _, v := range s.emoji.Markers() {
		if err := s.platform.AddReaction(ctx, msg.ChannelID, msg.ID, s.emoji.EmojiFor(v)); err != nil {
			return fmt.Errorf("failed to add %s marker: %w", v, err)
		}
	}

	var posterID int64
	poster, err := s.authors.ResolveOriginalAuthor(ctx, msg)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID":   msg.GuildID,
			"messageID": msg.ID,
		}).WithError(err).Warn("Failed to resolve poster during sync")
	}
	if poster != nil {
		posterID = poster.UserID
	} else {
		log.WithFields(log.Fields{
			"guildID":   msg.GuildID,
			"messageID": msg.ID,
		}).Warn("Poster could not be resolved, votes are synced without rewards")
	}

	type liveVote struct {
		userID int64
		vote   models.Vote
	}
	var live []liveVote
	for _, v := range s.emoji.Markers() {
		users, err := s.platform.ReactionUsers(ctx, msg.ChannelID, msg.ID, s.emoji.EmojiFor(v))
		if err != nil {
			return fmt.Errorf("failed to list %s reactions: %w", v, err)
		}
		for _, userID := range users {
			if userID == s.platform.BotUserID() || userID == posterID {
				continue
			}
			live = append(live, liveVote{userID: userID, vote: v})
		}
	}

	uow := s.uowFactory.CreateForGuild(msg.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	previous, err := uow.VoteRepository().DeleteAllForMessage(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to snapshot votes: %w", err)
	}

	current := make(map[int64]models.Vote, len(previous))
	for id, v := range previous {
		current[id] = v
	}
	seen := make(map[int64]bool, len(live))

	for _, lv := range live {
		seen[lv.userID] = true
		old, ok := current[lv.userID]
		if !ok {
			old = models.VoteNone
		}
		if err := s.replay(ctx, uow, msg, posterID, lv.userID, old, lv.vote); err != nil {
			log.WithFields(log.Fields{
				"guildID":   msg.GuildID,
				"messageID": msg.ID,
				"voterID":   lv.userID,
			}).WithError(err).Warn("Failed to replay vote")
			if err := s.restore(ctx, uow, msg, lv.userID, old); err != nil {
				return err
			}
			continue
		}
		current[lv.userID] = lv.vote
	}

	for voterID, old := range previous {
		if seen[voterID] {
			continue
		}
		if err := s.replay(ctx, uow, msg, posterID, voterID, old, models.VoteNone); err != nil {
			log.WithFields(log.Fields{
				"guildID":   msg.GuildID,
				"messageID": msg.ID,
				"voterID":   voterID,
			}).WithError(err).Warn("Failed to replay vote removal")
			if err := s.restore(ctx, uow, msg, voterID, old); err != nil {
				return err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// replay applies one voter's transition in its own savepoint. Rewards are skipped when the
// poster is unknown.
func (s *syncService) replay(ctx context.Context, uow UnitOfWork, msg *models.Message, posterID, voterID int64, old, new models.Vote) error {
	savepoint, err := uow.Nested(ctx)
	if err != nil {
		return fmt.Errorf("failed to open replay savepoint: %w", err)
	}
	defer savepoint.Rollback() // No-op if already committed

	if new != models.VoteNone {
		if _, err := savepoint.VoteRepository().Record(ctx, msg.ID, msg.ChannelID, voterID, new); err != nil {
			return fmt.Errorf("failed to record vote: %w", err)
		}
	}

	if posterID != 0 {
		if err := ApplyVoteTransition(ctx, savepoint, VoteTransition{
			MessageID: msg.ID,
			ChannelID: msg.ChannelID,
			Poster:    models.NewAccount(posterID, msg.GuildID),
			Voter:     models.NewAccount(voterID, msg.GuildID),
			Old:       old,
			New:       new,
		}); err != nil {
			return err
		}
	}

	return savepoint.Commit()
}

// restore puts back a vote whose replay failed, so the stored vote matches the rewards paid
func (s *syncService) restore(ctx context.Context, uow UnitOfWork, msg *models.Message, voterID int64, vote models.Vote) error {
	if vote == models.VoteNone {
		return nil
	}
	if _, err := uow.VoteRepository().Record(ctx, msg.ID, msg.ChannelID, voterID, vote); err != nil {
		return fmt.Errorf("failed to restore vote of member %d: %w", voterID, err)
	}
	return nil
}
