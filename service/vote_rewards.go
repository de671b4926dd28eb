package service

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/models"
)

const (
	// PosterRewardPerPoint is paid to the poster per point of vote change
	PosterRewardPerPoint = 5.0
	// VoterRewardPerPoint is paid to the voter per point of vote change
	VoterRewardPerPoint = 2.5
)

// VoteTransition identifies one member's vote change on one message
type VoteTransition struct {
	MessageID int64
	ChannelID int64
	Poster    models.Account
	Voter     models.Account
	Old       models.Vote
	New       models.Vote
}

// ApplyVoteTransition applies the reward change for a vote moving from Old to New.
// Both legs run in one savepoint. Replaying a transition with Old == New does nothing.
//
//	delta < 0, new set:    poster -5|d| (overdraft), voter +2.5|d|
//	delta > 0, new set:    poster +5|d|,             voter +2.5|d|
//	delta < 0, new none:   poster -5|d|,             voter -2.5|d|
//	delta > 0, new none:   poster +5|d|,             voter -2.5|d|
func ApplyVoteTransition(ctx context.Context, uow UnitOfWork, vt VoteTransition) error {
	if vt.Old == vt.New {
		return nil
	}

	delta := vt.New.Value() - vt.Old.Value()
	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}

	posterReward := models.BobuxFromFloat(PosterRewardPerPoint * float64(magnitude))
	voterReward := models.BobuxFromFloat(VoterRewardPerPoint * float64(magnitude))

	metadata := map[string]any{
		"message_id": vt.MessageID,
		"channel_id": vt.ChannelID,
		"voter_id":   vt.Voter.UserID,
		"old_vote":   vt.Old.String(),
		"new_vote":   vt.New.String(),
	}

	posterLeg := models.Transaction{
		Amount:   posterReward,
		Type:     models.TransactionTypeVoteReward,
		Metadata: metadata,
	}
	if delta < 0 {
		posterLeg.Source = &vt.Poster
		posterLeg.AllowOverdraft = vt.New != models.VoteNone
	} else {
		posterLeg.Destination = &vt.Poster
	}

	voterLeg := models.Transaction{
		Amount:   voterReward,
		Type:     models.TransactionTypeVoteReward,
		Metadata: metadata,
	}
	if vt.New == models.VoteNone {
		voterLeg.Source = &vt.Voter
	} else {
		voterLeg.Destination = &vt.Voter
	}

	savepoint, err := uow.Nested(ctx)
	if err != nil {
		return fmt.Errorf("failed to open vote reward savepoint: %w", err)
	}
	defer savepoint.Rollback() // No-op if already committed

	if err := CreateTransaction(ctx, savepoint, posterLeg); err != nil {
		return fmt.Errorf("failed to apply poster reward: %w", err)
	}
	if err := CreateTransaction(ctx, savepoint, voterLeg); err != nil {
		return fmt.Errorf("failed to apply voter reward: %w", err)
	}

	savepoint.EventBus().Publish(events.VoteChangedEvent{
		GuildID:   uow.GuildID(),
		ChannelID: vt.ChannelID,
		MessageID: vt.MessageID,
		PosterID:  vt.Poster.UserID,
		VoterID:   vt.Voter.UserID,
		OldVote:   vt.Old,
		NewVote:   vt.New,
	})

	if err := savepoint.Commit(); err != nil {
		return fmt.Errorf("failed to release vote reward savepoint: %w", err)
	}
	return nil
}
