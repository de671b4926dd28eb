package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/models"
	"github.com/jackc/pgx/v5"
)

// VoteRepository stores one vote per member per message
type VoteRepository struct {
	q       queryable
	guildID int64
}

// NewVoteRepository creates a vote repository on the pool
func NewVoteRepository(db *database.DB, guildID int64) *VoteRepository {
	return &VoteRepository{q: db.Pool, guildID: guildID}
}

func newVoteRepository(tx queryable, guildID int64) *VoteRepository {
	return &VoteRepository{q: tx, guildID: guildID}
}

// GetPrevious returns the stored vote, or VoteNone
func (r *VoteRepository) GetPrevious(ctx context.Context, messageID, memberID int64) (models.Vote, error) {
	query := `SELECT vote FROM votes WHERE message_id = $1 AND member_id = $2`

	var vote int16
	err := r.q.QueryRow(ctx, query, messageID, memberID).Scan(&vote)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.VoteNone, nil
	}
	if err != nil {
		return models.VoteNone, fmt.Errorf("failed to get vote of member %d on message %d: %w", memberID, messageID, err)
	}

	return models.Vote(vote), nil
}

// recordAttempts bounds retries when the row disappears between the insert and the lock
const recordAttempts = 3

// Record upserts a vote and returns the vote it replaced. A first insert claims the row; otherwise
// the committed row is locked and rewritten, so two concurrent records of the same vote never
// both report VoteNone.
func (r *VoteRepository) Record(ctx context.Context, messageID, channelID, memberID int64, vote models.Vote) (models.Vote, error) {
	if vote == models.VoteNone {
		return models.VoteNone, fmt.Errorf("cannot record an empty vote, delete it instead")
	}

	for attempt := 0; attempt < recordAttempts; attempt++ {
		// Waits for a concurrent uncommitted insert of the same key before deciding
		tag, err := r.q.Exec(ctx, `
			INSERT INTO votes (message_id, channel_id, guild_id, member_id, vote)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (message_id, member_id) DO NOTHING
		`, messageID, channelID, r.guildID, memberID, int16(vote))
		if err != nil {
			return models.VoteNone, fmt.Errorf("failed to record vote of member %d on message %d: %w", memberID, messageID, err)
		}
		if tag.RowsAffected() == 1 {
			return models.VoteNone, nil
		}

		var previous int16
		err = r.q.QueryRow(ctx, `
			SELECT vote FROM votes
			WHERE message_id = $1 AND member_id = $2
			FOR UPDATE
		`, messageID, memberID).Scan(&previous)
		if errors.Is(err, pgx.ErrNoRows) {
			// Deleted after our insert conflicted; try to claim it again
			continue
		}
		if err != nil {
			return models.VoteNone, fmt.Errorf("failed to lock vote of member %d on message %d: %w", memberID, messageID, err)
		}

		_, err = r.q.Exec(ctx, `
			UPDATE votes SET vote = $3, channel_id = $4
			WHERE message_id = $1 AND member_id = $2
		`, messageID, memberID, int16(vote), channelID)
		if err != nil {
			return models.VoteNone, fmt.Errorf("failed to update vote of member %d on message %d: %w", memberID, messageID, err)
		}
		return models.Vote(previous), nil
	}

	return models.VoteNone, fmt.Errorf("vote of member %d on message %d kept changing, gave up after %d attempts", memberID, messageID, recordAttempts)
}

// Delete removes a vote and returns what was stored. With an expected vote other than VoteNone
// only a matching row is removed.
func (r *VoteRepository) Delete(ctx context.Context, messageID, memberID int64, expected models.Vote) (models.Vote, error) {
	query := `
		DELETE FROM votes
		WHERE message_id = $1 AND member_id = $2
		  AND ($3::smallint = 0 OR vote = $3::smallint)
		RETURNING vote
	`

	var vote int16
	err := r.q.QueryRow(ctx, query, messageID, memberID, int16(expected)).Scan(&vote)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.VoteNone, nil
	}
	if err != nil {
		return models.VoteNone, fmt.Errorf("failed to delete vote of member %d on message %d: %w", memberID, messageID, err)
	}

	return models.Vote(vote), nil
}

// DeleteAllForMessage removes every vote on a message and returns them keyed by member
func (r *VoteRepository) DeleteAllForMessage(ctx context.Context, messageID int64) (map[int64]models.Vote, error) {
	query := `
		DELETE FROM votes
		WHERE message_id = $1 AND guild_id = $2
		RETURNING member_id, vote
	`

	rows, err := r.q.Query(ctx, query, messageID, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete votes on message %d: %w", messageID, err)
	}
	defer rows.Close()

	votes := make(map[int64]models.Vote)
	for rows.Next() {
		var memberID int64
		var vote int16
		if err := rows.Scan(&memberID, &vote); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes[memberID] = models.Vote(vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}

// ListVotedMessages returns every message in the guild that has at least one vote, oldest first
func (r *VoteRepository) ListVotedMessages(ctx context.Context) ([]*models.VotedMessage, error) {
	query := `
		SELECT DISTINCT message_id, channel_id
		FROM votes
		WHERE guild_id = $1
		ORDER BY message_id
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voted messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.VotedMessage
	for rows.Next() {
		var m models.VotedMessage
		if err := rows.Scan(&m.MessageID, &m.ChannelID); err != nil {
			return nil, fmt.Errorf("failed to scan voted message: %w", err)
		}
		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate voted messages: %w", err)
	}

	return messages, nil
}
