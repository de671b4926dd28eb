package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/models"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q       queryable
	guildID int64
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB, guildID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool, guildID: guildID}
}

// newBalanceHistoryRepository creates a new balance history repository with a transaction and guild scope
func newBalanceHistoryRepository(tx queryable, guildID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	metadataJSON, err := json.Marshal(history.TransactionMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO balance_history
		(user_id, guild_id, balance_before_halves, balance_after_halves, change_halves, transaction_type, transaction_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		history.UserID,
		r.guildID,
		history.BalanceBefore.HalfUnits(),
		history.BalanceAfter.HalfUnits(),
		history.ChangeAmount.HalfUnits(),
		history.TransactionType,
		metadataJSON,
	).Scan(&history.ID, &history.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record balance history for member %d: %w", history.UserID, err)
	}

	history.GuildID = r.guildID

	return nil
}

// GetByUser returns the most recent balance history entries for a member
func (r *BalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	query := `
		SELECT id, user_id, guild_id, balance_before_halves, balance_after_halves, change_halves,
		       transaction_type, transaction_metadata, created_at
		FROM balance_history
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, userID, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for member %d: %w", userID, err)
	}
	defer rows.Close()

	var histories []*models.BalanceHistory
	for rows.Next() {
		var h models.BalanceHistory
		var before, after, change int64
		var metadataJSON []byte

		err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.GuildID,
			&before,
			&after,
			&change,
			&h.TransactionType,
			&metadataJSON,
			&h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}

		h.BalanceBefore = models.BobuxFromHalfUnits(before)
		h.BalanceAfter = models.BobuxFromHalfUnits(after)
		h.ChangeAmount = models.BobuxFromHalfUnits(change)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &h.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		histories = append(histories, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}

	return histories, nil
}
