package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/models"
	"github.com/jackc/pgx/v5"
)

// PurchasedChannelRepository stores real estate ownership for one guild
type PurchasedChannelRepository struct {
	q       queryable
	guildID int64
}

// NewPurchasedChannelRepository creates a purchased channel repository on the pool
func NewPurchasedChannelRepository(db *database.DB, guildID int64) *PurchasedChannelRepository {
	return &PurchasedChannelRepository{q: db.Pool, guildID: guildID}
}

func newPurchasedChannelRepository(tx queryable, guildID int64) *PurchasedChannelRepository {
	return &PurchasedChannelRepository{q: tx, guildID: guildID}
}

// Create records a purchased channel
func (r *PurchasedChannelRepository) Create(ctx context.Context, channel *models.PurchasedChannel) error {
	if err := ensureGuild(ctx, r.q, r.guildID); err != nil {
		return err
	}

	query := `
		INSERT INTO purchased_channels (id, owner_id, guild_id, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING purchase_time
	`

	err := r.q.QueryRow(ctx, query, channel.ChannelID, channel.OwnerID, r.guildID, channel.Kind).Scan(&channel.PurchaseTime)
	if err != nil {
		return fmt.Errorf("failed to record purchased channel %d: %w", channel.ChannelID, err)
	}

	channel.GuildID = r.guildID
	return nil
}

// Get returns a purchased channel, or nil if the channel was not bought in this guild
func (r *PurchasedChannelRepository) Get(ctx context.Context, channelID int64) (*models.PurchasedChannel, error) {
	query := `
		SELECT id, owner_id, guild_id, kind, purchase_time
		FROM purchased_channels
		WHERE id = $1 AND guild_id = $2
	`

	var channel models.PurchasedChannel
	err := r.q.QueryRow(ctx, query, channelID, r.guildID).Scan(
		&channel.ChannelID,
		&channel.OwnerID,
		&channel.GuildID,
		&channel.Kind,
		&channel.PurchaseTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchased channel %d: %w", channelID, err)
	}

	return &channel, nil
}

// Delete removes a purchased channel record
func (r *PurchasedChannelRepository) Delete(ctx context.Context, channelID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM purchased_channels WHERE id = $1 AND guild_id = $2`, channelID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to delete purchased channel %d: %w", channelID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("purchased channel %d not found", channelID)
	}
	return nil
}

// ListByOwner returns a member's channels, oldest purchase first
func (r *PurchasedChannelRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.PurchasedChannel, error) {
	query := `
		SELECT id, owner_id, guild_id, kind, purchase_time
		FROM purchased_channels
		WHERE owner_id = $1 AND guild_id = $2
		ORDER BY purchase_time, id
	`

	rows, err := r.q.Query(ctx, query, ownerID, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels of member %d: %w", ownerID, err)
	}
	return collectPurchasedChannels(rows)
}

// ListAll returns every purchased channel in the guild grouped by owner
func (r *PurchasedChannelRepository) ListAll(ctx context.Context) ([]*models.PurchasedChannel, error) {
	query := `
		SELECT id, owner_id, guild_id, kind, purchase_time
		FROM purchased_channels
		WHERE guild_id = $1
		ORDER BY owner_id, purchase_time, id
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchased channels: %w", err)
	}
	return collectPurchasedChannels(rows)
}

func collectPurchasedChannels(rows pgx.Rows) ([]*models.PurchasedChannel, error) {
	defer rows.Close()

	var channels []*models.PurchasedChannel
	for rows.Next() {
		var channel models.PurchasedChannel
		if err := rows.Scan(&channel.ChannelID, &channel.OwnerID, &channel.GuildID, &channel.Kind, &channel.PurchaseTime); err != nil {
			return nil, fmt.Errorf("failed to scan purchased channel: %w", err)
		}
		channels = append(channels, &channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchased channels: %w", err)
	}

	return channels, nil
}
