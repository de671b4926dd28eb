package repository

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/models"
	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

func newGuildSettingsRepositoryWithTx(tx queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	// The no-op update makes RETURNING yield the existing row on conflict
	query := `
		INSERT INTO guilds (id)
		VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, admin_role, memes_channel, real_estate_category, last_memes_message
	`

	var settings models.GuildSettings
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.AdminRoleID,
		&settings.MemesChannelID,
		&settings.RealEstateCategory,
		&settings.LastMemesMessageID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	return &settings, nil
}

// UpdateGuildSettings updates guild settings
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	query := `
		UPDATE guilds
		SET admin_role = $2,
		    memes_channel = $3,
		    real_estate_category = $4
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.AdminRoleID,
		settings.MemesChannelID,
		settings.RealEstateCategory,
	)
	if err != nil {
		return fmt.Errorf("failed to update guild settings for guild %d: %w", settings.GuildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings for guild %d not found", settings.GuildID)
	}

	return nil
}

// SetLastMemesMessage records the newest message seen in the memes channel. Older ids never
// replace newer ones.
func (r *GuildSettingsRepository) SetLastMemesMessage(ctx context.Context, guildID, messageID int64) error {
	query := `
		INSERT INTO guilds (id, last_memes_message)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET last_memes_message = GREATEST(COALESCE(guilds.last_memes_message, 0), EXCLUDED.last_memes_message)
	`

	if _, err := r.q.Exec(ctx, query, guildID, messageID); err != nil {
		return fmt.Errorf("failed to set last memes message for guild %d: %w", guildID, err)
	}

	return nil
}

// ListSyncTargets returns guilds with a memes channel and a last known message
func (r *GuildSettingsRepository) ListSyncTargets(ctx context.Context) ([]*models.SyncTarget, error) {
	query := `
		SELECT id, memes_channel, last_memes_message
		FROM guilds
		WHERE memes_channel IS NOT NULL AND last_memes_message IS NOT NULL
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync targets: %w", err)
	}
	defer rows.Close()

	var targets []*models.SyncTarget
	for rows.Next() {
		var target models.SyncTarget
		if err := rows.Scan(&target.GuildID, &target.MemesChannelID, &target.LastMemesMessageID); err != nil {
			return nil, fmt.Errorf("failed to scan sync target: %w", err)
		}
		targets = append(targets, &target)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync targets: %w", err)
	}

	return targets, nil
}

// ListSubscriptionGuilds returns guilds with at least one active member subscription
func (r *GuildSettingsRepository) ListSubscriptionGuilds(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT a.guild_id
		FROM member_subscriptions ms
		JOIN available_subscriptions a ON a.role_id = ms.role_id
		ORDER BY a.guild_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription guilds: %w", err)
	}
	guildIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect subscription guilds: %w", err)
	}

	return guildIDs, nil
}
