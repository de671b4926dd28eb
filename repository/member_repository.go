package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/models"
	"github.com/jackc/pgx/v5"
)

// MemberRepository stores member balances for one guild
type MemberRepository struct {
	q       queryable
	guildID int64
}

// NewMemberRepository creates a member repository on the pool
func NewMemberRepository(db *database.DB, guildID int64) *MemberRepository {
	return &MemberRepository{q: db.Pool, guildID: guildID}
}

func newMemberRepository(tx queryable, guildID int64) *MemberRepository {
	return &MemberRepository{q: tx, guildID: guildID}
}

// GetBalance returns a member's balance, or zero when the member has no row
func (r *MemberRepository) GetBalance(ctx context.Context, userID int64) (models.Bobux, error) {
	query := `
		SELECT balance, spare_change
		FROM members
		WHERE id = $1 AND guild_id = $2
	`

	var balance models.Bobux
	err := r.q.QueryRow(ctx, query, userID, r.guildID).Scan(&balance.Units, &balance.Half)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ZeroBobux, nil
	}
	if err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to get balance for member %d: %w", userID, err)
	}

	return balance, nil
}

// LockBalance inserts a zero row when the member has none, then locks it for the rest of the
// transaction. A concurrent first credit waits on the insert instead of overwriting.
func (r *MemberRepository) LockBalance(ctx context.Context, userID int64) (models.Bobux, error) {
	if err := ensureGuild(ctx, r.q, r.guildID); err != nil {
		return models.ZeroBobux, err
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO members (id, guild_id) VALUES ($1, $2)
		ON CONFLICT (id, guild_id) DO NOTHING
	`, userID, r.guildID)
	if err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to create member %d: %w", userID, err)
	}

	var balance models.Bobux
	err = r.q.QueryRow(ctx, `
		SELECT balance, spare_change
		FROM members
		WHERE id = $1 AND guild_id = $2
		FOR UPDATE
	`, userID, r.guildID).Scan(&balance.Units, &balance.Half)
	if err != nil {
		return models.ZeroBobux, fmt.Errorf("failed to lock balance for member %d: %w", userID, err)
	}

	return balance, nil
}

// SetBalance creates or overwrites a member's balance row
func (r *MemberRepository) SetBalance(ctx context.Context, userID int64, balance models.Bobux) error {
	if err := ensureGuild(ctx, r.q, r.guildID); err != nil {
		return err
	}

	query := `
		INSERT INTO members (id, guild_id, balance, spare_change)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id, guild_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    spare_change = EXCLUDED.spare_change
	`

	if _, err := r.q.Exec(ctx, query, userID, r.guildID, balance.Units, balance.Half); err != nil {
		return fmt.Errorf("failed to set balance for member %d: %w", userID, err)
	}

	return nil
}

// Leaderboard returns balances ordered from highest to lowest. A limit of 0 returns every member.
func (r *MemberRepository) Leaderboard(ctx context.Context, limit int) ([]*models.MemberBalance, error) {
	query := `
		SELECT id, guild_id, balance, spare_change
		FROM members
		WHERE guild_id = $1
		ORDER BY balance DESC, spare_change DESC, id
		LIMIT NULLIF($2::int, 0)
	`

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var balances []*models.MemberBalance
	for rows.Next() {
		var mb models.MemberBalance
		if err := rows.Scan(&mb.UserID, &mb.GuildID, &mb.Balance.Units, &mb.Balance.Half); err != nil {
			return nil, fmt.Errorf("failed to scan member balance: %w", err)
		}
		balances = append(balances, &mb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return balances, nil
}
