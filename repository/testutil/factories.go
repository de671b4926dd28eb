package testutil

import (
	"context"
	"testing"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/models"

	"github.com/stretchr/testify/require"
)

const (
	TestGuildID   int64 = 100000000000000001
	TestChannelID int64 = 200000000000000001
	TestMessageID int64 = 300000000000000001
	TestPosterID  int64 = 400000000000000001
	TestVoterID   int64 = 400000000000000002
)

// SeedMember inserts a guild and a member with the given balance
func SeedMember(t *testing.T, db *database.DB, guildID, userID int64, balance models.Bobux) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, `INSERT INTO guilds (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, guildID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO members (id, guild_id, balance, spare_change)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id, guild_id) DO UPDATE SET balance = EXCLUDED.balance, spare_change = EXCLUDED.spare_change
	`, userID, guildID, balance.Units, balance.Half)
	require.NoError(t, err)
}

// ReadBalance reads a member's balance directly, outside any unit of work
func ReadBalance(t *testing.T, db *database.DB, guildID, userID int64) models.Bobux {
	t.Helper()

	var balance models.Bobux
	err := db.QueryRow(context.Background(),
		`SELECT balance, spare_change FROM members WHERE id = $1 AND guild_id = $2`,
		userID, guildID,
	).Scan(&balance.Units, &balance.Half)
	if err != nil {
		return models.ZeroBobux
	}
	return balance
}

// CreateTestBalanceHistory creates a balance history entry for a vote reward
func CreateTestBalanceHistory(userID int64, before, after models.Bobux) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   before,
		BalanceAfter:    after,
		ChangeAmount:    after.Sub(before),
		TransactionType: models.TransactionTypeVoteReward,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
