package repository

import (
	"context"
	"testing"

	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberRepository_Balances(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMemberRepository(testDB.DB, testutil.TestGuildID)
	ctx := context.Background()

	t.Run("missing member has zero balance", func(t *testing.T) {
		balance, err := repo.GetBalance(ctx, 999)
		require.NoError(t, err)
		assert.Equal(t, models.ZeroBobux, balance)
	})

	t.Run("set creates the guild and the member", func(t *testing.T) {
		require.NoError(t, repo.SetBalance(ctx, 1, models.NewBobux(-6, true)))

		balance, err := repo.GetBalance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.NewBobux(-6, true), balance)
	})

	t.Run("leaderboard orders by units then spare change", func(t *testing.T) {
		require.NoError(t, repo.SetBalance(ctx, 2, models.NewBobux(10, false)))
		require.NoError(t, repo.SetBalance(ctx, 3, models.NewBobux(10, true)))
		require.NoError(t, repo.SetBalance(ctx, 4, models.NewBobux(3, false)))

		leaderboard, err := repo.Leaderboard(ctx, 0)
		require.NoError(t, err)
		require.Len(t, leaderboard, 4)
		assert.Equal(t, int64(3), leaderboard[0].UserID)
		assert.Equal(t, int64(2), leaderboard[1].UserID)
		assert.Equal(t, int64(4), leaderboard[2].UserID)
		assert.Equal(t, int64(1), leaderboard[3].UserID)

		top, err := repo.Leaderboard(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, top, 2)
	})
}

func TestBalanceHistoryRepository_RecordAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBalanceHistoryRepository(testDB.DB, testutil.TestGuildID)
	ctx := context.Background()

	history := testutil.CreateTestBalanceHistory(testutil.TestPosterID, models.NewBobux(2, true), models.NewBobux(-3, true))
	require.NoError(t, repo.Record(ctx, history))
	assert.NotZero(t, history.ID)
	assert.Equal(t, testutil.TestGuildID, history.GuildID)

	histories, err := repo.GetByUser(ctx, testutil.TestPosterID, 10)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Equal(t, models.NewBobux(2, true), histories[0].BalanceBefore)
	assert.Equal(t, models.NewBobux(-3, true), histories[0].BalanceAfter)
	assert.Equal(t, models.NewBobux(-5, false), histories[0].ChangeAmount)
	assert.Equal(t, true, histories[0].TransactionMetadata["test"])
}
