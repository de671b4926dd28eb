package repository

import (
	"context"
	"testing"
	"time"

	"github.com/arm32x/bobux-economy/events"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_NestedRollbackKeepsOuterWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	uow := factory.CreateForGuild(testutil.TestGuildID)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Equal(t, 0, uow.Depth())
	require.NoError(t, uow.MemberRepository().SetBalance(ctx, 1, models.NewBobux(10, false)))

	nested, err := uow.Nested(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, nested.Depth())
	assert.Equal(t, testutil.TestGuildID, nested.GuildID())

	require.NoError(t, nested.MemberRepository().SetBalance(ctx, 1, models.NewBobux(99, false)))
	require.NoError(t, nested.Rollback())

	balance, err := uow.MemberRepository().GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.NewBobux(10, false), balance)

	require.NoError(t, uow.Commit())
	assert.Equal(t, models.NewBobux(10, false), testutil.ReadBalance(t, testDB.DB, testutil.TestGuildID, 1))
}

func TestUnitOfWork_NestedCommitIsUndoneByOuterRollback(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	uow := factory.CreateForGuild(testutil.TestGuildID)
	require.NoError(t, uow.Begin(ctx))

	nested, err := uow.Nested(ctx)
	require.NoError(t, err)
	deeper, err := nested.Nested(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deeper.Depth())

	require.NoError(t, deeper.MemberRepository().SetBalance(ctx, 1, models.NewBobux(5, true)))
	require.NoError(t, deeper.Commit())
	require.NoError(t, nested.Commit())

	balance, err := uow.MemberRepository().GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.NewBobux(5, true), balance)

	require.NoError(t, uow.Rollback())
	assert.Equal(t, models.ZeroBobux, testutil.ReadBalance(t, testDB.DB, testutil.TestGuildID, 1))
}

func TestUnitOfWork_EventsFlushAfterOutermostCommit(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	received := make(chan events.Event, 4)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		received <- event
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	uow := factory.CreateForGuild(testutil.TestGuildID)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	kept, err := uow.Nested(ctx)
	require.NoError(t, err)
	kept.EventBus().Publish(events.BalanceChangeEvent{UserID: 1})
	require.NoError(t, kept.Commit())

	dropped, err := uow.Nested(ctx)
	require.NoError(t, err)
	dropped.EventBus().Publish(events.BalanceChangeEvent{UserID: 2})
	require.NoError(t, dropped.Rollback())

	select {
	case <-received:
		t.Fatal("event emitted before the outermost commit")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, uow.Commit())

	select {
	case ev := <-received:
		assert.Equal(t, int64(1), ev.(events.BalanceChangeEvent).UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not emitted after commit")
	}

	select {
	case ev := <-received:
		t.Fatalf("rolled back event was emitted: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnitOfWork_NestedRequiresBegin(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	uow := NewUnitOfWorkFactory(testDB.DB, events.NewBus()).CreateForGuild(testutil.TestGuildID)
	_, err := uow.Nested(context.Background())
	assert.Error(t, err)
}
