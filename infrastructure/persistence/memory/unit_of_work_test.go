package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
)

func seedItem(t *testing.T, items *ItemRepository, owner valueobjects.PlayerID) *entities.Item {
	t.Helper()
	item, err := entities.NewItem(valueobjects.NewItemID(), owner, valueobjects.NewCollectableID(), 50, 0.5)
	require.NoError(t, err)
	require.NoError(t, items.Save(context.Background(), item))
	return item
}

func TestUnitOfWork_CommitAppliesAllWrites(t *testing.T) {
	store := NewStore()
	items := NewItemRepository(store).(*ItemRepository)
	factory := NewUnitOfWorkFactory(store)
	ctx := context.Background()

	alice := valueobjects.NewPlayerID()
	bob := valueobjects.NewPlayerID()

	first := seedItem(t, items, alice)
	second := seedItem(t, items, bob)

	require.NoError(t, first.TransferTo(bob))
	require.NoError(t, second.TransferTo(alice))

	uow := factory.New()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, items.TransferOwnershipWithUoW(ctx, uow, first, alice))
	require.NoError(t, items.TransferOwnershipWithUoW(ctx, uow, second, bob))
	require.NoError(t, uow.Commit(ctx))

	stored, err := items.GetByID(ctx, first.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsOwnedBy(bob))

	stored, err = items.GetByID(ctx, second.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsOwnedBy(alice))
}

func TestUnitOfWork_FailedConditionAppliesNothing(t *testing.T) {
	store := NewStore()
	items := NewItemRepository(store).(*ItemRepository)
	factory := NewUnitOfWorkFactory(store)
	ctx := context.Background()

	alice := valueobjects.NewPlayerID()
	bob := valueobjects.NewPlayerID()
	carol := valueobjects.NewPlayerID()

	first := seedItem(t, items, alice)
	second := seedItem(t, items, carol) // not owned by bob

	require.NoError(t, first.TransferTo(bob))
	require.NoError(t, second.TransferTo(alice))

	uow := factory.New()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, items.TransferOwnershipWithUoW(ctx, uow, first, alice))
	require.NoError(t, items.TransferOwnershipWithUoW(ctx, uow, second, bob))

	err := uow.Commit(ctx)
	assert.True(t, pkgerrors.IsOwnership(err))

	// The passing write must not have been applied either.
	stored, err := items.GetByID(ctx, first.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsOwnedBy(alice))
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	store := NewStore()
	items := NewItemRepository(store).(*ItemRepository)
	factory := NewUnitOfWorkFactory(store)
	ctx := context.Background()

	alice := valueobjects.NewPlayerID()
	bob := valueobjects.NewPlayerID()

	item := seedItem(t, items, alice)
	require.NoError(t, item.TransferTo(bob))

	uow := factory.New()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, items.TransferOwnershipWithUoW(ctx, uow, item, alice))
	require.NoError(t, uow.Rollback())

	stored, err := items.GetByID(ctx, item.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsOwnedBy(alice))
}

func TestUnitOfWork_SingleUse(t *testing.T) {
	store := NewStore()
	factory := NewUnitOfWorkFactory(store)
	ctx := context.Background()

	uow := factory.New()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.Commit(ctx))

	assert.Error(t, uow.Begin(ctx))
}
