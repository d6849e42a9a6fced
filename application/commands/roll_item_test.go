package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scandex-backend/application/commands"
	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	"scandex-backend/domain/events"
	"scandex-backend/domain/services"
	"scandex-backend/infrastructure/config"
	"scandex-backend/infrastructure/persistence/memory"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/observability"
	"scandex-backend/pkg/random"
)

type rollFixture struct {
	players      ports.PlayerRepository
	collectables ports.CollectableRepository
	items        ports.ItemRepository
	recorder     *memory.EventRecorder
	handler      *commands.RollItemHandler
}

func newRollFixture(t *testing.T) *rollFixture {
	t.Helper()
	store := memory.NewStore()
	f := &rollFixture{
		players:      memory.NewPlayerRepository(store),
		collectables: memory.NewCollectableRepository(store),
		items:        memory.NewItemRepository(store),
		recorder:     memory.NewEventRecorder(),
	}

	rarities := config.NewStaticRarityRepository(config.DefaultRarityTable())
	roller := services.NewItemRoller(random.NewSeeded(42), zap.NewNop())
	f.handler = commands.NewRollItemHandler(
		f.players, rarities, f.collectables, f.items, roller,
		f.recorder, observability.NewMetrics("Test", nil), zap.NewNop(),
	)

	for i, rarityID := range []int{1, 1, 2, 3, 5} {
		collectable, err := entities.NewCollectable("Catalog Entry", "seeded for tests", rarityID)
		require.NoError(t, err, "collectable %d", i)
		require.NoError(t, f.collectables.Save(context.Background(), collectable))
	}

	return f
}

func (f *rollFixture) newPlayer(t *testing.T) *entities.Player {
	t.Helper()
	player, err := entities.NewPlayer(valueobjects.NewPlayerID(), "scanner@example.com", "Scanner")
	require.NoError(t, err)
	require.NoError(t, f.players.Save(context.Background(), player))
	return player
}

func TestRollItem_MintsItemUnderRequestedID(t *testing.T) {
	f := newRollFixture(t)
	player := f.newPlayer(t)

	itemID := valueobjects.NewItemID()
	cmd := commands.RollItemCommand{
		ItemID:   itemID.String(),
		PlayerID: player.ID().String(),
		Barcode:  "0123456789012",
	}

	require.NoError(t, f.handler.Handle(context.Background(), cmd))

	item, err := f.items.GetByID(context.Background(), itemID)
	require.NoError(t, err)
	assert.True(t, item.PlayerID().Equals(player.ID()))
	assert.GreaterOrEqual(t, item.Quality(), 1)
	assert.LessOrEqual(t, item.Quality(), 100)

	found := f.recorder.ByType("item.found")
	require.Len(t, found, 1)
	event := found[0].(events.ItemFound)
	assert.Equal(t, itemID.String(), event.ItemID)
	assert.Equal(t, player.ID().String(), event.PlayerID)
}

func TestRollItem_UnknownPlayer(t *testing.T) {
	f := newRollFixture(t)

	cmd := commands.RollItemCommand{
		ItemID:   valueobjects.NewItemID().String(),
		PlayerID: valueobjects.NewPlayerID().String(),
		Barcode:  "0123456789012",
	}

	err := f.handler.Handle(context.Background(), cmd)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Empty(t, f.recorder.Events())
}

func TestRollItem_DuplicateItemID(t *testing.T) {
	f := newRollFixture(t)
	player := f.newPlayer(t)

	itemID := valueobjects.NewItemID()
	cmd := commands.RollItemCommand{
		ItemID:   itemID.String(),
		PlayerID: player.ID().String(),
		Barcode:  "0123456789012",
	}

	require.NoError(t, f.handler.Handle(context.Background(), cmd))

	err := f.handler.Handle(context.Background(), cmd)
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypeConflict, appErr.Type)
}
