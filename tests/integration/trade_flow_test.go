package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scandex-backend/application/commands"
	"scandex-backend/application/commands/bus"
	"scandex-backend/application/ports"
	"scandex-backend/application/queries"
	querybus "scandex-backend/application/queries/bus"
	"scandex-backend/infrastructure/config"
	"scandex-backend/infrastructure/di"
	"scandex-backend/infrastructure/persistence/memory"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/observability"
	"scandex-backend/pkg/random"
)

// env runs the full command and query buses over the in-memory store, so a
// test exercises the same wiring production gets from the container.
type env struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	recorder   *memory.EventRecorder
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore()
	players := memory.NewPlayerRepository(store)
	collectables := memory.NewCollectableRepository(store)
	items := memory.NewItemRepository(store)
	trades := memory.NewTradeRepository(store)
	uowFactory := memory.NewUnitOfWorkFactory(store)
	locks := memory.NewLockManager()
	recorder := memory.NewEventRecorder()

	rarities := config.NewStaticRarityRepository(config.DefaultRarityTable())
	rng := random.NewSeeded(99)
	metrics := observability.NewMetrics("Test", nil)
	logger := zap.NewNop()

	commandBus := di.ProvideCommandBus(
		players, rarities, collectables, items, trades,
		uowFactory, locks, recorder,
		di.ProvideChanceAssigner(rng),
		di.ProvideCatalogGenerator(rng),
		di.ProvideItemRoller(rng, logger),
		metrics, logger,
	)
	queryBus := di.ProvideQueryBus(players, rarities, collectables, items, trades)

	return &env{commandBus: commandBus, queryBus: queryBus, recorder: recorder}
}

func (e *env) registerPlayer(t *testing.T, email string) string {
	t.Helper()
	playerID := uuid.New().String()
	require.NoError(t, e.commandBus.Send(context.Background(), commands.RegisterPlayerCommand{
		PlayerID: playerID,
		Email:    email,
	}))
	return playerID
}

func (e *env) scan(t *testing.T, playerID, barcode string) string {
	t.Helper()
	itemID := uuid.New().String()
	require.NoError(t, e.commandBus.Send(context.Background(), commands.RollItemCommand{
		ItemID:   itemID,
		PlayerID: playerID,
		Barcode:  barcode,
	}))
	return itemID
}

func (e *env) itemOwner(t *testing.T, itemID string) string {
	t.Helper()
	result, err := e.queryBus.Ask(context.Background(), queries.GetItemQuery{ItemID: itemID})
	require.NoError(t, err)
	return result.(*queries.ItemResult).PlayerID
}

func TestTradeFlow_ScanOfferAcceptSettles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.commandBus.Send(ctx, commands.GenerateCatalogCommand{
		Count:       20,
		RequestedBy: "admin",
	}))

	alice := e.registerPlayer(t, "alice@example.com")
	bob := e.registerPlayer(t, "bob@example.com")

	offered := []string{e.scan(t, alice, "4006381333931"), e.scan(t, alice, "0123456789012")}
	requested := []string{e.scan(t, bob, "9780201379624")}

	tradeID := uuid.New().String()
	require.NoError(t, e.commandBus.Send(ctx, commands.CreateTradeCommand{
		TradeID:          tradeID,
		FromPlayerID:     alice,
		ToPlayerID:       bob,
		OfferedItemIDs:   offered,
		RequestedItemIDs: requested,
	}))

	require.NoError(t, e.commandBus.Send(ctx, commands.AcceptTradeCommand{
		TradeID:  tradeID,
		CallerID: bob,
	}))

	for _, itemID := range offered {
		assert.Equal(t, bob, e.itemOwner(t, itemID))
	}
	for _, itemID := range requested {
		assert.Equal(t, alice, e.itemOwner(t, itemID))
	}

	result, err := e.queryBus.Ask(ctx, queries.GetTradeQuery{TradeID: tradeID, CallerID: alice})
	require.NoError(t, err)
	trade := result.(*queries.TradeResult)
	assert.Equal(t, "COMPLETED", trade.Status)
	assert.NotEmpty(t, trade.ResolvedAt)

	resolved := e.recorder.ByType("trade.resolved")
	require.Len(t, resolved, 1)
}

func TestTradeFlow_CompetingOfferIsCancelledOnSettlement(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.commandBus.Send(ctx, commands.GenerateCatalogCommand{
		Count:       20,
		RequestedBy: "admin",
	}))

	alice := e.registerPlayer(t, "alice@example.com")
	bob := e.registerPlayer(t, "bob@example.com")
	carol := e.registerPlayer(t, "carol@example.com")

	shared := e.scan(t, alice, "4006381333931")
	bobsItem := e.scan(t, bob, "0123456789012")
	carolsItem := e.scan(t, carol, "9780201379624")

	firstTrade := uuid.New().String()
	require.NoError(t, e.commandBus.Send(ctx, commands.CreateTradeCommand{
		TradeID:          firstTrade,
		FromPlayerID:     alice,
		ToPlayerID:       bob,
		OfferedItemIDs:   []string{shared},
		RequestedItemIDs: []string{bobsItem},
	}))

	secondTrade := uuid.New().String()
	require.NoError(t, e.commandBus.Send(ctx, commands.CreateTradeCommand{
		TradeID:          secondTrade,
		FromPlayerID:     alice,
		ToPlayerID:       carol,
		OfferedItemIDs:   []string{shared},
		RequestedItemIDs: []string{carolsItem},
	}))

	require.NoError(t, e.commandBus.Send(ctx, commands.AcceptTradeCommand{
		TradeID:  firstTrade,
		CallerID: bob,
	}))

	assert.Equal(t, bob, e.itemOwner(t, shared))
	assert.Equal(t, carol, e.itemOwner(t, carolsItem))

	result, err := e.queryBus.Ask(ctx, queries.GetTradeQuery{TradeID: secondTrade, CallerID: carol})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", result.(*queries.TradeResult).Status)

	// Carol can no longer accept the stale offer
	err = e.commandBus.Send(ctx, commands.AcceptTradeCommand{
		TradeID:  secondTrade,
		CallerID: carol,
	})
	assert.True(t, pkgerrors.IsInvalidState(err))

	incoming, err := e.queryBus.Ask(ctx, queries.ListTradesQuery{
		PlayerID:  carol,
		Direction: ports.TradeDirectionIncoming,
	})
	require.NoError(t, err)
	trades := incoming.([]*queries.TradeResult)
	require.Len(t, trades, 1)
	assert.Equal(t, secondTrade, trades[0].ID)
}
