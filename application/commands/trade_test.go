package commands_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scandex-backend/application/commands"
	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	"scandex-backend/domain/events"
	"scandex-backend/infrastructure/persistence/memory"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/observability"
)

// fixture assembles the command handlers over the in-memory persistence
// layer, which mirrors the conditional-write semantics of the real one.
type fixture struct {
	players      ports.PlayerRepository
	collectables ports.CollectableRepository
	items        ports.ItemRepository
	trades       ports.TradeRepository
	uowFactory   ports.UnitOfWorkFactory
	recorder     *memory.EventRecorder
	metrics      *observability.Metrics
	logger       *zap.Logger

	create *commands.CreateTradeHandler
	accept *commands.AcceptTradeHandler
	reject *commands.RejectTradeHandler
	cancel *commands.CancelTradeHandler
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		players:      memory.NewPlayerRepository(store),
		collectables: memory.NewCollectableRepository(store),
		items:        memory.NewItemRepository(store),
		trades:       memory.NewTradeRepository(store),
		uowFactory:   memory.NewUnitOfWorkFactory(store),
		recorder:     memory.NewEventRecorder(),
		metrics:      observability.NewMetrics("Test", nil),
		logger:       zap.NewNop(),
	}

	f.create = commands.NewCreateTradeHandler(f.players, f.items, f.trades, f.recorder, f.metrics, f.logger)
	f.accept = commands.NewAcceptTradeHandler(f.trades, f.items, f.uowFactory, f.recorder, f.metrics, f.logger)
	f.reject = commands.NewRejectTradeHandler(f.trades, f.recorder, f.metrics, f.logger)
	f.cancel = commands.NewCancelTradeHandler(f.trades, f.recorder, f.metrics, f.logger)
	return f
}

func (f *fixture) newPlayer(t *testing.T, name string) *entities.Player {
	t.Helper()
	player, err := entities.NewPlayer(valueobjects.NewPlayerID(), fmt.Sprintf("%s@example.com", name), name)
	require.NoError(t, err)
	require.NoError(t, f.players.Save(context.Background(), player))
	return player
}

func (f *fixture) newItem(t *testing.T, owner valueobjects.PlayerID) *entities.Item {
	t.Helper()
	collectable, err := entities.NewCollectable("Test Collectable", "a fixture collectable", 1)
	require.NoError(t, err)
	require.NoError(t, f.collectables.Save(context.Background(), collectable))

	item, err := entities.NewItem(valueobjects.NewItemID(), owner, collectable.ID(), 50, 0.6)
	require.NoError(t, err)
	require.NoError(t, f.items.Save(context.Background(), item))
	return item
}

func (f *fixture) openTrade(t *testing.T, from, to *entities.Player, offered, requested []*entities.Item) string {
	t.Helper()
	tradeID := valueobjects.NewTradeID().String()
	cmd := commands.CreateTradeCommand{
		TradeID:          tradeID,
		FromPlayerID:     from.ID().String(),
		ToPlayerID:       to.ID().String(),
		OfferedItemIDs:   itemIDs(offered),
		RequestedItemIDs: itemIDs(requested),
	}
	require.NoError(t, f.create.Handle(context.Background(), cmd))
	return tradeID
}

func (f *fixture) tradeStatus(t *testing.T, tradeID string) entities.TradeStatus {
	t.Helper()
	id, err := valueobjects.TradeIDFromString(tradeID)
	require.NoError(t, err)
	trade, err := f.trades.GetByID(context.Background(), id)
	require.NoError(t, err)
	return trade.Status()
}

func (f *fixture) owner(t *testing.T, item *entities.Item) valueobjects.PlayerID {
	t.Helper()
	stored, err := f.items.GetByID(context.Background(), item.ID())
	require.NoError(t, err)
	return stored.PlayerID()
}

// moveItem reassigns ownership outside any trade, standing in for a
// concurrent settlement.
func (f *fixture) moveItem(t *testing.T, item *entities.Item, from, to valueobjects.PlayerID) {
	t.Helper()
	ctx := context.Background()

	stored, err := f.items.GetByID(ctx, item.ID())
	require.NoError(t, err)
	require.NoError(t, stored.TransferTo(to))

	uow := f.uowFactory.New()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, f.items.TransferOwnershipWithUoW(ctx, uow, stored, from))
	require.NoError(t, uow.Commit(ctx))
}

func itemIDs(items []*entities.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID().String())
	}
	return out
}

func TestCreateTrade_RejectsUnownedOffer(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")
	carol := f.newPlayer(t, "carol")

	notAlices := f.newItem(t, carol.ID())
	bobsItem := f.newItem(t, bob.ID())

	cmd := commands.CreateTradeCommand{
		TradeID:          valueobjects.NewTradeID().String(),
		FromPlayerID:     alice.ID().String(),
		ToPlayerID:       bob.ID().String(),
		OfferedItemIDs:   []string{notAlices.ID().String()},
		RequestedItemIDs: []string{bobsItem.ID().String()},
	}

	err := f.create.Handle(context.Background(), cmd)
	assert.True(t, pkgerrors.IsOwnership(err))
}

func TestCreateTrade_RejectsOversizedBundle(t *testing.T) {
	ids := make([]string, commands.MaxBundleSize+1)
	for i := range ids {
		ids[i] = valueobjects.NewItemID().String()
	}

	cmd := commands.CreateTradeCommand{
		TradeID:          valueobjects.NewTradeID().String(),
		FromPlayerID:     valueobjects.NewPlayerID().String(),
		ToPlayerID:       valueobjects.NewPlayerID().String(),
		OfferedItemIDs:   ids,
		RequestedItemIDs: []string{valueobjects.NewItemID().String()},
	}

	assert.Error(t, cmd.Validate())
}

func TestAcceptTrade_TransfersBothBundles(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")

	offered := []*entities.Item{f.newItem(t, alice.ID()), f.newItem(t, alice.ID())}
	requested := []*entities.Item{f.newItem(t, bob.ID())}
	tradeID := f.openTrade(t, alice, bob, offered, requested)

	err := f.accept.Handle(context.Background(), commands.AcceptTradeCommand{
		TradeID:  tradeID,
		CallerID: bob.ID().String(),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.TradeStatusCompleted, f.tradeStatus(t, tradeID))
	for _, item := range offered {
		assert.True(t, f.owner(t, item).Equals(bob.ID()))
	}
	for _, item := range requested {
		assert.True(t, f.owner(t, item).Equals(alice.ID()))
	}

	resolved := f.recorder.ByType("trade.resolved")
	require.Len(t, resolved, 1)
	event := resolved[0].(events.TradeResolved)
	assert.Equal(t, tradeID, event.TradeID)
	assert.Equal(t, string(entities.TradeStatusCompleted), event.Status)
	assert.False(t, event.Conflict)
}

func TestAcceptTrade_OnlyReceiverCanAccept(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")

	offered := []*entities.Item{f.newItem(t, alice.ID())}
	requested := []*entities.Item{f.newItem(t, bob.ID())}
	tradeID := f.openTrade(t, alice, bob, offered, requested)

	err := f.accept.Handle(context.Background(), commands.AcceptTradeCommand{
		TradeID:  tradeID,
		CallerID: alice.ID().String(),
	})
	assert.True(t, pkgerrors.IsForbidden(err))
	assert.Equal(t, entities.TradeStatusPending, f.tradeStatus(t, tradeID))
	assert.True(t, f.owner(t, offered[0]).Equals(alice.ID()))
}

func TestAcceptTrade_AlreadyResolvedReportsState(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")

	offered := []*entities.Item{f.newItem(t, alice.ID())}
	requested := []*entities.Item{f.newItem(t, bob.ID())}
	tradeID := f.openTrade(t, alice, bob, offered, requested)

	cmd := commands.AcceptTradeCommand{TradeID: tradeID, CallerID: bob.ID().String()}
	require.NoError(t, f.accept.Handle(context.Background(), cmd))

	err := f.accept.Handle(context.Background(), cmd)
	assert.True(t, pkgerrors.IsInvalidState(err))
}

func TestAcceptTrade_StaleOwnershipMovesNothing(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")
	carol := f.newPlayer(t, "carol")

	offered := []*entities.Item{f.newItem(t, alice.ID()), f.newItem(t, alice.ID())}
	requested := []*entities.Item{f.newItem(t, bob.ID())}
	tradeID := f.openTrade(t, alice, bob, offered, requested)

	// One offered item leaves Alice's collection while the offer is open.
	f.moveItem(t, offered[1], alice.ID(), carol.ID())

	err := f.accept.Handle(context.Background(), commands.AcceptTradeCommand{
		TradeID:  tradeID,
		CallerID: bob.ID().String(),
	})
	assert.True(t, pkgerrors.IsOwnership(err))

	assert.Equal(t, entities.TradeStatusPending, f.tradeStatus(t, tradeID))
	assert.True(t, f.owner(t, offered[0]).Equals(alice.ID()))
	assert.True(t, f.owner(t, offered[1]).Equals(carol.ID()))
	assert.True(t, f.owner(t, requested[0]).Equals(bob.ID()))
}

func TestAcceptTrade_CancelsConflictingOffers(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")
	carol := f.newPlayer(t, "carol")

	shared := f.newItem(t, alice.ID())
	bobsItem := f.newItem(t, bob.ID())
	carolsItem := f.newItem(t, carol.ID())

	settledID := f.openTrade(t, alice, bob, []*entities.Item{shared}, []*entities.Item{bobsItem})
	conflictingID := f.openTrade(t, alice, carol, []*entities.Item{shared}, []*entities.Item{carolsItem})

	err := f.accept.Handle(context.Background(), commands.AcceptTradeCommand{
		TradeID:  settledID,
		CallerID: bob.ID().String(),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.TradeStatusCompleted, f.tradeStatus(t, settledID))
	assert.Equal(t, entities.TradeStatusCancelled, f.tradeStatus(t, conflictingID))
	assert.True(t, f.owner(t, carolsItem).Equals(carol.ID()))

	var conflictEvents []events.TradeResolved
	for _, e := range f.recorder.ByType("trade.resolved") {
		resolved := e.(events.TradeResolved)
		if resolved.Conflict {
			conflictEvents = append(conflictEvents, resolved)
		}
	}
	require.Len(t, conflictEvents, 1)
	assert.Equal(t, conflictingID, conflictEvents[0].TradeID)
	assert.Equal(t, string(entities.TradeStatusCancelled), conflictEvents[0].Status)
}

func TestRejectTrade(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")

	offered := []*entities.Item{f.newItem(t, alice.ID())}
	requested := []*entities.Item{f.newItem(t, bob.ID())}
	tradeID := f.openTrade(t, alice, bob, offered, requested)

	err := f.reject.Handle(context.Background(), commands.RejectTradeCommand{
		TradeID:  tradeID,
		CallerID: alice.ID().String(),
	})
	assert.True(t, pkgerrors.IsForbidden(err), "offering player cannot reject")

	err = f.reject.Handle(context.Background(), commands.RejectTradeCommand{
		TradeID:  tradeID,
		CallerID: bob.ID().String(),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.TradeStatusRejected, f.tradeStatus(t, tradeID))
	assert.True(t, f.owner(t, offered[0]).Equals(alice.ID()))
	assert.True(t, f.owner(t, requested[0]).Equals(bob.ID()))
}

func TestCancelTrade(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")

	offered := []*entities.Item{f.newItem(t, alice.ID())}
	requested := []*entities.Item{f.newItem(t, bob.ID())}
	tradeID := f.openTrade(t, alice, bob, offered, requested)

	err := f.cancel.Handle(context.Background(), commands.CancelTradeCommand{
		TradeID:  tradeID,
		CallerID: bob.ID().String(),
	})
	assert.True(t, pkgerrors.IsForbidden(err), "receiving player cannot cancel")

	err = f.cancel.Handle(context.Background(), commands.CancelTradeCommand{
		TradeID:  tradeID,
		CallerID: alice.ID().String(),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.TradeStatusCancelled, f.tradeStatus(t, tradeID))
}

func TestResolveTrade_TerminalStateIsFinal(t *testing.T) {
	f := newFixture()
	alice := f.newPlayer(t, "alice")
	bob := f.newPlayer(t, "bob")

	offered := []*entities.Item{f.newItem(t, alice.ID())}
	requested := []*entities.Item{f.newItem(t, bob.ID())}
	tradeID := f.openTrade(t, alice, bob, offered, requested)

	require.NoError(t, f.reject.Handle(context.Background(), commands.RejectTradeCommand{
		TradeID:  tradeID,
		CallerID: bob.ID().String(),
	}))

	err := f.cancel.Handle(context.Background(), commands.CancelTradeCommand{
		TradeID:  tradeID,
		CallerID: alice.ID().String(),
	})
	assert.True(t, pkgerrors.IsInvalidState(err))
	assert.Equal(t, entities.TradeStatusRejected, f.tradeStatus(t, tradeID))
}
