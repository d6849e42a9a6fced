package memory

import (
	"context"
	"errors"
	"strings"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
)

// PlayerRepository implements ports.PlayerRepository in memory
type PlayerRepository struct {
	store *Store
}

// NewPlayerRepository creates an in-memory player repository
func NewPlayerRepository(store *Store) ports.PlayerRepository {
	return &PlayerRepository{store: store}
}

// Save persists a player
func (r *PlayerRepository) Save(ctx context.Context, player *entities.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.players[player.ID().String()] = player
	return nil
}

// GetByID retrieves a player by id
func (r *PlayerRepository) GetByID(ctx context.Context, id valueobjects.PlayerID) (*entities.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	player, ok := r.store.players[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("player")
	}
	return player, nil
}

// GetByEmail retrieves a player by email
func (r *PlayerRepository) GetByEmail(ctx context.Context, email string) (*entities.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	email = strings.ToLower(email)
	for _, player := range r.store.players {
		if player.Email() == email {
			return player, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("player")
}

// CollectableRepository implements ports.CollectableRepository in memory
type CollectableRepository struct {
	store *Store
}

// NewCollectableRepository creates an in-memory collectable repository
func NewCollectableRepository(store *Store) ports.CollectableRepository {
	return &CollectableRepository{store: store}
}

// Save persists a single collectable
func (r *CollectableRepository) Save(ctx context.Context, collectable *entities.Collectable) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.collectables[collectable.ID().String()] = collectable
	return nil
}

// SaveBatch persists a generation run's collectables
func (r *CollectableRepository) SaveBatch(ctx context.Context, collectables []*entities.Collectable) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range collectables {
		r.store.collectables[c.ID().String()] = c
	}
	return nil
}

// GetByID retrieves a collectable by id
func (r *CollectableRepository) GetByID(ctx context.Context, id valueobjects.CollectableID) (*entities.Collectable, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.collectables[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("collectable")
	}
	return c, nil
}

// List retrieves the full catalog
func (r *CollectableRepository) List(ctx context.Context) ([]*entities.Collectable, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entities.Collectable, 0, len(r.store.collectables))
	for _, c := range r.store.collectables {
		out = append(out, c)
	}
	return out, nil
}

// ItemRepository implements ports.ItemRepository in memory
type ItemRepository struct {
	store *Store
}

// NewItemRepository creates an in-memory item repository
func NewItemRepository(store *Store) ports.ItemRepository {
	return &ItemRepository{store: store}
}

// Save persists a new item
func (r *ItemRepository) Save(ctx context.Context, item *entities.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.items[item.ID().String()]; exists {
		return pkgerrors.NewConflictError("item already exists")
	}
	r.store.items[item.ID().String()] = copyItem(item)
	return nil
}

// GetByID retrieves an item by id
func (r *ItemRepository) GetByID(ctx context.Context, id valueobjects.ItemID) (*entities.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	item, ok := r.store.items[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("item")
	}
	return copyItem(item), nil
}

// GetByPlayerID retrieves every item owned by a player
func (r *ItemRepository) GetByPlayerID(ctx context.Context, playerID valueobjects.PlayerID) ([]*entities.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entities.Item
	for _, item := range r.store.items {
		if item.IsOwnedBy(playerID) {
			out = append(out, copyItem(item))
		}
	}
	return out, nil
}

// TransferOwnershipWithUoW enlists a conditional ownership rewrite
func (r *ItemRepository) TransferOwnershipWithUoW(ctx context.Context, uow ports.UnitOfWork, item *entities.Item, expectedOwner valueobjects.PlayerID) error {
	memUoW, ok := uow.(*UnitOfWork)
	if !ok {
		return errors.New("invalid unit of work type")
	}

	itemID := item.ID()
	newOwner := item.PlayerID()
	return memUoW.register(operation{
		check: func() error {
			stored, ok := r.store.items[itemID.String()]
			if !ok || !stored.IsOwnedBy(expectedOwner) {
				return pkgerrors.NewOwnershipError(itemID.String(), expectedOwner.String())
			}
			return nil
		},
		apply: func() {
			stored := r.store.items[itemID.String()]
			updated := copyItem(stored)
			_ = updated.TransferTo(newOwner)
			r.store.items[itemID.String()] = updated
		},
	})
}

// TradeRepository implements ports.TradeRepository in memory
type TradeRepository struct {
	store *Store
}

// NewTradeRepository creates an in-memory trade repository
func NewTradeRepository(store *Store) ports.TradeRepository {
	return &TradeRepository{store: store}
}

// Save persists a new trade offer and its item references
func (r *TradeRepository) Save(ctx context.Context, trade *entities.Trade) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.trades[trade.ID().String()]; exists {
		return pkgerrors.NewConflictError("trade already exists")
	}
	r.store.trades[trade.ID().String()] = copyTrade(trade)
	for _, itemID := range trade.AllItemIDs() {
		refs := r.store.itemRefs[itemID.String()]
		if refs == nil {
			refs = make(map[string]bool)
			r.store.itemRefs[itemID.String()] = refs
		}
		refs[trade.ID().String()] = true
	}
	return nil
}

// GetByID retrieves a trade by id
func (r *TradeRepository) GetByID(ctx context.Context, id valueobjects.TradeID) (*entities.Trade, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	trade, ok := r.store.trades[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("trade")
	}
	return copyTrade(trade), nil
}

// GetByPlayerID retrieves trades where the player is on the given side
func (r *TradeRepository) GetByPlayerID(ctx context.Context, playerID valueobjects.PlayerID, direction ports.TradeDirection) ([]*entities.Trade, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entities.Trade
	for _, trade := range r.store.trades {
		outgoing := trade.FromPlayerID().Equals(playerID)
		incoming := trade.ToPlayerID().Equals(playerID)
		switch direction {
		case ports.TradeDirectionOutgoing:
			if outgoing {
				out = append(out, copyTrade(trade))
			}
		case ports.TradeDirectionIncoming:
			if incoming {
				out = append(out, copyTrade(trade))
			}
		case ports.TradeDirectionAll:
			if outgoing || incoming {
				out = append(out, copyTrade(trade))
			}
		}
	}
	return out, nil
}

// FindPendingByItemID retrieves PENDING trades referencing the item
func (r *TradeRepository) FindPendingByItemID(ctx context.Context, itemID valueobjects.ItemID) ([]*entities.Trade, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entities.Trade
	for tradeID := range r.store.itemRefs[itemID.String()] {
		trade, ok := r.store.trades[tradeID]
		if ok && trade.Status() == entities.TradeStatusPending {
			out = append(out, copyTrade(trade))
		}
	}
	return out, nil
}

// UpdateStatus persists a status transition conditioned on expectedStatus
func (r *TradeRepository) UpdateStatus(ctx context.Context, trade *entities.Trade, expectedStatus entities.TradeStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.applyStatus(trade, expectedStatus)
}

// UpdateStatusWithUoW enlists the status transition in the unit of work
func (r *TradeRepository) UpdateStatusWithUoW(ctx context.Context, uow ports.UnitOfWork, trade *entities.Trade, expectedStatus entities.TradeStatus) error {
	memUoW, ok := uow.(*UnitOfWork)
	if !ok {
		return errors.New("invalid unit of work type")
	}

	snapshot := copyTrade(trade)
	return memUoW.register(operation{
		check: func() error {
			stored, ok := r.store.trades[snapshot.ID().String()]
			if !ok {
				return pkgerrors.NewNotFoundError("trade")
			}
			if stored.Status() != expectedStatus {
				return pkgerrors.NewInvalidStateError("settle", string(stored.Status()))
			}
			return nil
		},
		apply: func() {
			r.store.trades[snapshot.ID().String()] = snapshot
		},
	})
}

func (r *TradeRepository) applyStatus(trade *entities.Trade, expectedStatus entities.TradeStatus) error {
	stored, ok := r.store.trades[trade.ID().String()]
	if !ok {
		return pkgerrors.NewNotFoundError("trade")
	}
	if stored.Status() != expectedStatus {
		return pkgerrors.NewInvalidStateError("settle", string(stored.Status()))
	}
	r.store.trades[trade.ID().String()] = copyTrade(trade)
	return nil
}
