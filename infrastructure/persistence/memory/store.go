// Package memory implements the persistence gateways in process memory. It
// mirrors the conditional-write semantics of the DynamoDB implementation and
// backs local development and the application-layer tests.
package memory

import (
	"sync"

	"scandex-backend/domain/core/entities"
)

// Store is the shared in-memory table
type Store struct {
	mu           sync.RWMutex
	players      map[string]*entities.Player
	collectables map[string]*entities.Collectable
	items        map[string]*entities.Item
	trades       map[string]*entities.Trade
	itemRefs     map[string]map[string]bool // item id -> trade ids referencing it
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		players:      make(map[string]*entities.Player),
		collectables: make(map[string]*entities.Collectable),
		items:        make(map[string]*entities.Item),
		trades:       make(map[string]*entities.Trade),
		itemRefs:     make(map[string]map[string]bool),
	}
}

// copyItem snapshots an item so callers cannot mutate stored state
func copyItem(item *entities.Item) *entities.Item {
	clone, _ := entities.ReconstructItem(item.ID(), item.PlayerID(), item.CollectableID(), item.Quality(), item.Chance(), item.FoundAt())
	return clone
}

// copyTrade snapshots a trade
func copyTrade(trade *entities.Trade) *entities.Trade {
	clone, _ := entities.ReconstructTrade(
		trade.ID(), trade.FromPlayerID(), trade.ToPlayerID(),
		trade.OfferedItemIDs(), trade.RequestedItemIDs(),
		trade.Status(), trade.CreatedAt(), trade.ResolvedAt(),
	)
	return clone
}
