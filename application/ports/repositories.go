package ports

import (
	"context"
	"time"

	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	"scandex-backend/domain/events"
)

// PlayerRepository defines the interface for player persistence
type PlayerRepository interface {
	// Save persists a player (create or update)
	Save(ctx context.Context, player *entities.Player) error

	// GetByID retrieves a player by id
	GetByID(ctx context.Context, id valueobjects.PlayerID) (*entities.Player, error)

	// GetByEmail retrieves a player by email
	GetByEmail(ctx context.Context, email string) (*entities.Player, error)
}

// RarityRepository provides the configured rarity table. The table is static
// for a process lifetime; implementations may serve it from config or from a
// persisted copy.
type RarityRepository interface {
	// Table returns the full rarity table
	Table(ctx context.Context) (entities.RarityTable, error)
}

// CollectableRepository defines the interface for catalog persistence
type CollectableRepository interface {
	// Save persists a single collectable
	Save(ctx context.Context, collectable *entities.Collectable) error

	// SaveBatch persists a generation run's collectables
	SaveBatch(ctx context.Context, collectables []*entities.Collectable) error

	// GetByID retrieves a collectable by id
	GetByID(ctx context.Context, id valueobjects.CollectableID) (*entities.Collectable, error)

	// List retrieves the full catalog
	List(ctx context.Context) ([]*entities.Collectable, error)
}

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// Save persists a new item
	Save(ctx context.Context, item *entities.Item) error

	// GetByID retrieves an item by id
	GetByID(ctx context.Context, id valueobjects.ItemID) (*entities.Item, error)

	// GetByPlayerID retrieves every item owned by a player
	GetByPlayerID(ctx context.Context, playerID valueobjects.PlayerID) ([]*entities.Item, error)

	// TransferOwnershipWithUoW enlists an ownership transfer in the unit of
	// work, conditioned on the item still being owned by expectedOwner when
	// the transaction settles. The condition failing surfaces as an ownership
	// error from Commit.
	TransferOwnershipWithUoW(ctx context.Context, uow UnitOfWork, item *entities.Item, expectedOwner valueobjects.PlayerID) error
}

// TradeDirection selects which side of a trade a player query matches
type TradeDirection string

const (
	TradeDirectionIncoming TradeDirection = "incoming"
	TradeDirectionOutgoing TradeDirection = "outgoing"
	TradeDirectionAll      TradeDirection = "all"
)

// TradeRepository defines the interface for trade persistence. Saving a trade
// also writes one item-reference row per referenced item so pending trades
// touching a given item can be found without scanning.
type TradeRepository interface {
	// Save persists a new trade offer together with its item-reference rows
	Save(ctx context.Context, trade *entities.Trade) error

	// GetByID retrieves a trade by id
	GetByID(ctx context.Context, id valueobjects.TradeID) (*entities.Trade, error)

	// GetByPlayerID retrieves trades where the player is on the given side
	GetByPlayerID(ctx context.Context, playerID valueobjects.PlayerID, direction TradeDirection) ([]*entities.Trade, error)

	// FindPendingByItemID retrieves PENDING trades referencing the item
	FindPendingByItemID(ctx context.Context, itemID valueobjects.ItemID) ([]*entities.Trade, error)

	// UpdateStatus persists a status transition, conditioned on the stored
	// trade still being in expectedStatus. A lost race surfaces as an
	// invalid-state error.
	UpdateStatus(ctx context.Context, trade *entities.Trade, expectedStatus entities.TradeStatus) error

	// UpdateStatusWithUoW enlists the status transition in the unit of work
	// under the same condition as UpdateStatus
	UpdateStatusWithUoW(ctx context.Context, uow UnitOfWork, trade *entities.Trade, expectedStatus entities.TradeStatus) error
}

// UnitOfWork defines an atomic write boundary. Enlisted writes are buffered
// and applied together at Commit; any failed condition aborts all of them.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit applies all enlisted writes atomically
	Commit(ctx context.Context) error

	// Rollback discards enlisted writes. No-op after a successful commit.
	Rollback() error
}

// UnitOfWorkFactory mints one UnitOfWork per settlement attempt. Units of
// work are single-use; handlers must not share them across requests.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// ReleaseFunc releases a held lock
type ReleaseFunc func(ctx context.Context) error

// LockManager provides cross-process mutual exclusion for operations that
// must not run concurrently, such as catalog generation
type LockManager interface {
	// Acquire takes the named lock or fails with a conflict error. The lock
	// self-expires after duration.
	Acquire(ctx context.Context, resource, owner string, duration time.Duration) (ReleaseFunc, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
