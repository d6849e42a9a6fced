package entities

import (
	"time"

	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
)

// Item is a concrete instance of a Collectable owned by exactly one player.
// Ownership is the only mutable field after creation and changes solely
// through trade settlement.
type Item struct {
	id            valueobjects.ItemID
	playerID      valueobjects.PlayerID
	collectableID valueobjects.CollectableID
	quality       int
	chance        float64
	foundAt       time.Time
}

// NewItem creates an item minted by a roll. Quality must be in [1, 100];
// the chance bounds against the rarity tier are enforced by the roller,
// which knows the tier.
func NewItem(
	id valueobjects.ItemID,
	playerID valueobjects.PlayerID,
	collectableID valueobjects.CollectableID,
	quality int,
	chance float64,
) (*Item, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("item id cannot be empty")
	}
	if playerID.IsZero() {
		return nil, pkgerrors.NewValidationError("item owner cannot be empty")
	}
	if collectableID.IsZero() {
		return nil, pkgerrors.NewValidationError("item collectable cannot be empty")
	}
	if quality < 1 || quality > 100 {
		return nil, pkgerrors.NewValidationError("item quality must be between 1 and 100")
	}
	if chance < 0 {
		return nil, pkgerrors.NewValidationError("item chance cannot be negative")
	}

	return &Item{
		id:            id,
		playerID:      playerID,
		collectableID: collectableID,
		quality:       quality,
		chance:        chance,
		foundAt:       time.Now(),
	}, nil
}

// ReconstructItem rebuilds an item from repository data
func ReconstructItem(
	id valueobjects.ItemID,
	playerID valueobjects.PlayerID,
	collectableID valueobjects.CollectableID,
	quality int,
	chance float64,
	foundAt time.Time,
) (*Item, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("item id cannot be empty")
	}
	if playerID.IsZero() {
		return nil, pkgerrors.NewValidationError("item owner cannot be empty")
	}

	return &Item{
		id:            id,
		playerID:      playerID,
		collectableID: collectableID,
		quality:       quality,
		chance:        chance,
		foundAt:       foundAt,
	}, nil
}

// TransferTo reassigns ownership to another player
func (i *Item) TransferTo(newOwner valueobjects.PlayerID) error {
	if newOwner.IsZero() {
		return pkgerrors.NewValidationError("new owner cannot be empty")
	}
	i.playerID = newOwner
	return nil
}

// IsOwnedBy reports whether the item currently belongs to the given player
func (i *Item) IsOwnedBy(playerID valueobjects.PlayerID) bool {
	return i.playerID.Equals(playerID)
}

// ID returns the item's unique identifier
func (i *Item) ID() valueobjects.ItemID { return i.id }

// PlayerID returns the current owner
func (i *Item) PlayerID() valueobjects.PlayerID { return i.playerID }

// CollectableID returns the template this item was minted from
func (i *Item) CollectableID() valueobjects.CollectableID { return i.collectableID }

// Quality returns the rolled quality score in [1, 100]
func (i *Item) Quality() int { return i.quality }

// Chance returns the derived find-chance value
func (i *Item) Chance() float64 { return i.chance }

// FoundAt returns when the item was acquired
func (i *Item) FoundAt() time.Time { return i.foundAt }
