package entities

import (
	"time"

	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
)

// Collectable is an item template in the catalog. Collectables are created
// once per catalog-generation run and are immutable afterwards; many items
// reference one collectable.
type Collectable struct {
	id          valueobjects.CollectableID
	name        string
	description string
	rarityID    int
	createdAt   time.Time
}

// NewCollectable creates a collectable with a fresh id and timestamp
func NewCollectable(name, description string, rarityID int) (*Collectable, error) {
	if name == "" {
		return nil, pkgerrors.NewValidationError("collectable name cannot be empty")
	}
	if rarityID < 0 {
		return nil, pkgerrors.NewValidationError("collectable rarity id cannot be negative")
	}

	return &Collectable{
		id:          valueobjects.NewCollectableID(),
		name:        name,
		description: description,
		rarityID:    rarityID,
		createdAt:   time.Now(),
	}, nil
}

// ReconstructCollectable rebuilds a collectable from repository data
func ReconstructCollectable(
	id valueobjects.CollectableID,
	name, description string,
	rarityID int,
	createdAt time.Time,
) (*Collectable, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("collectable id cannot be empty")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("collectable name cannot be empty")
	}

	return &Collectable{
		id:          id,
		name:        name,
		description: description,
		rarityID:    rarityID,
		createdAt:   createdAt,
	}, nil
}

// ID returns the collectable's unique identifier
func (c *Collectable) ID() valueobjects.CollectableID { return c.id }

// Name returns the collectable's display name
func (c *Collectable) Name() string { return c.name }

// Description returns the collectable's flavor text
func (c *Collectable) Description() string { return c.description }

// RarityID returns the id of the collectable's rarity tier
func (c *Collectable) RarityID() int { return c.rarityID }

// CreatedAt returns when the collectable was generated
func (c *Collectable) CreatedAt() time.Time { return c.createdAt }
