package entities

import (
	"fmt"

	pkgerrors "scandex-backend/pkg/errors"
)

// RarityTier is one bucket of the static rarity table. The table is loaded
// at startup and never mutated during a process lifetime; tiers are ordered
// from most common to rarest by convention.
type RarityTier struct {
	ID        int     `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Color     string  `yaml:"color" json:"color"`
	MinChance float64 `yaml:"minChance" json:"minChance"`
	MaxChance float64 `yaml:"maxChance" json:"maxChance"`
}

// Weight is the tier's selection weight: the average of the configured
// chance range. Catalog composition uses this rather than the drawn session
// chance so the pool stays stable across sessions.
func (t RarityTier) Weight() float64 {
	return (t.MinChance + t.MaxChance) / 2
}

// Validate checks the tier's internal consistency
func (t RarityTier) Validate() error {
	if t.Name == "" {
		return pkgerrors.NewValidationError(fmt.Sprintf("rarity tier %d has no name", t.ID))
	}
	if t.MinChance < 0 || t.MaxChance < t.MinChance {
		return pkgerrors.NewValidationError(fmt.Sprintf("rarity tier %d has an invalid chance range [%f, %f]", t.ID, t.MinChance, t.MaxChance))
	}
	return nil
}

// RarityTable is the full set of configured tiers
type RarityTable []RarityTier

// ByID looks up a tier by its id
func (rt RarityTable) ByID(id int) (RarityTier, bool) {
	for _, tier := range rt {
		if tier.ID == id {
			return tier, true
		}
	}
	return RarityTier{}, false
}

// Validate checks every tier and rejects duplicate ids
func (rt RarityTable) Validate() error {
	if len(rt) == 0 {
		return pkgerrors.NewValidationError("rarity table is empty")
	}
	seen := make(map[int]bool, len(rt))
	for _, tier := range rt {
		if err := tier.Validate(); err != nil {
			return err
		}
		if seen[tier.ID] {
			return pkgerrors.NewValidationError(fmt.Sprintf("duplicate rarity tier id %d", tier.ID))
		}
		seen[tier.ID] = true
	}
	return nil
}

// SessionTier is one concrete probability drawn per tier for a single
// catalog-generation run. It is never persisted; the rarity table stays
// canonical.
type SessionTier struct {
	ID     int
	Name   string
	Chance float64
}
