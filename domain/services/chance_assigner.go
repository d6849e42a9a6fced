// Package services holds the domain logic for catalog generation and item
// acquisition rolling.
package services

import (
	"scandex-backend/domain/core/entities"
	"scandex-backend/pkg/random"
)

// ChanceAssigner draws one concrete probability per rarity tier for a single
// catalog-generation session.
type ChanceAssigner struct {
	rng random.RNG
}

// NewChanceAssigner creates a chance assigner with the given random source
func NewChanceAssigner(rng random.RNG) *ChanceAssigner {
	return &ChanceAssigner{rng: rng}
}

// AssignSessionChances samples uniformly within each tier's configured
// [minChance, maxChance] range, preserving tier identity. A degenerate range
// (min == max) yields that constant. Nothing is persisted; the rarity table
// stays canonical.
func (a *ChanceAssigner) AssignSessionChances(tiers entities.RarityTable) []entities.SessionTier {
	session := make([]entities.SessionTier, 0, len(tiers))
	for _, tier := range tiers {
		session = append(session, entities.SessionTier{
			ID:     tier.ID,
			Name:   tier.Name,
			Chance: tier.MinChance + a.rng.Float64()*(tier.MaxChance-tier.MinChance),
		})
	}
	return session
}
