package services

import (
	"scandex-backend/domain/core/entities"
	"scandex-backend/pkg/random"
)

// CatalogGenerator builds the pool of collectable templates for a session.
type CatalogGenerator struct {
	rng    random.RNG
	flavor *FlavorSource
}

// NewCatalogGenerator creates a catalog generator
func NewCatalogGenerator(rng random.RNG, flavor *FlavorSource) *CatalogGenerator {
	return &CatalogGenerator{rng: rng, flavor: flavor}
}

// GenerateCollectables produces totalCount collectables for the session:
// first exactly one per session tier, so every tier has at least one
// obtainable item, then weighted filler. Filler tiers are picked by roulette
// over the configured range average (tier weight), not the drawn session
// chance, which keeps catalog composition stable across sessions. When
// totalCount does not exceed the tier count only the guaranteed set is
// returned.
func (g *CatalogGenerator) GenerateCollectables(
	table entities.RarityTable,
	sessionTiers []entities.SessionTier,
	totalCount int,
) ([]*entities.Collectable, error) {
	collectables := make([]*entities.Collectable, 0, max(totalCount, len(sessionTiers)))

	// Coverage guarantee
	for _, session := range sessionTiers {
		c, err := g.mint(session.ID)
		if err != nil {
			return nil, err
		}
		collectables = append(collectables, c)
	}

	remaining := totalCount - len(sessionTiers)
	if remaining <= 0 {
		return collectables, nil
	}

	// Weighted filler over the tiers present in this session
	tiers := make([]entities.RarityTier, 0, len(sessionTiers))
	for _, session := range sessionTiers {
		if tier, ok := table.ByID(session.ID); ok {
			tiers = append(tiers, tier)
		}
	}

	for i := 0; i < remaining; i++ {
		tier, err := random.WeightedPick(tiers, entities.RarityTier.Weight, g.rng)
		if err != nil {
			return nil, err
		}
		c, err := g.mint(tier.ID)
		if err != nil {
			return nil, err
		}
		collectables = append(collectables, c)
	}

	return collectables, nil
}

func (g *CatalogGenerator) mint(rarityID int) (*entities.Collectable, error) {
	name := g.flavor.Name()
	return entities.NewCollectable(name, g.flavor.Description(name), rarityID)
}
