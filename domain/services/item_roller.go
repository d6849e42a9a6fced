package services

import (
	"math"

	"go.uber.org/zap"

	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/random"
)

const (
	// qualitySkewExponent biases quality rolls toward the low end so high
	// quality stays rare. Tunable; the tests assert distribution shape
	// (median well below 50), not an exact value.
	qualitySkewExponent = 6.5

	// chancePrecision is the number of fractional digits kept on the derived
	// chance value. Presentation choice; bounds are re-clamped after rounding.
	chancePrecision = 12
)

// ItemRoller mints item instances for players: weighted collectable
// selection, skewed quality roll, and chance derivation within the rarity
// tier's range.
type ItemRoller struct {
	rng    random.RNG
	logger *zap.Logger
}

// NewItemRoller creates an item roller
func NewItemRoller(rng random.RNG, logger *zap.Logger) *ItemRoller {
	return &ItemRoller{rng: rng, logger: logger}
}

// RollItem selects a collectable by rarity weight, rolls a quality score and
// derives the find-chance value. A collectable whose rarity id has no table
// entry participates with weight 1 and is logged as a data-integrity warning;
// if such a collectable wins the roll fails with a rarity-not-found error.
func (r *ItemRoller) RollItem(
	playerID valueobjects.PlayerID,
	collectables []*entities.Collectable,
	table entities.RarityTable,
) (*entities.Item, error) {
	winner, err := r.pickCollectable(collectables, table)
	if err != nil {
		return nil, err
	}

	tier, ok := table.ByID(winner.RarityID())
	if !ok {
		return nil, pkgerrors.NewRarityNotFoundError(winner.RarityID())
	}

	quality := r.rollQuality()
	chance := r.deriveChance(quality, tier)

	return entities.NewItem(valueobjects.NewItemID(), playerID, winner.ID(), quality, chance)
}

// RollTestItem is the lenient path used only by test-data seeding: a winning
// collectable with an unknown rarity tier gets chance 0 instead of failing.
func (r *ItemRoller) RollTestItem(
	playerID valueobjects.PlayerID,
	collectables []*entities.Collectable,
	table entities.RarityTable,
) (*entities.Item, error) {
	winner, err := r.pickCollectable(collectables, table)
	if err != nil {
		return nil, err
	}

	quality := r.rollQuality()
	chance := 0.0
	if tier, ok := table.ByID(winner.RarityID()); ok {
		chance = r.deriveChance(quality, tier)
	} else {
		r.logger.Warn("seeding item with zero chance for unknown rarity tier",
			zap.String("collectableID", winner.ID().String()),
			zap.Int("rarityID", winner.RarityID()),
		)
	}

	return entities.NewItem(valueobjects.NewItemID(), playerID, winner.ID(), quality, chance)
}

// pickCollectable runs the weighted roulette across the candidate pool.
// Weight per candidate is its tier's configured range average.
func (r *ItemRoller) pickCollectable(
	collectables []*entities.Collectable,
	table entities.RarityTable,
) (*entities.Collectable, error) {
	if len(collectables) == 0 {
		return nil, pkgerrors.NewNotFoundError("collectable catalog")
	}

	return random.WeightedPick(collectables, func(c *entities.Collectable) float64 {
		tier, ok := table.ByID(c.RarityID())
		if !ok {
			r.logger.Warn("collectable references unknown rarity tier, using fallback weight",
				zap.String("collectableID", c.ID().String()),
				zap.Int("rarityID", c.RarityID()),
			)
			return 1
		}
		return tier.Weight()
	}, r.rng)
}

// rollQuality draws quality = floor(100 * U^k) + 1, clamped to [1, 100]
func (r *ItemRoller) rollQuality() int {
	quality := int(math.Floor(100*math.Pow(r.rng.Float64(), qualitySkewExponent))) + 1
	if quality < 1 {
		return 1
	}
	if quality > 100 {
		return 100
	}
	return quality
}

// deriveChance interpolates the tier's chance range by quality, then applies
// a tiny bounded jitter so two items almost never share an exact chance. The
// result never leaves [minChance, maxChance].
func (r *ItemRoller) deriveChance(quality int, tier entities.RarityTier) float64 {
	scaled := (float64(quality) + r.rng.Float64()) / 101
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 1 {
		scaled = 1
	}

	base := tier.MinChance + scaled*(tier.MaxChance-tier.MinChance)

	jitterBound := math.Min(tier.MaxChance-base, (tier.MaxChance-tier.MinChance)*1e-8)
	if jitterBound > 0 {
		base += r.rng.Float64() * jitterBound
	}

	scale := math.Pow(10, chancePrecision)
	chance := math.Round(base*scale) / scale

	if chance < tier.MinChance {
		chance = tier.MinChance
	}
	if chance > tier.MaxChance {
		chance = tier.MaxChance
	}
	return chance
}
