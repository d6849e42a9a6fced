package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandex-backend/domain/core/entities"
	"scandex-backend/pkg/random"
)

func TestGenerateCollectables_GuaranteesOnePerTier(t *testing.T) {
	table := testRarityTable()
	rng := random.NewSeeded(1)
	gen := NewCatalogGenerator(rng, NewFlavorSource(rng))
	session := NewChanceAssigner(rng).AssignSessionChances(table)

	collectables, err := gen.GenerateCollectables(table, session, 50)
	require.NoError(t, err)
	require.Len(t, collectables, 50)

	perTier := make(map[int]int)
	for _, c := range collectables {
		perTier[c.RarityID()]++
	}
	for _, tier := range table {
		assert.GreaterOrEqual(t, perTier[tier.ID], 1, "tier %d missing from catalog", tier.ID)
	}
}

func TestGenerateCollectables_SmallCountReturnsOnlyGuaranteedSet(t *testing.T) {
	table := testRarityTable()
	rng := random.NewSeeded(2)
	gen := NewCatalogGenerator(rng, NewFlavorSource(rng))
	session := NewChanceAssigner(rng).AssignSessionChances(table)

	collectables, err := gen.GenerateCollectables(table, session, 2)
	require.NoError(t, err)

	// One per session tier even when the requested count is smaller
	require.Len(t, collectables, len(table))
}

func TestGenerateCollectables_FillerFollowsTierWeights(t *testing.T) {
	table := entities.RarityTable{
		{ID: 1, Name: "Common", MinChance: 0.7, MaxChance: 0.9}, // weight 0.8
		{ID: 2, Name: "Rare", MinChance: 0.1, MaxChance: 0.3},   // weight 0.2
	}
	rng := random.NewSeeded(3)
	gen := NewCatalogGenerator(rng, NewFlavorSource(rng))
	session := NewChanceAssigner(rng).AssignSessionChances(table)

	const total = 10002
	collectables, err := gen.GenerateCollectables(table, session, total)
	require.NoError(t, err)
	require.Len(t, collectables, total)

	perTier := make(map[int]int)
	for _, c := range collectables {
		perTier[c.RarityID()]++
	}

	// Filler is 10000 draws at 0.8 vs 0.2, so common should land near
	// four times rare.
	ratio := float64(perTier[1]) / float64(perTier[2])
	assert.InDelta(t, 4.0, ratio, 0.4)
}

func TestGenerateCollectables_MintsNamedCollectables(t *testing.T) {
	table := testRarityTable()
	rng := random.NewSeeded(4)
	gen := NewCatalogGenerator(rng, NewFlavorSource(rng))
	session := NewChanceAssigner(rng).AssignSessionChances(table)

	collectables, err := gen.GenerateCollectables(table, session, 10)
	require.NoError(t, err)

	for _, c := range collectables {
		assert.NotEmpty(t, c.Name())
		assert.NotEmpty(t, c.Description())
		assert.False(t, c.ID().IsZero())
	}
}
