package services

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/random"
)

func mustCollectable(t *testing.T, name string, rarityID int) *entities.Collectable {
	t.Helper()
	c, err := entities.NewCollectable(name, name+" description", rarityID)
	require.NoError(t, err)
	return c
}

func TestRollItem_QualityAndChanceWithinBounds(t *testing.T) {
	table := testRarityTable()
	roller := NewItemRoller(random.NewSeeded(11), zap.NewNop())
	player := valueobjects.NewPlayerID()

	catalog := []*entities.Collectable{
		mustCollectable(t, "Gleaming Spyglass", 1),
		mustCollectable(t, "Crooked Talisman", 2),
		mustCollectable(t, "Celestial Orb", 3),
	}

	byID := make(map[string]*entities.Collectable)
	for _, c := range catalog {
		byID[c.ID().String()] = c
	}

	for i := 0; i < 5000; i++ {
		item, err := roller.RollItem(player, catalog, table)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, item.Quality(), 1)
		assert.LessOrEqual(t, item.Quality(), 100)

		won := byID[item.CollectableID().String()]
		require.NotNil(t, won)
		tier, ok := table.ByID(won.RarityID())
		require.True(t, ok)
		assert.GreaterOrEqual(t, item.Chance(), tier.MinChance)
		assert.LessOrEqual(t, item.Chance(), tier.MaxChance)
		assert.True(t, item.IsOwnedBy(player))
	}
}

func TestRollItem_QualityDistributionSkewsLow(t *testing.T) {
	table := testRarityTable()
	roller := NewItemRoller(random.NewSeeded(12), zap.NewNop())
	player := valueobjects.NewPlayerID()
	catalog := []*entities.Collectable{mustCollectable(t, "Dusty Coin", 1)}

	qualities := make([]int, 0, 2000)
	for i := 0; i < 2000; i++ {
		item, err := roller.RollItem(player, catalog, table)
		require.NoError(t, err)
		qualities = append(qualities, item.Quality())
	}

	sort.Ints(qualities)
	median := qualities[len(qualities)/2]
	assert.Less(t, median, 10, "quality should skew heavily toward the low end")
	assert.GreaterOrEqual(t, qualities[0], 1)
	assert.LessOrEqual(t, qualities[len(qualities)-1], 100)
}

func TestRollItem_SelectionFollowsTierWeights(t *testing.T) {
	table := entities.RarityTable{
		{ID: 1, Name: "Common", MinChance: 0.4, MaxChance: 0.6}, // weight 0.5
		{ID: 2, Name: "Rare", MinChance: 0.05, MaxChance: 0.15}, // weight 0.1
	}
	roller := NewItemRoller(random.NewSeeded(13), zap.NewNop())
	player := valueobjects.NewPlayerID()

	common := mustCollectable(t, "Polished Marble", 1)
	rare := mustCollectable(t, "Luminous Prism", 2)
	catalog := []*entities.Collectable{common, rare}

	counts := map[string]int{}
	const rolls = 60000
	for i := 0; i < rolls; i++ {
		item, err := roller.RollItem(player, catalog, table)
		require.NoError(t, err)
		counts[item.CollectableID().String()]++
	}

	// Weights 0.5 vs 0.1 give the common template five of every six wins
	commonShare := float64(counts[common.ID().String()]) / float64(rolls)
	assert.InDelta(t, 5.0/6.0, commonShare, 0.01)
}

func TestRollItem_UnknownTierOnWinnerIsFatal(t *testing.T) {
	table := testRarityTable()
	roller := NewItemRoller(random.NewSeeded(14), zap.NewNop())
	player := valueobjects.NewPlayerID()

	// The only candidate references a tier the table does not define, so it
	// always wins with the fallback weight and the roll must fail.
	catalog := []*entities.Collectable{mustCollectable(t, "Orphaned Sigil", 99)}

	_, err := roller.RollItem(player, catalog, table)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRarityNotFound(err))
}

func TestRollItem_EmptyCatalog(t *testing.T) {
	roller := NewItemRoller(random.NewSeeded(15), zap.NewNop())
	_, err := roller.RollItem(valueobjects.NewPlayerID(), nil, testRarityTable())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRollTestItem_UnknownTierGetsZeroChance(t *testing.T) {
	table := testRarityTable()
	roller := NewItemRoller(random.NewSeeded(16), zap.NewNop())
	player := valueobjects.NewPlayerID()
	catalog := []*entities.Collectable{mustCollectable(t, "Orphaned Sigil", 99)}

	item, err := roller.RollTestItem(player, catalog, table)
	require.NoError(t, err)
	assert.Equal(t, 0.0, item.Chance())
	assert.GreaterOrEqual(t, item.Quality(), 1)
}
