package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandex-backend/domain/core/entities"
	"scandex-backend/pkg/random"
)

func testRarityTable() entities.RarityTable {
	return entities.RarityTable{
		{ID: 1, Name: "Common", Color: "#9e9e9e", MinChance: 0.5, MaxChance: 0.7},
		{ID: 2, Name: "Rare", Color: "#2196f3", MinChance: 0.2, MaxChance: 0.3},
		{ID: 3, Name: "Legendary", Color: "#ff9800", MinChance: 0.01, MaxChance: 0.05},
	}
}

func TestAssignSessionChances_WithinConfiguredRanges(t *testing.T) {
	table := testRarityTable()
	assigner := NewChanceAssigner(random.NewSeeded(42))

	for run := 0; run < 200; run++ {
		session := assigner.AssignSessionChances(table)
		require.Len(t, session, len(table))

		for i, st := range session {
			tier := table[i]
			assert.Equal(t, tier.ID, st.ID)
			assert.Equal(t, tier.Name, st.Name)
			assert.GreaterOrEqual(t, st.Chance, tier.MinChance)
			assert.LessOrEqual(t, st.Chance, tier.MaxChance)
		}
	}
}

func TestAssignSessionChances_DegenerateRangeYieldsConstant(t *testing.T) {
	table := entities.RarityTable{
		{ID: 1, Name: "Fixed", MinChance: 0.25, MaxChance: 0.25},
	}
	assigner := NewChanceAssigner(random.NewSeeded(7))

	session := assigner.AssignSessionChances(table)
	require.Len(t, session, 1)
	assert.Equal(t, 0.25, session[0].Chance)
}

func TestAssignSessionChances_DrawsVaryAcrossSessions(t *testing.T) {
	table := testRarityTable()
	assigner := NewChanceAssigner(random.NewSeeded(99))

	first := assigner.AssignSessionChances(table)
	second := assigner.AssignSessionChances(table)

	assert.NotEqual(t, first[0].Chance, second[0].Chance)
}
