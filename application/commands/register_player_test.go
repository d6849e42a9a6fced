package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scandex-backend/application/commands"
	"scandex-backend/domain/core/valueobjects"
	"scandex-backend/infrastructure/persistence/memory"
)

func TestRegisterPlayer(t *testing.T) {
	store := memory.NewStore()
	players := memory.NewPlayerRepository(store)
	handler := commands.NewRegisterPlayerHandler(players, zap.NewNop())

	playerID := valueobjects.NewPlayerID()
	cmd := commands.RegisterPlayerCommand{
		PlayerID:    playerID.String(),
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
	}

	require.NoError(t, handler.Handle(context.Background(), cmd))

	player, err := players.GetByID(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", player.Email())
	assert.Equal(t, "Alice", player.DisplayName())
}

func TestRegisterPlayer_Idempotent(t *testing.T) {
	store := memory.NewStore()
	players := memory.NewPlayerRepository(store)
	handler := commands.NewRegisterPlayerHandler(players, zap.NewNop())

	playerID := valueobjects.NewPlayerID()
	cmd := commands.RegisterPlayerCommand{
		PlayerID:    playerID.String(),
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}

	require.NoError(t, handler.Handle(context.Background(), cmd))
	first, err := players.GetByID(context.Background(), playerID)
	require.NoError(t, err)

	cmd.DisplayName = "Someone Else"
	require.NoError(t, handler.Handle(context.Background(), cmd))

	second, err := players.GetByID(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, first.DisplayName(), second.DisplayName(), "re-registration must not change the record")
}

func TestRegisterPlayer_DefaultsDisplayName(t *testing.T) {
	store := memory.NewStore()
	players := memory.NewPlayerRepository(store)
	handler := commands.NewRegisterPlayerHandler(players, zap.NewNop())

	playerID := valueobjects.NewPlayerID()
	cmd := commands.RegisterPlayerCommand{
		PlayerID: playerID.String(),
		Email:    "bob@example.com",
	}

	require.NoError(t, handler.Handle(context.Background(), cmd))

	player, err := players.GetByID(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, "bob", player.DisplayName())
}
