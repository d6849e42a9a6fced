// Package queries holds the read-side operations of the backend.
package queries

import (
	"context"
	"errors"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/utils"
)

// GetPlayerQuery fetches one player's profile
type GetPlayerQuery struct {
	PlayerID string
}

// Validate validates the GetPlayerQuery
func (q GetPlayerQuery) Validate() error {
	if q.PlayerID == "" {
		return errors.New("player ID is required")
	}
	return nil
}

// PlayerResult is the read model for a player
type PlayerResult struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
}

// GetPlayerHandler handles the GetPlayerQuery
type GetPlayerHandler struct {
	playerRepo ports.PlayerRepository
}

// NewGetPlayerHandler creates a new handler instance
func NewGetPlayerHandler(playerRepo ports.PlayerRepository) *GetPlayerHandler {
	return &GetPlayerHandler{playerRepo: playerRepo}
}

// Handle executes the get player query
func (h *GetPlayerHandler) Handle(ctx context.Context, q GetPlayerQuery) (*PlayerResult, error) {
	playerID, err := valueobjects.PlayerIDFromString(q.PlayerID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	player, err := h.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return &PlayerResult{
		ID:          player.ID().String(),
		Email:       player.Email(),
		DisplayName: player.DisplayName(),
		CreatedAt:   utils.FormatTime(player.CreatedAt()),
	}, nil
}
