// Package commands holds the write-side operations of the backend.
package commands

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
)

// RegisterPlayerCommand creates the player record for a verified identity.
// The player id and email come from the auth token, never from the body.
type RegisterPlayerCommand struct {
	PlayerID    string `json:"player_id" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=60"`
}

// Validate validates the command
func (cmd RegisterPlayerCommand) Validate() error {
	if cmd.PlayerID == "" {
		return errors.New("player ID is required")
	}
	if !strings.Contains(cmd.Email, "@") {
		return errors.New("a valid email is required")
	}
	return nil
}

// RegisterPlayerHandler handles the RegisterPlayerCommand
type RegisterPlayerHandler struct {
	playerRepo ports.PlayerRepository
	logger     *zap.Logger
}

// NewRegisterPlayerHandler creates a new handler instance
func NewRegisterPlayerHandler(playerRepo ports.PlayerRepository, logger *zap.Logger) *RegisterPlayerHandler {
	return &RegisterPlayerHandler{playerRepo: playerRepo, logger: logger}
}

// Handle executes the register player command. Registration is idempotent:
// re-registering an existing identity succeeds without changing the record.
func (h *RegisterPlayerHandler) Handle(ctx context.Context, cmd RegisterPlayerCommand) error {
	playerID, err := valueobjects.PlayerIDFromString(cmd.PlayerID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	existing, err := h.playerRepo.GetByID(ctx, playerID)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return err
	}
	if existing != nil {
		h.logger.Debug("player already registered", zap.String("playerID", cmd.PlayerID))
		return nil
	}

	player, err := entities.NewPlayer(playerID, cmd.Email, cmd.DisplayName)
	if err != nil {
		return err
	}

	if err := h.playerRepo.Save(ctx, player); err != nil {
		return err
	}

	h.logger.Info("player registered",
		zap.String("playerID", player.ID().String()),
		zap.String("displayName", player.DisplayName()),
	)
	return nil
}
