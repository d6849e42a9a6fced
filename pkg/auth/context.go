package auth

import (
	"context"

	pkgerrors "scandex-backend/pkg/errors"
)

type contextKey string

const playerContextKey contextKey = "playerContext"

// PlayerContext is the resolved caller identity attached to each
// authenticated request
type PlayerContext struct {
	PlayerID string
	Email    string
	Roles    []string
}

// HasRole reports whether the caller carries the given role
func (p *PlayerContext) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// SetPlayerInContext attaches the caller identity to the request context
func SetPlayerInContext(ctx context.Context, player *PlayerContext) context.Context {
	return context.WithValue(ctx, playerContextKey, player)
}

// GetPlayerFromContext extracts the caller identity from the request context
func GetPlayerFromContext(ctx context.Context) (*PlayerContext, error) {
	player, ok := ctx.Value(playerContextKey).(*PlayerContext)
	if !ok || player == nil || player.PlayerID == "" {
		return nil, pkgerrors.NewUnauthorizedError("no resolved caller identity in context")
	}
	return player, nil
}
