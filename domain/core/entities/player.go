package entities

import (
	"strings"
	"time"

	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
)

// Player is a registered account. Identity comes from the auth gateway; the
// backend never stores credentials.
type Player struct {
	id          valueobjects.PlayerID
	email       string
	displayName string
	createdAt   time.Time
}

// NewPlayer creates a player record for a verified identity
func NewPlayer(id valueobjects.PlayerID, email, displayName string) (*Player, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("player id cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.NewValidationError("player email cannot be empty")
	}
	if displayName == "" {
		displayName = email[:strings.Index(email+"@", "@")]
	}

	return &Player{
		id:          id,
		email:       email,
		displayName: displayName,
		createdAt:   time.Now(),
	}, nil
}

// ReconstructPlayer rebuilds a player from repository data
func ReconstructPlayer(id valueobjects.PlayerID, email, displayName string, createdAt time.Time) (*Player, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("player id cannot be empty")
	}

	return &Player{
		id:          id,
		email:       email,
		displayName: displayName,
		createdAt:   createdAt,
	}, nil
}

// ID returns the player's unique identifier
func (p *Player) ID() valueobjects.PlayerID { return p.id }

// Email returns the player's email address
func (p *Player) Email() string { return p.email }

// DisplayName returns the player's display name
func (p *Player) DisplayName() string { return p.displayName }

// CreatedAt returns when the player registered
func (p *Player) CreatedAt() time.Time { return p.createdAt }
