// Package valueobjects holds the typed identifiers shared across the domain.
package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// PlayerID identifies a registered player
type PlayerID struct {
	value string
}

// NewPlayerID creates a new random PlayerID
func NewPlayerID() PlayerID {
	return PlayerID{value: uuid.New().String()}
}

// PlayerIDFromString creates a PlayerID from an existing string
func PlayerIDFromString(id string) (PlayerID, error) {
	if id == "" {
		return PlayerID{}, errors.New("player ID cannot be empty")
	}
	return PlayerID{value: id}, nil
}

func (id PlayerID) String() string            { return id.value }
func (id PlayerID) Equals(other PlayerID) bool { return id.value == other.value }
func (id PlayerID) IsZero() bool              { return id.value == "" }

// CollectableID identifies an item template in the catalog
type CollectableID struct {
	value string
}

// NewCollectableID creates a new random CollectableID
func NewCollectableID() CollectableID {
	return CollectableID{value: uuid.New().String()}
}

// CollectableIDFromString creates a CollectableID from an existing string
func CollectableIDFromString(id string) (CollectableID, error) {
	if id == "" {
		return CollectableID{}, errors.New("collectable ID cannot be empty")
	}
	return CollectableID{value: id}, nil
}

func (id CollectableID) String() string                 { return id.value }
func (id CollectableID) Equals(other CollectableID) bool { return id.value == other.value }
func (id CollectableID) IsZero() bool                   { return id.value == "" }

// ItemID identifies a concrete item instance owned by a player
type ItemID struct {
	value string
}

// NewItemID creates a new random ItemID
func NewItemID() ItemID {
	return ItemID{value: uuid.New().String()}
}

// ItemIDFromString creates an ItemID from an existing string
func ItemIDFromString(id string) (ItemID, error) {
	if id == "" {
		return ItemID{}, errors.New("item ID cannot be empty")
	}
	return ItemID{value: id}, nil
}

func (id ItemID) String() string          { return id.value }
func (id ItemID) Equals(other ItemID) bool { return id.value == other.value }
func (id ItemID) IsZero() bool            { return id.value == "" }

// TradeID identifies a trade offer between two players
type TradeID struct {
	value string
}

// NewTradeID creates a new random TradeID
func NewTradeID() TradeID {
	return TradeID{value: uuid.New().String()}
}

// TradeIDFromString creates a TradeID from an existing string
func TradeIDFromString(id string) (TradeID, error) {
	if id == "" {
		return TradeID{}, errors.New("trade ID cannot be empty")
	}
	return TradeID{value: id}, nil
}

func (id TradeID) String() string           { return id.value }
func (id TradeID) Equals(other TradeID) bool { return id.value == other.value }
func (id TradeID) IsZero() bool             { return id.value == "" }
