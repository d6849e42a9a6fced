// Package events defines the domain events published after state changes.
package events

import (
	"time"

	"scandex-backend/domain/core/valueobjects"
)

// SourceBackend is the event source attached to published events
const SourceBackend = "scandex.backend"

// DomainEvent is the base interface for all domain events. Events represent
// something that has already happened.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// ItemFound is raised when a player acquires a new item through a scan roll
type ItemFound struct {
	BaseEvent
	ItemID        string  `json:"item_id"`
	PlayerID      string  `json:"player_id"`
	CollectableID string  `json:"collectable_id"`
	RarityID      int     `json:"rarity_id"`
	Quality       int     `json:"quality"`
	Chance        float64 `json:"chance"`
}

// NewItemFound creates an ItemFound event
func NewItemFound(itemID valueobjects.ItemID, playerID valueobjects.PlayerID, collectableID valueobjects.CollectableID, rarityID, quality int, chance float64, timestamp time.Time) ItemFound {
	return ItemFound{
		BaseEvent: BaseEvent{
			AggregateID: itemID.String(),
			EventType:   "item.found",
			Timestamp:   timestamp,
		},
		ItemID:        itemID.String(),
		PlayerID:      playerID.String(),
		CollectableID: collectableID.String(),
		RarityID:      rarityID,
		Quality:       quality,
		Chance:        chance,
	}
}

// CatalogGenerated is raised after a catalog-generation run persists its pool
type CatalogGenerated struct {
	BaseEvent
	Count int `json:"count"`
}

// NewCatalogGenerated creates a CatalogGenerated event
func NewCatalogGenerated(count int, timestamp time.Time) CatalogGenerated {
	return CatalogGenerated{
		BaseEvent: BaseEvent{
			AggregateID: "catalog",
			EventType:   "catalog.generated",
			Timestamp:   timestamp,
		},
		Count: count,
	}
}

// TradeCreated is raised when a trade offer is persisted in PENDING
type TradeCreated struct {
	BaseEvent
	TradeID      string `json:"trade_id"`
	FromPlayerID string `json:"from_player_id"`
	ToPlayerID   string `json:"to_player_id"`
}

// NewTradeCreated creates a TradeCreated event
func NewTradeCreated(tradeID valueobjects.TradeID, fromPlayerID, toPlayerID valueobjects.PlayerID, timestamp time.Time) TradeCreated {
	return TradeCreated{
		BaseEvent: BaseEvent{
			AggregateID: tradeID.String(),
			EventType:   "trade.created",
			Timestamp:   timestamp,
		},
		TradeID:      tradeID.String(),
		FromPlayerID: fromPlayerID.String(),
		ToPlayerID:   toPlayerID.String(),
	}
}

// TradeResolved is raised when a trade reaches a terminal state
type TradeResolved struct {
	BaseEvent
	TradeID  string `json:"trade_id"`
	Status   string `json:"status"`
	Conflict bool   `json:"conflict,omitempty"`
}

// NewTradeResolved creates a TradeResolved event. Conflict marks trades
// cancelled because another trade's settlement moved their items.
func NewTradeResolved(tradeID valueobjects.TradeID, status string, conflict bool, timestamp time.Time) TradeResolved {
	return TradeResolved{
		BaseEvent: BaseEvent{
			AggregateID: tradeID.String(),
			EventType:   "trade.resolved",
			Timestamp:   timestamp,
		},
		TradeID:  tradeID.String(),
		Status:   status,
		Conflict: conflict,
	}
}
