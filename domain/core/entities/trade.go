package entities

import (
	"time"

	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
)

// TradeStatus represents the lifecycle state of a trade offer
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "PENDING"
	TradeStatusCompleted TradeStatus = "COMPLETED"
	TradeStatusRejected  TradeStatus = "REJECTED"
	TradeStatusCancelled TradeStatus = "CANCELLED"
)

// IsTerminal reports whether the status is final
func (s TradeStatus) IsTerminal() bool {
	return s == TradeStatusCompleted || s == TradeStatusRejected || s == TradeStatusCancelled
}

// Trade is an offer from one player to another to exchange item bundles.
// It starts PENDING and transitions to exactly one terminal state. Trades
// reference items by id; they never own them.
type Trade struct {
	id               valueobjects.TradeID
	fromPlayerID     valueobjects.PlayerID
	toPlayerID       valueobjects.PlayerID
	offeredItemIDs   []valueobjects.ItemID
	requestedItemIDs []valueobjects.ItemID
	status           TradeStatus
	createdAt        time.Time
	resolvedAt       *time.Time
}

// NewTrade creates a PENDING trade offer. Both item lists must be non-empty
// and a player cannot trade with themselves. Ownership of the referenced
// items is validated by the application layer against the persistence
// gateway, not here.
func NewTrade(
	id valueobjects.TradeID,
	fromPlayerID, toPlayerID valueobjects.PlayerID,
	offeredItemIDs, requestedItemIDs []valueobjects.ItemID,
) (*Trade, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("trade id cannot be empty")
	}
	if fromPlayerID.IsZero() || toPlayerID.IsZero() {
		return nil, pkgerrors.NewValidationError("trade requires both players")
	}
	if fromPlayerID.Equals(toPlayerID) {
		return nil, pkgerrors.NewValidationError("cannot trade with yourself")
	}
	if len(offeredItemIDs) == 0 {
		return nil, pkgerrors.NewValidationError("trade must offer at least one item")
	}
	if len(requestedItemIDs) == 0 {
		return nil, pkgerrors.NewValidationError("trade must request at least one item")
	}

	return &Trade{
		id:               id,
		fromPlayerID:     fromPlayerID,
		toPlayerID:       toPlayerID,
		offeredItemIDs:   offeredItemIDs,
		requestedItemIDs: requestedItemIDs,
		status:           TradeStatusPending,
		createdAt:        time.Now(),
	}, nil
}

// ReconstructTrade rebuilds a trade from repository data
func ReconstructTrade(
	id valueobjects.TradeID,
	fromPlayerID, toPlayerID valueobjects.PlayerID,
	offeredItemIDs, requestedItemIDs []valueobjects.ItemID,
	status TradeStatus,
	createdAt time.Time,
	resolvedAt *time.Time,
) (*Trade, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("trade id cannot be empty")
	}

	return &Trade{
		id:               id,
		fromPlayerID:     fromPlayerID,
		toPlayerID:       toPlayerID,
		offeredItemIDs:   offeredItemIDs,
		requestedItemIDs: requestedItemIDs,
		status:           status,
		createdAt:        createdAt,
		resolvedAt:       resolvedAt,
	}, nil
}

// EnsureAcceptable verifies that the caller may settle this trade: only the
// receiving player can accept, and only while the trade is PENDING. Ownership
// re-validation happens afterwards so a non-PENDING trade reports its state
// rather than a stale ownership failure.
func (t *Trade) EnsureAcceptable(callerID valueobjects.PlayerID) error {
	if !callerID.Equals(t.toPlayerID) {
		return pkgerrors.NewForbiddenError("only the receiving player can accept a trade")
	}
	if t.status != TradeStatusPending {
		return pkgerrors.NewInvalidStateError("accept", string(t.status))
	}
	return nil
}

// Complete marks the trade COMPLETED. Must only be called after
// EnsureAcceptable and ownership re-validation have passed.
func (t *Trade) Complete() error {
	if t.status != TradeStatusPending {
		return pkgerrors.NewInvalidStateError("accept", string(t.status))
	}
	now := time.Now()
	t.status = TradeStatusCompleted
	t.resolvedAt = &now
	return nil
}

// Reject marks the trade REJECTED. Only the receiving player can reject a
// PENDING trade. No items move.
func (t *Trade) Reject(callerID valueobjects.PlayerID) error {
	if !callerID.Equals(t.toPlayerID) {
		return pkgerrors.NewForbiddenError("only the receiving player can reject a trade")
	}
	if t.status != TradeStatusPending {
		return pkgerrors.NewInvalidStateError("reject", string(t.status))
	}
	now := time.Now()
	t.status = TradeStatusRejected
	t.resolvedAt = &now
	return nil
}

// Cancel marks the trade CANCELLED. Only the offering player can cancel a
// PENDING trade. No items move.
func (t *Trade) Cancel(callerID valueobjects.PlayerID) error {
	if !callerID.Equals(t.fromPlayerID) {
		return pkgerrors.NewForbiddenError("only the offering player can cancel a trade")
	}
	if t.status != TradeStatusPending {
		return pkgerrors.NewInvalidStateError("cancel", string(t.status))
	}
	now := time.Now()
	t.status = TradeStatusCancelled
	t.resolvedAt = &now
	return nil
}

// CancelForConflict marks a PENDING trade CANCELLED because another trade
// moved one of its referenced items. System-initiated, no caller check.
func (t *Trade) CancelForConflict() error {
	if t.status != TradeStatusPending {
		return pkgerrors.NewInvalidStateError("cancel", string(t.status))
	}
	now := time.Now()
	t.status = TradeStatusCancelled
	t.resolvedAt = &now
	return nil
}

// References reports whether the trade mentions the given item on either side
func (t *Trade) References(itemID valueobjects.ItemID) bool {
	for _, id := range t.offeredItemIDs {
		if id.Equals(itemID) {
			return true
		}
	}
	for _, id := range t.requestedItemIDs {
		if id.Equals(itemID) {
			return true
		}
	}
	return false
}

// AllItemIDs returns every item id the trade references
func (t *Trade) AllItemIDs() []valueobjects.ItemID {
	all := make([]valueobjects.ItemID, 0, len(t.offeredItemIDs)+len(t.requestedItemIDs))
	all = append(all, t.offeredItemIDs...)
	all = append(all, t.requestedItemIDs...)
	return all
}

// ID returns the trade's unique identifier
func (t *Trade) ID() valueobjects.TradeID { return t.id }

// FromPlayerID returns the offering player
func (t *Trade) FromPlayerID() valueobjects.PlayerID { return t.fromPlayerID }

// ToPlayerID returns the receiving player
func (t *Trade) ToPlayerID() valueobjects.PlayerID { return t.toPlayerID }

// OfferedItemIDs returns the items offered by the from-player
func (t *Trade) OfferedItemIDs() []valueobjects.ItemID {
	ids := make([]valueobjects.ItemID, len(t.offeredItemIDs))
	copy(ids, t.offeredItemIDs)
	return ids
}

// RequestedItemIDs returns the items requested from the to-player
func (t *Trade) RequestedItemIDs() []valueobjects.ItemID {
	ids := make([]valueobjects.ItemID, len(t.requestedItemIDs))
	copy(ids, t.requestedItemIDs)
	return ids
}

// Status returns the trade's current lifecycle state
func (t *Trade) Status() TradeStatus { return t.status }

// CreatedAt returns when the offer was made
func (t *Trade) CreatedAt() time.Time { return t.createdAt }

// ResolvedAt returns when the trade reached a terminal state, if it has
func (t *Trade) ResolvedAt() *time.Time { return t.resolvedAt }
