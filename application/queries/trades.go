package queries

import (
	"context"
	"errors"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/utils"
)

// GetTradeQuery fetches one trade. Only the two participants may view it.
type GetTradeQuery struct {
	TradeID  string
	CallerID string
}

// Validate validates the GetTradeQuery
func (q GetTradeQuery) Validate() error {
	if q.TradeID == "" {
		return errors.New("trade ID is required")
	}
	if q.CallerID == "" {
		return errors.New("caller ID is required")
	}
	return nil
}

// ListTradesQuery fetches a player's trades on the given side
type ListTradesQuery struct {
	PlayerID  string
	Direction ports.TradeDirection
}

// Validate validates the ListTradesQuery
func (q ListTradesQuery) Validate() error {
	if q.PlayerID == "" {
		return errors.New("player ID is required")
	}
	switch q.Direction {
	case ports.TradeDirectionIncoming, ports.TradeDirectionOutgoing, ports.TradeDirectionAll:
		return nil
	default:
		return errors.New("direction must be incoming, outgoing or all")
	}
}

// TradeResult is the read model for a trade
type TradeResult struct {
	ID               string   `json:"id"`
	FromPlayerID     string   `json:"fromPlayerId"`
	ToPlayerID       string   `json:"toPlayerId"`
	OfferedItemIDs   []string `json:"offeredItemIds"`
	RequestedItemIDs []string `json:"requestedItemIds"`
	Status           string   `json:"status"`
	CreatedAt        string   `json:"createdAt"`
	ResolvedAt       string   `json:"resolvedAt,omitempty"`
}

// TradeQueryHandler handles GetTradeQuery and ListTradesQuery
type TradeQueryHandler struct {
	tradeRepo ports.TradeRepository
}

// NewTradeQueryHandler creates a new handler instance
func NewTradeQueryHandler(tradeRepo ports.TradeRepository) *TradeQueryHandler {
	return &TradeQueryHandler{tradeRepo: tradeRepo}
}

// HandleGet executes the get trade query
func (h *TradeQueryHandler) HandleGet(ctx context.Context, q GetTradeQuery) (*TradeResult, error) {
	tradeID, err := valueobjects.TradeIDFromString(q.TradeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	callerID, err := valueobjects.PlayerIDFromString(q.CallerID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	trade, err := h.tradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if !callerID.Equals(trade.FromPlayerID()) && !callerID.Equals(trade.ToPlayerID()) {
		return nil, pkgerrors.NewForbiddenError("trade is only visible to its participants")
	}

	return tradeResult(trade), nil
}

// HandleList executes the list trades query
func (h *TradeQueryHandler) HandleList(ctx context.Context, q ListTradesQuery) ([]*TradeResult, error) {
	playerID, err := valueobjects.PlayerIDFromString(q.PlayerID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	trades, err := h.tradeRepo.GetByPlayerID(ctx, playerID, q.Direction)
	if err != nil {
		return nil, err
	}

	results := make([]*TradeResult, 0, len(trades))
	for _, trade := range trades {
		results = append(results, tradeResult(trade))
	}
	return results, nil
}

func tradeResult(trade *entities.Trade) *TradeResult {
	result := &TradeResult{
		ID:               trade.ID().String(),
		FromPlayerID:     trade.FromPlayerID().String(),
		ToPlayerID:       trade.ToPlayerID().String(),
		OfferedItemIDs:   itemIDStrings(trade.OfferedItemIDs()),
		RequestedItemIDs: itemIDStrings(trade.RequestedItemIDs()),
		Status:           string(trade.Status()),
		CreatedAt:        utils.FormatTime(trade.CreatedAt()),
	}
	if resolved := trade.ResolvedAt(); resolved != nil {
		result.ResolvedAt = utils.FormatTime(*resolved)
	}
	return result
}

func itemIDStrings(ids []valueobjects.ItemID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
