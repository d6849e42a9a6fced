package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	"scandex-backend/domain/events"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/observability"
)

// CreateTradeCommand opens a PENDING trade offer between two players
type CreateTradeCommand struct {
	TradeID          string   `json:"trade_id" validate:"required"`
	FromPlayerID     string   `json:"from_player_id" validate:"required"`
	ToPlayerID       string   `json:"to_player_id" validate:"required"`
	OfferedItemIDs   []string `json:"offered_item_ids" validate:"required,min=1,dive,required"`
	RequestedItemIDs []string `json:"requested_item_ids" validate:"required,min=1,dive,required"`
}

// Validate validates the command
func (cmd CreateTradeCommand) Validate() error {
	if cmd.TradeID == "" {
		return errors.New("trade ID is required")
	}
	if cmd.FromPlayerID == "" || cmd.ToPlayerID == "" {
		return errors.New("both players are required")
	}
	if len(cmd.OfferedItemIDs) == 0 {
		return errors.New("at least one offered item is required")
	}
	if len(cmd.RequestedItemIDs) == 0 {
		return errors.New("at least one requested item is required")
	}
	if len(cmd.OfferedItemIDs) > MaxBundleSize || len(cmd.RequestedItemIDs) > MaxBundleSize {
		return errors.New("a trade bundle cannot exceed 10 items")
	}
	return nil
}

// MaxBundleSize caps each side of a trade so the whole settlement fits in a
// single transactional write.
const MaxBundleSize = 10

// CreateTradeHandler handles the CreateTradeCommand
type CreateTradeHandler struct {
	playerRepo     ports.PlayerRepository
	itemRepo       ports.ItemRepository
	tradeRepo      ports.TradeRepository
	eventPublisher ports.EventPublisher
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewCreateTradeHandler creates a new handler instance
func NewCreateTradeHandler(
	playerRepo ports.PlayerRepository,
	itemRepo ports.ItemRepository,
	tradeRepo ports.TradeRepository,
	eventPublisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CreateTradeHandler {
	return &CreateTradeHandler{
		playerRepo:     playerRepo,
		itemRepo:       itemRepo,
		tradeRepo:      tradeRepo,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		logger:         logger,
	}
}

// Handle executes the create trade command. Ownership of both bundles is
// checked here so obviously invalid offers are rejected up front; settlement
// re-checks atomically because ownership can change while the offer is open.
func (h *CreateTradeHandler) Handle(ctx context.Context, cmd CreateTradeCommand) error {
	tradeID, err := valueTradeID(cmd.TradeID)
	if err != nil {
		return err
	}
	fromID, err := valuePlayerID(cmd.FromPlayerID)
	if err != nil {
		return err
	}
	toID, err := valuePlayerID(cmd.ToPlayerID)
	if err != nil {
		return err
	}
	offeredIDs, err := valueItemIDs(cmd.OfferedItemIDs)
	if err != nil {
		return err
	}
	requestedIDs, err := valueItemIDs(cmd.RequestedItemIDs)
	if err != nil {
		return err
	}

	if _, err := h.playerRepo.GetByID(ctx, toID); err != nil {
		return err
	}

	if err := h.verifyBundleOwnership(ctx, offeredIDs, fromID); err != nil {
		return err
	}
	if err := h.verifyBundleOwnership(ctx, requestedIDs, toID); err != nil {
		return err
	}

	trade, err := entities.NewTrade(tradeID, fromID, toID, offeredIDs, requestedIDs)
	if err != nil {
		return err
	}

	if err := h.tradeRepo.Save(ctx, trade); err != nil {
		return err
	}

	h.logger.Info("trade created",
		zap.String("tradeID", cmd.TradeID),
		zap.String("fromPlayerID", cmd.FromPlayerID),
		zap.String("toPlayerID", cmd.ToPlayerID),
		zap.Int("offered", len(offeredIDs)),
		zap.Int("requested", len(requestedIDs)),
	)

	event := events.NewTradeCreated(tradeID, fromID, toID, time.Now())
	if err := h.eventPublisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish trade created event", zap.Error(err))
	}
	if err := h.metrics.Count(ctx, observability.MetricTradesCreated, 1); err != nil {
		h.logger.Debug("metric publish failed", zap.Error(err))
	}

	return nil
}

func (h *CreateTradeHandler) verifyBundleOwnership(ctx context.Context, itemIDs []valueobjects.ItemID, owner valueobjects.PlayerID) error {
	for _, itemID := range itemIDs {
		item, err := h.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.IsOwnedBy(owner) {
			return pkgerrors.NewOwnershipError(itemID.String(), owner.String())
		}
	}
	return nil
}
