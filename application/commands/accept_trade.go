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

// AcceptTradeCommand settles a PENDING trade: both item bundles swap owners
// and the trade goes COMPLETED, all in one atomic write.
type AcceptTradeCommand struct {
	TradeID  string `json:"trade_id" validate:"required"`
	CallerID string `json:"caller_id" validate:"required"`
}

// Validate validates the command
func (cmd AcceptTradeCommand) Validate() error {
	if cmd.TradeID == "" {
		return errors.New("trade ID is required")
	}
	if cmd.CallerID == "" {
		return errors.New("caller ID is required")
	}
	return nil
}

// AcceptTradeHandler handles the AcceptTradeCommand
type AcceptTradeHandler struct {
	tradeRepo      ports.TradeRepository
	itemRepo       ports.ItemRepository
	uowFactory     ports.UnitOfWorkFactory
	eventPublisher ports.EventPublisher
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewAcceptTradeHandler creates a new handler instance
func NewAcceptTradeHandler(
	tradeRepo ports.TradeRepository,
	itemRepo ports.ItemRepository,
	uowFactory ports.UnitOfWorkFactory,
	eventPublisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AcceptTradeHandler {
	return &AcceptTradeHandler{
		tradeRepo:      tradeRepo,
		itemRepo:       itemRepo,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		logger:         logger,
	}
}

// Handle executes the accept trade command. Every ownership transfer and the
// status transition are enlisted in one unit of work; each write carries a
// condition on the state it expects, so a concurrent settlement that moved
// any referenced item or resolved the trade first aborts the whole commit.
func (h *AcceptTradeHandler) Handle(ctx context.Context, cmd AcceptTradeCommand) error {
	tradeID, err := valueTradeID(cmd.TradeID)
	if err != nil {
		return err
	}
	callerID, err := valuePlayerID(cmd.CallerID)
	if err != nil {
		return err
	}

	trade, err := h.tradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return err
	}

	// State and caller checks come before ownership so a resolved trade
	// reports its status instead of a stale ownership failure.
	if err := trade.EnsureAcceptable(callerID); err != nil {
		return err
	}

	offered, err := h.loadBundle(ctx, trade.OfferedItemIDs(), trade.FromPlayerID())
	if err != nil {
		return err
	}
	requested, err := h.loadBundle(ctx, trade.RequestedItemIDs(), trade.ToPlayerID())
	if err != nil {
		return err
	}

	uow := h.uowFactory.New()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for _, item := range offered {
		expected := trade.FromPlayerID()
		if err := item.TransferTo(trade.ToPlayerID()); err != nil {
			return err
		}
		if err := h.itemRepo.TransferOwnershipWithUoW(ctx, uow, item, expected); err != nil {
			return err
		}
	}
	for _, item := range requested {
		expected := trade.ToPlayerID()
		if err := item.TransferTo(trade.FromPlayerID()); err != nil {
			return err
		}
		if err := h.itemRepo.TransferOwnershipWithUoW(ctx, uow, item, expected); err != nil {
			return err
		}
	}

	if err := trade.Complete(); err != nil {
		return err
	}
	if err := h.tradeRepo.UpdateStatusWithUoW(ctx, uow, trade, entities.TradeStatusPending); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.Info("trade completed",
		zap.String("tradeID", cmd.TradeID),
		zap.String("fromPlayerID", trade.FromPlayerID().String()),
		zap.String("toPlayerID", trade.ToPlayerID().String()),
	)

	event := events.NewTradeResolved(tradeID, string(entities.TradeStatusCompleted), false, time.Now())
	if err := h.eventPublisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish trade resolved event", zap.Error(err))
	}
	if err := h.metrics.Count(ctx, observability.MetricTradesCompleted, 1); err != nil {
		h.logger.Debug("metric publish failed", zap.Error(err))
	}

	h.cancelConflictingTrades(ctx, trade)

	return nil
}

// loadBundle fetches a bundle and pre-checks ownership. The commit re-checks
// the same condition atomically; this pass only produces a friendlier error
// for the common case.
func (h *AcceptTradeHandler) loadBundle(ctx context.Context, itemIDs []valueobjects.ItemID, owner valueobjects.PlayerID) ([]*entities.Item, error) {
	items := make([]*entities.Item, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		item, err := h.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if !item.IsOwnedBy(owner) {
			return nil, pkgerrors.NewOwnershipError(itemID.String(), owner.String())
		}
		items = append(items, item)
	}
	return items, nil
}

// cancelConflictingTrades voids other PENDING trades that reference items the
// settlement just moved. Best effort after commit; each cancellation is a
// conditional write, so a trade that resolved in the meantime is skipped.
func (h *AcceptTradeHandler) cancelConflictingTrades(ctx context.Context, settled *entities.Trade) {
	seen := map[string]bool{settled.ID().String(): true}

	for _, itemID := range settled.AllItemIDs() {
		pending, err := h.tradeRepo.FindPendingByItemID(ctx, itemID)
		if err != nil {
			h.logger.Warn("conflict lookup failed",
				zap.String("itemID", itemID.String()),
				zap.Error(err),
			)
			continue
		}

		for _, other := range pending {
			if seen[other.ID().String()] {
				continue
			}
			seen[other.ID().String()] = true

			if err := other.CancelForConflict(); err != nil {
				continue
			}
			if err := h.tradeRepo.UpdateStatus(ctx, other, entities.TradeStatusPending); err != nil {
				if pkgerrors.IsInvalidState(err) {
					continue
				}
				h.logger.Warn("conflict cancellation failed",
					zap.String("tradeID", other.ID().String()),
					zap.Error(err),
				)
				continue
			}

			h.logger.Info("conflicting trade cancelled",
				zap.String("tradeID", other.ID().String()),
				zap.String("settledTradeID", settled.ID().String()),
			)

			event := events.NewTradeResolved(other.ID(), string(entities.TradeStatusCancelled), true, time.Now())
			if err := h.eventPublisher.Publish(ctx, event); err != nil {
				h.logger.Warn("failed to publish trade resolved event", zap.Error(err))
			}
			if err := h.metrics.Count(ctx, observability.MetricConflictCancellations, 1); err != nil {
				h.logger.Debug("metric publish failed", zap.Error(err))
			}
		}
	}
}
