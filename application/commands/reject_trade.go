package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/events"
	"scandex-backend/pkg/observability"
)

// RejectTradeCommand declines a PENDING trade. No items move.
type RejectTradeCommand struct {
	TradeID  string `json:"trade_id" validate:"required"`
	CallerID string `json:"caller_id" validate:"required"`
}

// Validate validates the command
func (cmd RejectTradeCommand) Validate() error {
	if cmd.TradeID == "" {
		return errors.New("trade ID is required")
	}
	if cmd.CallerID == "" {
		return errors.New("caller ID is required")
	}
	return nil
}

// RejectTradeHandler handles the RejectTradeCommand
type RejectTradeHandler struct {
	tradeRepo      ports.TradeRepository
	eventPublisher ports.EventPublisher
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewRejectTradeHandler creates a new handler instance
func NewRejectTradeHandler(
	tradeRepo ports.TradeRepository,
	eventPublisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RejectTradeHandler {
	return &RejectTradeHandler{
		tradeRepo:      tradeRepo,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		logger:         logger,
	}
}

// Handle executes the reject trade command
func (h *RejectTradeHandler) Handle(ctx context.Context, cmd RejectTradeCommand) error {
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

	if err := trade.Reject(callerID); err != nil {
		return err
	}

	if err := h.tradeRepo.UpdateStatus(ctx, trade, entities.TradeStatusPending); err != nil {
		return err
	}

	h.logger.Info("trade rejected", zap.String("tradeID", cmd.TradeID))

	event := events.NewTradeResolved(tradeID, string(entities.TradeStatusRejected), false, time.Now())
	if err := h.eventPublisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish trade resolved event", zap.Error(err))
	}
	if err := h.metrics.Count(ctx, observability.MetricTradesRejected, 1); err != nil {
		h.logger.Debug("metric publish failed", zap.Error(err))
	}

	return nil
}
