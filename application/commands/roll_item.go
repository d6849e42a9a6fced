package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/events"
	"scandex-backend/domain/services"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/observability"
)

// RollItemCommand mints one item for a player from a barcode scan. The item
// id is generated by the caller so the roll can be queried after the command
// completes.
type RollItemCommand struct {
	ItemID   string `json:"item_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
	Barcode  string `json:"barcode" validate:"required,min=4,max=64"`
}

// Validate validates the command
func (cmd RollItemCommand) Validate() error {
	if cmd.ItemID == "" {
		return errors.New("item ID is required")
	}
	if cmd.PlayerID == "" {
		return errors.New("player ID is required")
	}
	if len(cmd.Barcode) < 4 {
		return errors.New("barcode is too short")
	}
	return nil
}

// RollItemHandler handles the RollItemCommand
type RollItemHandler struct {
	playerRepo      ports.PlayerRepository
	rarityRepo      ports.RarityRepository
	collectableRepo ports.CollectableRepository
	itemRepo        ports.ItemRepository
	roller          *services.ItemRoller
	eventPublisher  ports.EventPublisher
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// NewRollItemHandler creates a new handler instance
func NewRollItemHandler(
	playerRepo ports.PlayerRepository,
	rarityRepo ports.RarityRepository,
	collectableRepo ports.CollectableRepository,
	itemRepo ports.ItemRepository,
	roller *services.ItemRoller,
	eventPublisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RollItemHandler {
	return &RollItemHandler{
		playerRepo:      playerRepo,
		rarityRepo:      rarityRepo,
		collectableRepo: collectableRepo,
		itemRepo:        itemRepo,
		roller:          roller,
		eventPublisher:  eventPublisher,
		metrics:         metrics,
		logger:          logger,
	}
}

// Handle executes the roll item command
func (h *RollItemHandler) Handle(ctx context.Context, cmd RollItemCommand) error {
	playerID, err := valuePlayerID(cmd.PlayerID)
	if err != nil {
		return err
	}

	if _, err := h.playerRepo.GetByID(ctx, playerID); err != nil {
		return err
	}

	table, err := h.rarityRepo.Table(ctx)
	if err != nil {
		return err
	}

	catalog, err := h.collectableRepo.List(ctx)
	if err != nil {
		return err
	}

	rolled, err := h.roller.RollItem(playerID, catalog, table)
	if err != nil {
		if pkgerrors.IsRarityNotFound(err) {
			h.logger.Error("catalog references a rarity tier that does not exist",
				zap.String("playerID", cmd.PlayerID),
				zap.Error(err),
			)
		}
		return err
	}

	// The roller mints a fresh id; rebuild the item under the caller-supplied
	// id so the HTTP layer can fetch the result it asked for.
	item, err := reidentifyItem(cmd.ItemID, rolled)
	if err != nil {
		return err
	}

	if err := h.itemRepo.Save(ctx, item); err != nil {
		return err
	}

	won, err := h.collectableRepo.GetByID(ctx, item.CollectableID())
	if err != nil {
		return err
	}

	h.logger.Info("item rolled",
		zap.String("itemID", item.ID().String()),
		zap.String("playerID", cmd.PlayerID),
		zap.String("collectable", won.Name()),
		zap.Int("rarityID", won.RarityID()),
		zap.Int("quality", item.Quality()),
		zap.String("barcode", cmd.Barcode),
	)

	event := events.NewItemFound(item.ID(), playerID, item.CollectableID(), won.RarityID(), item.Quality(), item.Chance(), time.Now())
	if err := h.eventPublisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish item found event", zap.Error(err))
	}
	if err := h.metrics.CountByRarity(ctx, observability.MetricItemsRolled, 1, won.RarityID()); err != nil {
		h.logger.Debug("metric publish failed", zap.Error(err))
	}

	return nil
}
