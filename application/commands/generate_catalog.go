package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/events"
	"scandex-backend/domain/services"
	"scandex-backend/pkg/observability"
)

// GenerateCatalogCommand runs one catalog-generation session: draw session
// chances, mint collectables with tier coverage, persist the pool.
type GenerateCatalogCommand struct {
	Count       int    `json:"count" validate:"required,gt=0"`
	RequestedBy string `json:"requested_by" validate:"required"`
}

// Validate validates the command
func (cmd GenerateCatalogCommand) Validate() error {
	if cmd.Count <= 0 {
		return errors.New("count must be positive")
	}
	if cmd.RequestedBy == "" {
		return errors.New("requesting player is required")
	}
	return nil
}

// generationLockTTL bounds how long a generation run can hold the lock. A
// crashed run frees the catalog after this long.
const generationLockTTL = time.Minute

// GenerateCatalogHandler handles the GenerateCatalogCommand
type GenerateCatalogHandler struct {
	rarityRepo      ports.RarityRepository
	collectableRepo ports.CollectableRepository
	assigner        *services.ChanceAssigner
	generator       *services.CatalogGenerator
	lock            ports.LockManager
	eventPublisher  ports.EventPublisher
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// NewGenerateCatalogHandler creates a new handler instance
func NewGenerateCatalogHandler(
	rarityRepo ports.RarityRepository,
	collectableRepo ports.CollectableRepository,
	assigner *services.ChanceAssigner,
	generator *services.CatalogGenerator,
	lock ports.LockManager,
	eventPublisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *GenerateCatalogHandler {
	return &GenerateCatalogHandler{
		rarityRepo:      rarityRepo,
		collectableRepo: collectableRepo,
		assigner:        assigner,
		generator:       generator,
		lock:            lock,
		eventPublisher:  eventPublisher,
		metrics:         metrics,
		logger:          logger,
	}
}

// Handle executes the generate catalog command. A generation run holds a
// distributed lock so two admins cannot double the pool.
func (h *GenerateCatalogHandler) Handle(ctx context.Context, cmd GenerateCatalogCommand) error {
	release, err := h.lock.Acquire(ctx, "catalog-generation", cmd.RequestedBy, generationLockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(ctx); err != nil {
			h.logger.Warn("failed to release generation lock", zap.Error(err))
		}
	}()

	table, err := h.rarityRepo.Table(ctx)
	if err != nil {
		return err
	}

	session := h.assigner.AssignSessionChances(table)

	collectables, err := h.generator.GenerateCollectables(table, session, cmd.Count)
	if err != nil {
		return err
	}

	if err := h.collectableRepo.SaveBatch(ctx, collectables); err != nil {
		return err
	}

	h.logger.Info("catalog generated",
		zap.Int("requested", cmd.Count),
		zap.Int("generated", len(collectables)),
		zap.String("requestedBy", cmd.RequestedBy),
	)

	event := events.NewCatalogGenerated(len(collectables), time.Now())
	if err := h.eventPublisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish catalog generated event", zap.Error(err))
	}
	if err := h.metrics.Count(ctx, observability.MetricCatalogGenerated, float64(len(collectables))); err != nil {
		h.logger.Debug("metric publish failed", zap.Error(err))
	}

	return nil
}
