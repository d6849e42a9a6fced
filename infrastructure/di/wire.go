//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"scandex-backend/application/commands/bus"
	querybus "scandex-backend/application/queries/bus"
	"scandex-backend/infrastructure/config"
	"scandex-backend/pkg/auth"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	JWTValidator *auth.JWTValidator
	ScanLimiter  auth.RateLimiter
	ErrorHandler *pkgerrors.ErrorHandler
	Metrics      *observability.Metrics
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideResilience,
	ProvideRNG,
	ProvidePlayerRepository,
	ProvideCollectableRepository,
	ProvideItemRepository,
	ProvideTradeRepository,
	ProvideRarityRepository,
	ProvideUnitOfWorkFactory,
	ProvideLockManager,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideScanLimiter,
	ProvideJWTValidator,
	ProvideErrorHandler,
	ProvideItemRoller,
	ProvideChanceAssigner,
	ProvideCatalogGenerator,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
