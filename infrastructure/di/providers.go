// Package di wires the application together. Providers are consumed by Wire;
// wire_gen.go carries the generated initializer.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"scandex-backend/application/commands"
	"scandex-backend/application/commands/bus"
	"scandex-backend/application/ports"
	"scandex-backend/application/queries"
	querybus "scandex-backend/application/queries/bus"
	"scandex-backend/domain/services"
	"scandex-backend/infrastructure/config"
	"scandex-backend/infrastructure/messaging"
	"scandex-backend/infrastructure/persistence/dynamodb"
	"scandex-backend/pkg/auth"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/observability"
	"scandex-backend/pkg/random"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideResilience creates the shared circuit breaker and retry policy for
// DynamoDB calls
func ProvideResilience(logger *zap.Logger) *dynamodb.Resilience {
	return dynamodb.NewResilience(logger)
}

// ProvideRNG creates the randomness source shared by the domain services
func ProvideRNG() random.RNG {
	return random.New()
}

// ProvidePlayerRepository creates a player repository
func ProvidePlayerRepository(client *awsdynamodb.Client, cfg *config.Config, resilience *dynamodb.Resilience, logger *zap.Logger) ports.PlayerRepository {
	return dynamodb.NewPlayerRepository(client, cfg.DynamoDBTable, cfg.IndexName, resilience, logger)
}

// ProvideCollectableRepository creates a collectable repository behind the
// catalog cache
func ProvideCollectableRepository(client *awsdynamodb.Client, cfg *config.Config, resilience *dynamodb.Resilience, logger *zap.Logger) ports.CollectableRepository {
	inner := dynamodb.NewCollectableRepository(client, cfg.DynamoDBTable, cfg.IndexName, resilience, logger)
	return NewCachedCollectableRepository(inner)
}

// ProvideItemRepository creates an item repository
func ProvideItemRepository(client *awsdynamodb.Client, cfg *config.Config, resilience *dynamodb.Resilience, logger *zap.Logger) ports.ItemRepository {
	return dynamodb.NewItemRepository(client, cfg.DynamoDBTable, cfg.IndexName, resilience, logger)
}

// ProvideTradeRepository creates a trade repository
func ProvideTradeRepository(client *awsdynamodb.Client, cfg *config.Config, resilience *dynamodb.Resilience, logger *zap.Logger) ports.TradeRepository {
	return dynamodb.NewTradeRepository(client, cfg.DynamoDBTable, cfg.IndexName, cfg.GSI2IndexName, resilience, logger)
}

// ProvideRarityRepository loads the rarity table and serves it statically
func ProvideRarityRepository(cfg *config.Config) (ports.RarityRepository, error) {
	table, err := config.LoadRarityTable(cfg.RarityTablePath)
	if err != nil {
		return nil, err
	}
	return config.NewStaticRarityRepository(table), nil
}

// ProvideUnitOfWorkFactory creates the transactional write factory used by
// trade settlement
func ProvideUnitOfWorkFactory(client *awsdynamodb.Client, resilience *dynamodb.Resilience, logger *zap.Logger) ports.UnitOfWorkFactory {
	return dynamodb.NewUnitOfWorkFactory(client, resilience, logger)
}

// ProvideEventPublisher fans domain events out to EventBridge and the
// DynamoDB event log
func ProvideEventPublisher(
	ebClient *awseventbridge.Client,
	ddbClient *awsdynamodb.Client,
	cfg *config.Config,
	resilience *dynamodb.Resilience,
	logger *zap.Logger,
) ports.EventPublisher {
	bridge := messaging.NewEventBridgePublisher(ebClient, cfg.EventBusName, logger)
	eventLog := dynamodb.NewEventLog(ddbClient, cfg.DynamoDBTable, resilience, logger)
	return messaging.NewCompositePublisher(logger, bridge, eventLog)
}

// ProvideMetrics creates the metrics publisher. With metrics disabled the
// publisher gets no client and every emit is a no-op.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil)
	}
	return observability.NewMetrics(namespace, client)
}

// ProvideScanLimiter creates the per-player scan limiter. Lambda deployments
// share the counter through DynamoDB; a long-lived server keeps it in process.
func ProvideScanLimiter(client *awsdynamodb.Client, cfg *config.Config) auth.RateLimiter {
	if cfg.IsLambda {
		return auth.NewDistributedRateLimiter(client, cfg.DynamoDBTable, cfg.ScanRatePerMinute, time.Minute, "SCAN")
	}
	return auth.NewSlidingWindowLimiter(cfg.ScanRatePerMinute, time.Minute)
}

// ProvideLockManager creates the distributed lock guarding catalog generation
func ProvideLockManager(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.LockManager {
	return dynamodb.NewDistributedLock(client, cfg.DynamoDBTable, logger)
}

// ProvideJWTValidator creates the credential validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
		Audience:  []string{cfg.JWTAudience},
	})
}

// ProvideErrorHandler creates the HTTP error mapper
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideItemRoller creates the item rolling service
func ProvideItemRoller(rng random.RNG, logger *zap.Logger) *services.ItemRoller {
	return services.NewItemRoller(rng, logger)
}

// ProvideChanceAssigner creates the session chance assigner
func ProvideChanceAssigner(rng random.RNG) *services.ChanceAssigner {
	return services.NewChanceAssigner(rng)
}

// ProvideCatalogGenerator creates the catalog generator
func ProvideCatalogGenerator(rng random.RNG) *services.CatalogGenerator {
	return services.NewCatalogGenerator(rng, services.NewFlavorSource(rng))
}

// ProvideCommandBus creates a command bus with every write operation
// registered
func ProvideCommandBus(
	playerRepo ports.PlayerRepository,
	rarityRepo ports.RarityRepository,
	collectableRepo ports.CollectableRepository,
	itemRepo ports.ItemRepository,
	tradeRepo ports.TradeRepository,
	uowFactory ports.UnitOfWorkFactory,
	lock ports.LockManager,
	eventPublisher ports.EventPublisher,
	assigner *services.ChanceAssigner,
	generator *services.CatalogGenerator,
	roller *services.ItemRoller,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()
	logging := bus.LoggingMiddleware(logger)

	registerPlayer := commands.NewRegisterPlayerHandler(playerRepo, logger)
	commandBus.Register(commands.RegisterPlayerCommand{},
		commandBus.Use(bus.Adapt(registerPlayer.Handle), logging))

	generateCatalog := commands.NewGenerateCatalogHandler(rarityRepo, collectableRepo, assigner, generator, lock, eventPublisher, metrics, logger)
	commandBus.Register(commands.GenerateCatalogCommand{},
		commandBus.Use(bus.Adapt(generateCatalog.Handle), logging))

	rollItem := commands.NewRollItemHandler(playerRepo, rarityRepo, collectableRepo, itemRepo, roller, eventPublisher, metrics, logger)
	commandBus.Register(commands.RollItemCommand{},
		commandBus.Use(bus.Adapt(rollItem.Handle), logging))

	createTrade := commands.NewCreateTradeHandler(playerRepo, itemRepo, tradeRepo, eventPublisher, metrics, logger)
	commandBus.Register(commands.CreateTradeCommand{},
		commandBus.Use(bus.Adapt(createTrade.Handle), logging))

	acceptTrade := commands.NewAcceptTradeHandler(tradeRepo, itemRepo, uowFactory, eventPublisher, metrics, logger)
	commandBus.Register(commands.AcceptTradeCommand{},
		commandBus.Use(bus.Adapt(acceptTrade.Handle), logging))

	rejectTrade := commands.NewRejectTradeHandler(tradeRepo, eventPublisher, metrics, logger)
	commandBus.Register(commands.RejectTradeCommand{},
		commandBus.Use(bus.Adapt(rejectTrade.Handle), logging))

	cancelTrade := commands.NewCancelTradeHandler(tradeRepo, eventPublisher, metrics, logger)
	commandBus.Register(commands.CancelTradeCommand{},
		commandBus.Use(bus.Adapt(cancelTrade.Handle), logging))

	return commandBus
}

// ProvideQueryBus creates a query bus with every read operation registered
func ProvideQueryBus(
	playerRepo ports.PlayerRepository,
	rarityRepo ports.RarityRepository,
	collectableRepo ports.CollectableRepository,
	itemRepo ports.ItemRepository,
	tradeRepo ports.TradeRepository,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	getPlayer := queries.NewGetPlayerHandler(playerRepo)
	queryBus.Register(queries.GetPlayerQuery{}, querybus.Adapt(getPlayer.Handle))

	itemQueries := queries.NewItemQueryHandler(itemRepo, collectableRepo, rarityRepo)
	queryBus.Register(queries.GetItemQuery{}, querybus.Adapt(itemQueries.HandleGet))
	queryBus.Register(queries.ListItemsQuery{}, querybus.Adapt(itemQueries.HandleList))

	catalogQueries := queries.NewCatalogQueryHandler(collectableRepo, rarityRepo)
	queryBus.Register(queries.ListCollectablesQuery{}, querybus.Adapt(catalogQueries.HandleListCollectables))
	queryBus.Register(queries.ListRaritiesQuery{}, querybus.Adapt(catalogQueries.HandleListRarities))

	tradeQueries := queries.NewTradeQueryHandler(tradeRepo)
	queryBus.Register(queries.GetTradeQuery{}, querybus.Adapt(tradeQueries.HandleGet))
	queryBus.Register(queries.ListTradesQuery{}, querybus.Adapt(tradeQueries.HandleList))

	return queryBus
}
