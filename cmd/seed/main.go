// Command seed populates a table with test data: a generated catalog, a set
// of players and a spread of rolled items per player. Intended for local
// stacks and staging, never production.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	"scandex-backend/domain/services"
	"scandex-backend/infrastructure/config"
	"scandex-backend/infrastructure/di"
	"scandex-backend/pkg/random"
)

func main() {
	playerCount := flag.Int("players", 5, "number of test players to create")
	scansPerPlayer := flag.Int("scans", 10, "number of items rolled per player")
	catalogSize := flag.Int("catalog", 0, "catalog size to generate when the catalog is empty (0 uses the configured default)")
	seed := flag.Int64("seed", 0, "RNG seed for reproducible data (0 uses a random seed)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production environment")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}

	client := di.ProvideDynamoDBClient(awsCfg)
	resilience := di.ProvideResilience(logger)

	playerRepo := di.ProvidePlayerRepository(client, cfg, resilience, logger)
	collectableRepo := di.ProvideCollectableRepository(client, cfg, resilience, logger)
	itemRepo := di.ProvideItemRepository(client, cfg, resilience, logger)

	rarityRepo, err := di.ProvideRarityRepository(cfg)
	if err != nil {
		logger.Fatal("failed to load rarity table", zap.Error(err))
	}

	var rng random.RNG
	if *seed != 0 {
		rng = random.NewSeeded(*seed)
	} else {
		rng = random.New()
	}

	table, err := rarityRepo.Table(ctx)
	if err != nil {
		logger.Fatal("failed to read rarity table", zap.Error(err))
	}

	collectables, err := ensureCatalog(ctx, collectableRepo, rng, table, *catalogSize, cfg.DefaultCatalogSize, logger)
	if err != nil {
		logger.Fatal("failed to ensure catalog", zap.Error(err))
	}

	roller := services.NewItemRoller(rng, logger)

	for i := 0; i < *playerCount; i++ {
		player, err := seedPlayer(ctx, playerRepo, i)
		if err != nil {
			logger.Fatal("failed to seed player", zap.Int("index", i), zap.Error(err))
		}

		for j := 0; j < *scansPerPlayer; j++ {
			item, err := roller.RollTestItem(player.ID(), collectables, table)
			if err != nil {
				logger.Fatal("failed to roll item", zap.Error(err))
			}
			if err := itemRepo.Save(ctx, item); err != nil {
				logger.Fatal("failed to save item", zap.Error(err))
			}
		}

		logger.Info("seeded player",
			zap.String("playerID", player.ID().String()),
			zap.String("email", player.Email()),
			zap.Int("items", *scansPerPlayer),
		)
	}

	logger.Info("seeding complete",
		zap.Int("players", *playerCount),
		zap.Int("catalog", len(collectables)),
	)
}

// ensureCatalog generates a catalog when none exists yet
func ensureCatalog(
	ctx context.Context,
	repo ports.CollectableRepository,
	rng random.RNG,
	table entities.RarityTable,
	requested, fallback int,
	logger *zap.Logger,
) ([]*entities.Collectable, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		logger.Info("catalog already present", zap.Int("count", len(existing)))
		return existing, nil
	}

	count := requested
	if count <= 0 {
		count = fallback
	}

	assigner := services.NewChanceAssigner(rng)
	generator := services.NewCatalogGenerator(rng, services.NewFlavorSource(rng))

	session := assigner.AssignSessionChances(table)
	collectables, err := generator.GenerateCollectables(table, session, count)
	if err != nil {
		return nil, err
	}

	if err := repo.SaveBatch(ctx, collectables); err != nil {
		return nil, err
	}

	logger.Info("generated catalog", zap.Int("count", len(collectables)))
	return collectables, nil
}

func seedPlayer(ctx context.Context, repo ports.PlayerRepository, index int) (*entities.Player, error) {
	email := fmt.Sprintf("player%d@seed.scandex.app", index+1)

	if existing, err := repo.GetByEmail(ctx, email); err == nil {
		return existing, nil
	}

	player, err := entities.NewPlayer(
		valueobjects.NewPlayerID(),
		email,
		fmt.Sprintf("Seed Player %d", index+1),
	)
	if err != nil {
		return nil, err
	}

	if err := repo.Save(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}
