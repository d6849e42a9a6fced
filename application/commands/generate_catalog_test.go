package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scandex-backend/application/commands"
	"scandex-backend/application/ports"
	"scandex-backend/domain/events"
	"scandex-backend/domain/services"
	"scandex-backend/infrastructure/config"
	"scandex-backend/infrastructure/persistence/memory"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/observability"
	"scandex-backend/pkg/random"
)

type catalogFixture struct {
	collectables ports.CollectableRepository
	locks        *memory.LockManager
	recorder     *memory.EventRecorder
	handler      *commands.GenerateCatalogHandler
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := memory.NewStore()
	rng := random.NewSeeded(7)
	f := &catalogFixture{
		collectables: memory.NewCollectableRepository(store),
		locks:        memory.NewLockManager(),
		recorder:     memory.NewEventRecorder(),
	}
	f.handler = commands.NewGenerateCatalogHandler(
		config.NewStaticRarityRepository(config.DefaultRarityTable()),
		f.collectables,
		services.NewChanceAssigner(rng),
		services.NewCatalogGenerator(rng, services.NewFlavorSource(rng)),
		f.locks,
		f.recorder,
		observability.NewMetrics("Test", nil),
		zap.NewNop(),
	)
	return f
}

func TestGenerateCatalog_PersistsPoolAndPublishes(t *testing.T) {
	f := newCatalogFixture(t)

	cmd := commands.GenerateCatalogCommand{Count: 50, RequestedBy: "admin-1"}
	require.NoError(t, f.handler.Handle(context.Background(), cmd))

	pool, err := f.collectables.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, pool, 50)

	generated := f.recorder.ByType("catalog.generated")
	require.Len(t, generated, 1)
	assert.Equal(t, 50, generated[0].(events.CatalogGenerated).Count)
}

func TestGenerateCatalog_LockReleasedBetweenRuns(t *testing.T) {
	f := newCatalogFixture(t)

	first := commands.GenerateCatalogCommand{Count: 10, RequestedBy: "admin-1"}
	require.NoError(t, f.handler.Handle(context.Background(), first))

	second := commands.GenerateCatalogCommand{Count: 10, RequestedBy: "admin-2"}
	require.NoError(t, f.handler.Handle(context.Background(), second))

	pool, err := f.collectables.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, pool, 20)
}

func TestGenerateCatalog_ConcurrentRunIsRejected(t *testing.T) {
	f := newCatalogFixture(t)

	release, err := f.locks.Acquire(context.Background(), "catalog-generation", "admin-1", time.Minute)
	require.NoError(t, err)
	defer release(context.Background())

	cmd := commands.GenerateCatalogCommand{Count: 10, RequestedBy: "admin-2"}
	err = f.handler.Handle(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeConflict))

	pool, listErr := f.collectables.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, pool)
}
