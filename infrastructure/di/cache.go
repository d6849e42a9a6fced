package di

import (
	"context"
	"sync"
	"time"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
)

// catalogTTL bounds staleness of the cached catalog. The catalog only changes
// on an admin generation run, so a short TTL is plenty.
const catalogTTL = 60 * time.Second

// CachedCollectableRepository caches the catalog in front of a collectable
// repository. Reads during scans hit the cache; writes pass through and
// invalidate it.
type CachedCollectableRepository struct {
	inner ports.CollectableRepository

	mu        sync.RWMutex
	list      []*entities.Collectable
	byID      map[string]*entities.Collectable
	expiresAt time.Time
}

// NewCachedCollectableRepository wraps a collectable repository with a
// process-local catalog cache
func NewCachedCollectableRepository(inner ports.CollectableRepository) *CachedCollectableRepository {
	return &CachedCollectableRepository{
		inner: inner,
		byID:  make(map[string]*entities.Collectable),
	}
}

// Save persists a collectable and invalidates the cache
func (r *CachedCollectableRepository) Save(ctx context.Context, collectable *entities.Collectable) error {
	if err := r.inner.Save(ctx, collectable); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// SaveBatch persists a generation run and invalidates the cache
func (r *CachedCollectableRepository) SaveBatch(ctx context.Context, collectables []*entities.Collectable) error {
	if err := r.inner.SaveBatch(ctx, collectables); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

// GetByID retrieves a collectable, served from cache when fresh
func (r *CachedCollectableRepository) GetByID(ctx context.Context, id valueobjects.CollectableID) (*entities.Collectable, error) {
	r.mu.RLock()
	if time.Now().Before(r.expiresAt) {
		if c, ok := r.byID[id.String()]; ok {
			r.mu.RUnlock()
			return c, nil
		}
	}
	r.mu.RUnlock()

	return r.inner.GetByID(ctx, id)
}

// List retrieves the full catalog, refreshing the cache on a miss
func (r *CachedCollectableRepository) List(ctx context.Context) ([]*entities.Collectable, error) {
	r.mu.RLock()
	if time.Now().Before(r.expiresAt) && r.list != nil {
		cached := r.list
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	list, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Collectable, len(list))
	for _, c := range list {
		byID[c.ID().String()] = c
	}

	r.mu.Lock()
	r.list = list
	r.byID = byID
	r.expiresAt = time.Now().Add(catalogTTL)
	r.mu.Unlock()

	return list, nil
}

func (r *CachedCollectableRepository) invalidate() {
	r.mu.Lock()
	r.list = nil
	r.byID = make(map[string]*entities.Collectable)
	r.expiresAt = time.Time{}
	r.mu.Unlock()
}
