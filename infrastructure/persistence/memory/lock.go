package memory

import (
	"context"
	"sync"
	"time"

	"scandex-backend/application/ports"
	pkgerrors "scandex-backend/pkg/errors"
)

// LockManager implements ports.LockManager in process. Held locks expire on
// their own so a leaked lock cannot wedge local development.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]lockEntry
}

type lockEntry struct {
	owner     string
	expiresAt time.Time
}

// NewLockManager creates an in-memory lock manager
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]lockEntry)}
}

// Acquire takes the named lock or fails with a conflict error
func (m *LockManager) Acquire(ctx context.Context, resource, owner string, duration time.Duration) (ports.ReleaseFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if held, ok := m.locks[resource]; ok && held.expiresAt.After(now) {
		return nil, pkgerrors.NewConflictError(resource + " is locked by another process")
	}

	entry := lockEntry{owner: owner, expiresAt: now.Add(duration)}
	m.locks[resource] = entry

	release := func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if held, ok := m.locks[resource]; ok && held == entry {
			delete(m.locks, resource)
		}
		return nil
	}
	return release, nil
}

var _ ports.LockManager = (*LockManager)(nil)
