package memory

import (
	"context"
	"errors"

	"scandex-backend/application/ports"
)

// operation runs with the store lock held. check validates the write's
// condition; apply mutates the store. Commit runs every check before any
// apply so the batch is all-or-nothing.
type operation struct {
	check func() error
	apply func()
}

// UnitOfWork buffers conditional writes against the in-memory store
type UnitOfWork struct {
	store     *Store
	ops       []operation
	active    bool
	committed bool
}

// NewUnitOfWork creates a single-use unit of work
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// UnitOfWorkFactory mints in-memory units of work
type UnitOfWorkFactory struct {
	store *Store
}

// NewUnitOfWorkFactory creates a unit of work factory over the store
func NewUnitOfWorkFactory(store *Store) ports.UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

// New mints a fresh unit of work
func (f *UnitOfWorkFactory) New() ports.UnitOfWork {
	return NewUnitOfWork(f.store)
}

// Begin starts the transaction
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return errors.New("unit of work already active")
	}
	if u.committed {
		return errors.New("unit of work already committed")
	}
	u.active = true
	u.ops = u.ops[:0]
	return nil
}

func (u *UnitOfWork) register(op operation) error {
	if !u.active {
		return errors.New("unit of work is not active")
	}
	u.ops = append(u.ops, op)
	return nil
}

// Commit applies all enlisted writes atomically
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if !u.active {
		return errors.New("unit of work is not active")
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	for _, op := range u.ops {
		if err := op.check(); err != nil {
			return err
		}
	}
	for _, op := range u.ops {
		op.apply()
	}

	u.active = false
	u.committed = true
	return nil
}

// Rollback discards enlisted writes. No-op after a successful commit.
func (u *UnitOfWork) Rollback() error {
	if u.committed {
		return nil
	}
	u.ops = nil
	u.active = false
	return nil
}
