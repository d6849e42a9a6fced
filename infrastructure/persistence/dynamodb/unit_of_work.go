package dynamodb

import (
	"errors"
	"fmt"
	"sync"
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"scandex-backend/application/ports"
	pkgerrors "scandex-backend/pkg/errors"
)

// conditionedWrite pairs a transactional write with the domain error to
// surface when its condition fails at commit
type conditionedWrite struct {
	item            types.TransactWriteItem
	onConditionFail error
}

// UnitOfWork buffers conditional writes and applies them in one
// TransactWriteItems call. Any failed condition aborts every write; the
// registered domain error for the first failed condition is returned.
type UnitOfWork struct {
	client     *dynamodb.Client
	resilience *Resilience
	logger     *zap.Logger

	mu        sync.Mutex
	writes    []conditionedWrite
	active    bool
	committed bool
}

// NewUnitOfWork creates a single-use unit of work
func NewUnitOfWork(client *dynamodb.Client, resilience *Resilience, logger *zap.Logger) *UnitOfWork {
	return &UnitOfWork{client: client, resilience: resilience, logger: logger}
}

// UnitOfWorkFactory mints DynamoDB units of work
type UnitOfWorkFactory struct {
	client     *dynamodb.Client
	resilience *Resilience
	logger     *zap.Logger
}

// NewUnitOfWorkFactory creates a unit of work factory
func NewUnitOfWorkFactory(client *dynamodb.Client, resilience *Resilience, logger *zap.Logger) ports.UnitOfWorkFactory {
	return &UnitOfWorkFactory{client: client, resilience: resilience, logger: logger}
}

// New mints a fresh unit of work
func (f *UnitOfWorkFactory) New() ports.UnitOfWork {
	return NewUnitOfWork(f.client, f.resilience, f.logger)
}

// Begin starts the transaction
func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		return errors.New("unit of work already active")
	}
	if u.committed {
		return errors.New("unit of work already committed")
	}
	u.active = true
	u.writes = u.writes[:0]
	return nil
}

// RegisterWrite enlists a conditional write. onConditionFail is returned from
// Commit when this write's condition fails; nil falls back to a generic
// database error.
func (u *UnitOfWork) RegisterWrite(item types.TransactWriteItem, onConditionFail error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return errors.New("unit of work is not active")
	}
	if len(u.writes) >= 100 {
		return errors.New("transaction exceeds the 100 item limit")
	}
	u.writes = append(u.writes, conditionedWrite{item: item, onConditionFail: onConditionFail})
	return nil
}

// Commit applies all enlisted writes atomically
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.active {
		return errors.New("unit of work is not active")
	}
	if len(u.writes) == 0 {
		u.active = false
		u.committed = true
		return nil
	}

	items := make([]types.TransactWriteItem, 0, len(u.writes))
	for _, w := range u.writes {
		items = append(items, w.item)
	}

	err := u.resilience.Execute(ctx, "TransactWriteItems", func() error {
		_, err := u.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items,
		})
		return err
	})
	if err != nil {
		return u.mapCommitError(err)
	}

	u.active = false
	u.committed = true
	return nil
}

// Rollback discards enlisted writes. No-op after a successful commit.
func (u *UnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.committed {
		return nil
	}
	u.writes = nil
	u.active = false
	return nil
}

// mapCommitError translates a cancelled transaction into the domain error
// registered for the first write whose condition failed
func (u *UnitOfWork) mapCommitError(err error) error {
	var cancelled *types.TransactionCanceledException
	if errors.As(err, &cancelled) {
		for i, reason := range cancelled.CancellationReasons {
			if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
				continue
			}
			if i < len(u.writes) && u.writes[i].onConditionFail != nil {
				u.logger.Info("transaction aborted by failed condition",
					zap.Int("writeIndex", i),
				)
				return u.writes[i].onConditionFail
			}
			return pkgerrors.NewConflictError(fmt.Sprintf("transactional write %d lost a conditional check", i))
		}
	}
	return pkgerrors.NewDatabaseError("TransactWriteItems", err)
}
