package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"scandex-backend/application/ports"
	pkgerrors "scandex-backend/pkg/errors"
)

// DistributedLock provides cross-process mutual exclusion over DynamoDB
// conditional writes. Used to keep operations like catalog generation from
// running twice concurrently.
type DistributedLock struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewDistributedLock creates a DynamoDB-backed lock manager
func NewDistributedLock(client *dynamodb.Client, tableName string, logger *zap.Logger) *DistributedLock {
	return &DistributedLock{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Acquire takes the lock for the named resource, or fails with a conflict
// error when another holder has it. The lock self-expires after duration so
// a crashed holder cannot wedge the resource; the row also carries a DynamoDB
// TTL for cleanup.
func (dl *DistributedLock) Acquire(ctx context.Context, resource, owner string, duration time.Duration) (ports.ReleaseFunc, error) {
	lockID := fmt.Sprintf("%s_%d", owner, time.Now().UnixNano())
	now := time.Now()
	expiresAt := now.Add(duration)

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: lockPK(resource)},
		"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
		"LockID":     &types.AttributeValueMemberS{Value: lockID},
		"Owner":      &types.AttributeValueMemberS{Value: owner},
		"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
		"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())},
	}

	_, err := dl.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dl.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return nil, pkgerrors.NewConflictError(fmt.Sprintf("%s is locked by another process", resource))
		}
		return nil, pkgerrors.NewDatabaseError("acquire lock", err)
	}

	dl.logger.Debug("lock acquired",
		zap.String("resource", resource),
		zap.String("owner", owner),
		zap.Time("expiresAt", expiresAt),
	)

	return func(releaseCtx context.Context) error {
		return dl.release(releaseCtx, resource, lockID)
	}, nil
}

// release deletes the lock row, conditioned on still holding it. An expired
// lock taken over by someone else is left alone.
func (dl *DistributedLock) release(ctx context.Context, resource, lockID string) error {
	_, err := dl.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dl.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: lockPK(resource)},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LockID = :lockID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lockID": &types.AttributeValueMemberS{Value: lockID},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			dl.logger.Warn("lock expired before release", zap.String("resource", resource))
			return nil
		}
		return pkgerrors.NewDatabaseError("release lock", err)
	}
	return nil
}

func lockPK(resource string) string {
	return "LOCK#" + resource
}

var _ ports.LockManager = (*DistributedLock)(nil)
