package dynamodb

import (
	"fmt"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/utils"
)

// batchWriteChunk is the DynamoDB BatchWriteItem request cap
const batchWriteChunk = 25

// CollectableRepository implements ports.CollectableRepository on the single
// table. The catalog is indexed under a constant GSI1 partition so the full
// pool is one query.
type CollectableRepository struct {
	client     *dynamodb.Client
	tableName  string
	indexName  string
	resilience *Resilience
	logger     *zap.Logger
}

// NewCollectableRepository creates a new CollectableRepository
func NewCollectableRepository(client *dynamodb.Client, tableName, indexName string, resilience *Resilience, logger *zap.Logger) ports.CollectableRepository {
	return &CollectableRepository{
		client:     client,
		tableName:  tableName,
		indexName:  indexName,
		resilience: resilience,
		logger:     logger,
	}
}

// collectableItem represents the DynamoDB item structure for a collectable
type collectableItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	GSI1PK        string `dynamodbav:"GSI1PK"`
	GSI1SK        string `dynamodbav:"GSI1SK"`
	EntityType    string `dynamodbav:"EntityType"`
	CollectableID string `dynamodbav:"CollectableID"`
	Name          string `dynamodbav:"Name"`
	Description   string `dynamodbav:"Description"`
	RarityID      int    `dynamodbav:"RarityID"`
	CreatedAt     string `dynamodbav:"CreatedAt"`
}

// Save persists a single collectable
func (r *CollectableRepository) Save(ctx context.Context, collectable *entities.Collectable) error {
	av, err := attributevalue.MarshalMap(r.toItem(collectable))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal collectable", err)
	}

	return r.resilience.Execute(ctx, "PutItem", func() error {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      av,
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("save collectable", err)
		}
		return nil
	})
}

// SaveBatch persists a generation run's collectables in batch chunks
func (r *CollectableRepository) SaveBatch(ctx context.Context, collectables []*entities.Collectable) error {
	for start := 0; start < len(collectables); start += batchWriteChunk {
		end := min(start+batchWriteChunk, len(collectables))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, c := range collectables[start:end] {
			av, err := attributevalue.MarshalMap(r.toItem(c))
			if err != nil {
				return pkgerrors.NewDatabaseError("marshal collectable", err)
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: av},
			})
		}

		pending := map[string][]types.WriteRequest{r.tableName: requests}
		err := r.resilience.Execute(ctx, "BatchWriteItem", func() error {
			for len(pending[r.tableName]) > 0 {
				out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
					RequestItems: pending,
				})
				if err != nil {
					return pkgerrors.NewDatabaseError("batch save collectables", err)
				}
				if len(out.UnprocessedItems) == 0 {
					return nil
				}
				pending = out.UnprocessedItems
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	r.logger.Info("catalog batch saved", zap.Int("count", len(collectables)))
	return nil
}

// GetByID retrieves a collectable by id
func (r *CollectableRepository) GetByID(ctx context.Context, id valueobjects.CollectableID) (*entities.Collectable, error) {
	var item collectableItem
	err := r.resilience.Execute(ctx, "GetItem", func() error {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: collectablePK(id)},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("get collectable", err)
		}
		if out.Item == nil {
			return pkgerrors.NewNotFoundError("collectable")
		}
		return attributevalue.UnmarshalMap(out.Item, &item)
	})
	if err != nil {
		return nil, err
	}
	return r.toEntity(item)
}

// List retrieves the full catalog via the GSI1 catalog partition
func (r *CollectableRepository) List(ctx context.Context) ([]*entities.Collectable, error) {
	var collectables []*entities.Collectable

	err := r.resilience.Execute(ctx, "Query", func() error {
		collectables = collectables[:0]
		var startKey map[string]types.AttributeValue
		for {
			out, err := r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:              aws.String(r.tableName),
				IndexName:              aws.String(r.indexName),
				KeyConditionExpression: aws.String("GSI1PK = :pk"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":pk": &types.AttributeValueMemberS{Value: "CATALOG"},
				},
				ExclusiveStartKey: startKey,
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("list collectables", err)
			}
			for _, raw := range out.Items {
				var item collectableItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return pkgerrors.NewDatabaseError("unmarshal collectable", err)
				}
				c, err := r.toEntity(item)
				if err != nil {
					return err
				}
				collectables = append(collectables, c)
			}
			if out.LastEvaluatedKey == nil {
				return nil
			}
			startKey = out.LastEvaluatedKey
		}
	})
	if err != nil {
		return nil, err
	}
	return collectables, nil
}

func (r *CollectableRepository) toItem(c *entities.Collectable) collectableItem {
	return collectableItem{
		PK:            collectablePK(c.ID()),
		SK:            "METADATA",
		GSI1PK:        "CATALOG",
		GSI1SK:        fmt.Sprintf("COLLECTABLE#%s", c.ID().String()),
		EntityType:    "COLLECTABLE",
		CollectableID: c.ID().String(),
		Name:          c.Name(),
		Description:   c.Description(),
		RarityID:      c.RarityID(),
		CreatedAt:     utils.FormatTime(c.CreatedAt()),
	}
}

func (r *CollectableRepository) toEntity(item collectableItem) (*entities.Collectable, error) {
	id, err := valueobjects.CollectableIDFromString(item.CollectableID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode collectable id", err)
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode collectable timestamp", err)
	}
	return entities.ReconstructCollectable(id, item.Name, item.Description, item.RarityID, createdAt)
}

func collectablePK(id valueobjects.CollectableID) string {
	return fmt.Sprintf("COLLECTABLE#%s", id.String())
}
