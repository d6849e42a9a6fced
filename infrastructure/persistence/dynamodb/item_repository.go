package dynamodb

import (
	"errors"
	"fmt"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/core/entities"
	"scandex-backend/domain/core/valueobjects"
	pkgerrors "scandex-backend/pkg/errors"
	"scandex-backend/pkg/utils"
)

// ItemRepository implements ports.ItemRepository on the single table. Owned
// items hang off a GSI1 owner partition; ownership transfers rewrite both the
// owner attribute and the index key under one condition.
type ItemRepository struct {
	client     *dynamodb.Client
	tableName  string
	indexName  string
	resilience *Resilience
	logger     *zap.Logger
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(client *dynamodb.Client, tableName, indexName string, resilience *Resilience, logger *zap.Logger) ports.ItemRepository {
	return &ItemRepository{
		client:     client,
		tableName:  tableName,
		indexName:  indexName,
		resilience: resilience,
		logger:     logger,
	}
}

// itemItem represents the DynamoDB item structure for an owned item
type itemItem struct {
	PK            string  `dynamodbav:"PK"`
	SK            string  `dynamodbav:"SK"`
	GSI1PK        string  `dynamodbav:"GSI1PK"`
	GSI1SK        string  `dynamodbav:"GSI1SK"`
	EntityType    string  `dynamodbav:"EntityType"`
	ItemID        string  `dynamodbav:"ItemID"`
	OwnerID       string  `dynamodbav:"OwnerID"`
	CollectableID string  `dynamodbav:"CollectableID"`
	Quality       int     `dynamodbav:"Quality"`
	Chance        float64 `dynamodbav:"Chance"`
	FoundAt       string  `dynamodbav:"FoundAt"`
}

// Save persists a new item. Re-minting an existing id is rejected.
func (r *ItemRepository) Save(ctx context.Context, item *entities.Item) error {
	record := itemItem{
		PK:            itemPK(item.ID()),
		SK:            "METADATA",
		GSI1PK:        ownerPK(item.PlayerID()),
		GSI1SK:        ownerSK(item.ID()),
		EntityType:    "ITEM",
		ItemID:        item.ID().String(),
		OwnerID:       item.PlayerID().String(),
		CollectableID: item.CollectableID().String(),
		Quality:       item.Quality(),
		Chance:        item.Chance(),
		FoundAt:       utils.FormatTime(item.FoundAt()),
	}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal item", err)
	}

	return r.resilience.Execute(ctx, "PutItem", func() error {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		})
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				return pkgerrors.NewConflictError("item already exists")
			}
			return pkgerrors.NewDatabaseError("save item", err)
		}
		return nil
	})
}

// GetByID retrieves an item by id
func (r *ItemRepository) GetByID(ctx context.Context, id valueobjects.ItemID) (*entities.Item, error) {
	var item itemItem
	err := r.resilience.Execute(ctx, "GetItem", func() error {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: itemPK(id)},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
			ConsistentRead: aws.Bool(true),
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("get item", err)
		}
		if out.Item == nil {
			return pkgerrors.NewNotFoundError("item")
		}
		return attributevalue.UnmarshalMap(out.Item, &item)
	})
	if err != nil {
		return nil, err
	}
	return r.toEntity(item)
}

// GetByPlayerID retrieves every item owned by a player via the owner index
func (r *ItemRepository) GetByPlayerID(ctx context.Context, playerID valueobjects.PlayerID) ([]*entities.Item, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(ownerPK(playerID))).
		And(expression.Key("GSI1SK").BeginsWith("ITEM#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build item query", err)
	}

	var items []*entities.Item
	err = r.resilience.Execute(ctx, "Query", func() error {
		items = items[:0]
		var startKey map[string]types.AttributeValue
		for {
			out, err := r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
				IndexName:                 aws.String(r.indexName),
				KeyConditionExpression:    expr.KeyCondition(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				ExclusiveStartKey:         startKey,
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("query items by player", err)
			}
			for _, raw := range out.Items {
				var item itemItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return pkgerrors.NewDatabaseError("unmarshal item", err)
				}
				entity, err := r.toEntity(item)
				if err != nil {
					return err
				}
				items = append(items, entity)
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
	return items, nil
}

// TransferOwnershipWithUoW enlists the conditional ownership rewrite in the
// unit of work. The condition pins the stored owner to expectedOwner; a
// concurrent settlement that moved the item first fails the whole commit
// with an ownership error.
func (r *ItemRepository) TransferOwnershipWithUoW(ctx context.Context, uow ports.UnitOfWork, item *entities.Item, expectedOwner valueobjects.PlayerID) error {
	dynamoUoW, ok := uow.(*UnitOfWork)
	if !ok {
		return errors.New("invalid unit of work type")
	}

	update := expression.Set(expression.Name("OwnerID"), expression.Value(item.PlayerID().String())).
		Set(expression.Name("GSI1PK"), expression.Value(ownerPK(item.PlayerID())))
	cond := expression.Name("OwnerID").Equal(expression.Value(expectedOwner.String()))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build transfer update", err)
	}

	write := types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: itemPK(item.ID())},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}

	return dynamoUoW.RegisterWrite(write, pkgerrors.NewOwnershipError(item.ID().String(), expectedOwner.String()))
}

func (r *ItemRepository) toEntity(item itemItem) (*entities.Item, error) {
	id, err := valueobjects.ItemIDFromString(item.ItemID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode item id", err)
	}
	ownerID, err := valueobjects.PlayerIDFromString(item.OwnerID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode item owner", err)
	}
	collectableID, err := valueobjects.CollectableIDFromString(item.CollectableID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode item collectable", err)
	}
	foundAt, err := utils.ParseRFC3339(item.FoundAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode item timestamp", err)
	}
	return entities.ReconstructItem(id, ownerID, collectableID, item.Quality, item.Chance, foundAt)
}

func itemPK(id valueobjects.ItemID) string {
	return fmt.Sprintf("ITEM#%s", id.String())
}

func ownerPK(id valueobjects.PlayerID) string {
	return fmt.Sprintf("PLAYER#%s", id.String())
}

func ownerSK(id valueobjects.ItemID) string {
	return fmt.Sprintf("ITEM#%s", id.String())
}
