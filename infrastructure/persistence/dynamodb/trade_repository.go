package dynamodb

import (
	"errors"
	"fmt"
	"time"
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

// TradeRepository implements ports.TradeRepository on the single table.
// Each trade row is indexed twice: GSI1 under the offering player and GSI2
// under the receiving player. Saving a trade also writes one ITEMREF row per
// referenced item, which is how settlement finds conflicting pending trades
// without a scan.
type TradeRepository struct {
	client     *dynamodb.Client
	tableName  string
	indexName  string
	gsi2Name   string
	resilience *Resilience
	logger     *zap.Logger
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(client *dynamodb.Client, tableName, indexName, gsi2Name string, resilience *Resilience, logger *zap.Logger) ports.TradeRepository {
	return &TradeRepository{
		client:     client,
		tableName:  tableName,
		indexName:  indexName,
		gsi2Name:   gsi2Name,
		resilience: resilience,
		logger:     logger,
	}
}

// tradeItem represents the DynamoDB item structure for a trade
type tradeItem struct {
	PK               string   `dynamodbav:"PK"`
	SK               string   `dynamodbav:"SK"`
	GSI1PK           string   `dynamodbav:"GSI1PK"`
	GSI1SK           string   `dynamodbav:"GSI1SK"`
	GSI2PK           string   `dynamodbav:"GSI2PK"`
	GSI2SK           string   `dynamodbav:"GSI2SK"`
	EntityType       string   `dynamodbav:"EntityType"`
	TradeID          string   `dynamodbav:"TradeID"`
	FromPlayerID     string   `dynamodbav:"FromPlayerID"`
	ToPlayerID       string   `dynamodbav:"ToPlayerID"`
	OfferedItemIDs   []string `dynamodbav:"OfferedItemIDs"`
	RequestedItemIDs []string `dynamodbav:"RequestedItemIDs"`
	Status           string   `dynamodbav:"Status"`
	CreatedAt        string   `dynamodbav:"CreatedAt"`
	ResolvedAt       string   `dynamodbav:"ResolvedAt,omitempty"`
}

// tradeRefItem is the item-reference row keyed by referenced item id
type tradeRefItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	TradeID    string `dynamodbav:"TradeID"`
	ItemID     string `dynamodbav:"ItemID"`
}

// Save persists a new trade offer together with its item-reference rows in
// one transaction
func (r *TradeRepository) Save(ctx context.Context, trade *entities.Trade) error {
	av, err := attributevalue.MarshalMap(r.toItem(trade))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal trade", err)
	}

	writes := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		},
	}}

	for _, itemID := range trade.AllItemIDs() {
		ref := tradeRefItem{
			PK:         itemRefPK(itemID),
			SK:         tradeSK(trade.ID()),
			EntityType: "TRADEREF",
			TradeID:    trade.ID().String(),
			ItemID:     itemID.String(),
		}
		refAV, err := attributevalue.MarshalMap(ref)
		if err != nil {
			return pkgerrors.NewDatabaseError("marshal trade reference", err)
		}
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      refAV,
			},
		})
	}

	return r.resilience.Execute(ctx, "TransactWriteItems", func() error {
		_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: writes,
		})
		if err != nil {
			var cancelled *types.TransactionCanceledException
			if errors.As(err, &cancelled) {
				for _, reason := range cancelled.CancellationReasons {
					if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
						return pkgerrors.NewConflictError("trade already exists")
					}
				}
			}
			return pkgerrors.NewDatabaseError("save trade", err)
		}
		return nil
	})
}

// GetByID retrieves a trade by id
func (r *TradeRepository) GetByID(ctx context.Context, id valueobjects.TradeID) (*entities.Trade, error) {
	var item tradeItem
	err := r.resilience.Execute(ctx, "GetItem", func() error {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: tradePK(id)},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
			ConsistentRead: aws.Bool(true),
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("get trade", err)
		}
		if out.Item == nil {
			return pkgerrors.NewNotFoundError("trade")
		}
		return attributevalue.UnmarshalMap(out.Item, &item)
	})
	if err != nil {
		return nil, err
	}
	return r.toEntity(item)
}

// GetByPlayerID retrieves trades where the player is on the given side
func (r *TradeRepository) GetByPlayerID(ctx context.Context, playerID valueobjects.PlayerID, direction ports.TradeDirection) ([]*entities.Trade, error) {
	switch direction {
	case ports.TradeDirectionOutgoing:
		return r.queryByIndex(ctx, r.indexName, "GSI1PK", playerID)
	case ports.TradeDirectionIncoming:
		return r.queryByIndex(ctx, r.gsi2Name, "GSI2PK", playerID)
	case ports.TradeDirectionAll:
		outgoing, err := r.queryByIndex(ctx, r.indexName, "GSI1PK", playerID)
		if err != nil {
			return nil, err
		}
		incoming, err := r.queryByIndex(ctx, r.gsi2Name, "GSI2PK", playerID)
		if err != nil {
			return nil, err
		}
		return append(outgoing, incoming...), nil
	default:
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown trade direction %q", direction))
	}
}

func (r *TradeRepository) queryByIndex(ctx context.Context, indexName, keyAttr string, playerID valueobjects.PlayerID) ([]*entities.Trade, error) {
	// The sort key attribute pairs with the partition attribute per index
	sortAttr := "GSI1SK"
	if keyAttr == "GSI2PK" {
		sortAttr = "GSI2SK"
	}
	cond := expression.Key(keyAttr).Equal(expression.Value(ownerPK(playerID))).
		And(expression.Key(sortAttr).BeginsWith("TRADE#"))
	expr, err := expression.NewBuilder().WithKeyCondition(cond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build trade query", err)
	}

	var trades []*entities.Trade
	err = r.resilience.Execute(ctx, "Query", func() error {
		trades = trades[:0]
		var startKey map[string]types.AttributeValue
		for {
			out, err := r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
				IndexName:                 aws.String(indexName),
				KeyConditionExpression:    expr.KeyCondition(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				ScanIndexForward:          aws.Bool(false),
				ExclusiveStartKey:         startKey,
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("query trades by player", err)
			}
			for _, raw := range out.Items {
				var item tradeItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return pkgerrors.NewDatabaseError("unmarshal trade", err)
				}
				trade, err := r.toEntity(item)
				if err != nil {
					return err
				}
				trades = append(trades, trade)
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
	return trades, nil
}

// FindPendingByItemID retrieves PENDING trades referencing the item by
// walking its ITEMREF rows
func (r *TradeRepository) FindPendingByItemID(ctx context.Context, itemID valueobjects.ItemID) ([]*entities.Trade, error) {
	var refs []tradeRefItem
	err := r.resilience.Execute(ctx, "Query", func() error {
		refs = refs[:0]
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: itemRefPK(itemID)},
				":sk": &types.AttributeValueMemberS{Value: "TRADE#"},
			},
			ConsistentRead: aws.Bool(true),
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("query trade references", err)
		}
		for _, raw := range out.Items {
			var ref tradeRefItem
			if err := attributevalue.UnmarshalMap(raw, &ref); err != nil {
				return pkgerrors.NewDatabaseError("unmarshal trade reference", err)
			}
			refs = append(refs, ref)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pending := make([]*entities.Trade, 0, len(refs))
	for _, ref := range refs {
		tradeID, err := valueobjects.TradeIDFromString(ref.TradeID)
		if err != nil {
			continue
		}
		trade, err := r.GetByID(ctx, tradeID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if trade.Status() == entities.TradeStatusPending {
			pending = append(pending, trade)
		}
	}
	return pending, nil
}

// UpdateStatus persists a status transition, conditioned on the stored trade
// still being in expectedStatus
func (r *TradeRepository) UpdateStatus(ctx context.Context, trade *entities.Trade, expectedStatus entities.TradeStatus) error {
	expr, err := r.statusUpdateExpression(trade, expectedStatus)
	if err != nil {
		return err
	}

	return r.resilience.Execute(ctx, "UpdateItem", func() error {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: tradePK(trade.ID())},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				return r.staleStatusError(ctx, trade.ID())
			}
			return pkgerrors.NewDatabaseError("update trade status", err)
		}
		return nil
	})
}

// UpdateStatusWithUoW enlists the status transition in the unit of work
func (r *TradeRepository) UpdateStatusWithUoW(ctx context.Context, uow ports.UnitOfWork, trade *entities.Trade, expectedStatus entities.TradeStatus) error {
	dynamoUoW, ok := uow.(*UnitOfWork)
	if !ok {
		return errors.New("invalid unit of work type")
	}

	expr, err := r.statusUpdateExpression(trade, expectedStatus)
	if err != nil {
		return err
	}

	write := types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: tradePK(trade.ID())},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}

	return dynamoUoW.RegisterWrite(write,
		pkgerrors.NewInvalidStateError("settle", "already resolved"))
}

func (r *TradeRepository) statusUpdateExpression(trade *entities.Trade, expectedStatus entities.TradeStatus) (expression.Expression, error) {
	resolvedAt := ""
	if t := trade.ResolvedAt(); t != nil {
		resolvedAt = utils.FormatTime(*t)
	}

	update := expression.Set(expression.Name("Status"), expression.Value(string(trade.Status()))).
		Set(expression.Name("ResolvedAt"), expression.Value(resolvedAt))
	cond := expression.Name("Status").Equal(expression.Value(string(expectedStatus)))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return expression.Expression{}, pkgerrors.NewDatabaseError("build status update", err)
	}
	return expr, nil
}

// staleStatusError re-reads the trade so the invalid-state error can report
// the actual current status
func (r *TradeRepository) staleStatusError(ctx context.Context, id valueobjects.TradeID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.NewInvalidStateError("settle", "unknown")
	}
	return pkgerrors.NewInvalidStateError("settle", string(current.Status()))
}

func (r *TradeRepository) toItem(trade *entities.Trade) tradeItem {
	item := tradeItem{
		PK:               tradePK(trade.ID()),
		SK:               "METADATA",
		GSI1PK:           ownerPK(trade.FromPlayerID()),
		GSI1SK:           tradeIndexSK(trade),
		GSI2PK:           ownerPK(trade.ToPlayerID()),
		GSI2SK:           tradeIndexSK(trade),
		EntityType:       "TRADE",
		TradeID:          trade.ID().String(),
		FromPlayerID:     trade.FromPlayerID().String(),
		ToPlayerID:       trade.ToPlayerID().String(),
		OfferedItemIDs:   idStrings(trade.OfferedItemIDs()),
		RequestedItemIDs: idStrings(trade.RequestedItemIDs()),
		Status:           string(trade.Status()),
		CreatedAt:        utils.FormatTime(trade.CreatedAt()),
	}
	if t := trade.ResolvedAt(); t != nil {
		item.ResolvedAt = utils.FormatTime(*t)
	}
	return item
}

func (r *TradeRepository) toEntity(item tradeItem) (*entities.Trade, error) {
	id, err := valueobjects.TradeIDFromString(item.TradeID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode trade id", err)
	}
	fromID, err := valueobjects.PlayerIDFromString(item.FromPlayerID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode trade offerer", err)
	}
	toID, err := valueobjects.PlayerIDFromString(item.ToPlayerID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode trade receiver", err)
	}
	offered, err := parseItemIDs(item.OfferedItemIDs)
	if err != nil {
		return nil, err
	}
	requested, err := parseItemIDs(item.RequestedItemIDs)
	if err != nil {
		return nil, err
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode trade timestamp", err)
	}
	var resolvedAt *time.Time
	if item.ResolvedAt != "" {
		t, err := utils.ParseRFC3339(item.ResolvedAt)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("decode trade resolution timestamp", err)
		}
		resolvedAt = &t
	}

	return entities.ReconstructTrade(id, fromID, toID, offered, requested,
		entities.TradeStatus(item.Status), createdAt, resolvedAt)
}

func parseItemIDs(raw []string) ([]valueobjects.ItemID, error) {
	ids := make([]valueobjects.ItemID, 0, len(raw))
	for _, s := range raw {
		id, err := valueobjects.ItemIDFromString(s)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("decode trade item reference", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func idStrings(ids []valueobjects.ItemID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func tradePK(id valueobjects.TradeID) string {
	return fmt.Sprintf("TRADE#%s", id.String())
}

func tradeSK(id valueobjects.TradeID) string {
	return fmt.Sprintf("TRADE#%s", id.String())
}

func tradeIndexSK(trade *entities.Trade) string {
	return fmt.Sprintf("TRADE#%s#%s", utils.FormatTime(trade.CreatedAt()), trade.ID().String())
}

func itemRefPK(id valueobjects.ItemID) string {
	return fmt.Sprintf("ITEMREF#%s", id.String())
}
