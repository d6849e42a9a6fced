package dynamodb

import (
	"fmt"
	"strings"
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

// PlayerRepository implements ports.PlayerRepository on the single table
type PlayerRepository struct {
	client     *dynamodb.Client
	tableName  string
	indexName  string
	resilience *Resilience
	logger     *zap.Logger
}

// NewPlayerRepository creates a new PlayerRepository
func NewPlayerRepository(client *dynamodb.Client, tableName, indexName string, resilience *Resilience, logger *zap.Logger) ports.PlayerRepository {
	return &PlayerRepository{
		client:     client,
		tableName:  tableName,
		indexName:  indexName,
		resilience: resilience,
		logger:     logger,
	}
}

// playerItem represents the DynamoDB item structure for a player
type playerItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	PlayerID    string `dynamodbav:"PlayerID"`
	Email       string `dynamodbav:"Email"`
	DisplayName string `dynamodbav:"DisplayName"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
}

// Save persists a player
func (r *PlayerRepository) Save(ctx context.Context, player *entities.Player) error {
	item := playerItem{
		PK:          playerPK(player.ID()),
		SK:          "METADATA",
		GSI1PK:      fmt.Sprintf("EMAIL#%s", strings.ToLower(player.Email())),
		GSI1SK:      "PLAYER",
		EntityType:  "PLAYER",
		PlayerID:    player.ID().String(),
		Email:       player.Email(),
		DisplayName: player.DisplayName(),
		CreatedAt:   utils.FormatTime(player.CreatedAt()),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal player", err)
	}

	return r.resilience.Execute(ctx, "PutItem", func() error {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      av,
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("save player", err)
		}
		return nil
	})
}

// GetByID retrieves a player by id
func (r *PlayerRepository) GetByID(ctx context.Context, id valueobjects.PlayerID) (*entities.Player, error) {
	var item playerItem
	err := r.resilience.Execute(ctx, "GetItem", func() error {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: playerPK(id)},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("get player", err)
		}
		if out.Item == nil {
			return pkgerrors.NewNotFoundError("player")
		}
		return attributevalue.UnmarshalMap(out.Item, &item)
	})
	if err != nil {
		return nil, err
	}
	return r.toEntity(item)
}

// GetByEmail retrieves a player by email via the GSI1 email index
func (r *PlayerRepository) GetByEmail(ctx context.Context, email string) (*entities.Player, error) {
	var item playerItem
	err := r.resilience.Execute(ctx, "Query", func() error {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(r.indexName),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EMAIL#%s", strings.ToLower(email))},
			},
			Limit: aws.Int32(1),
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("query player by email", err)
		}
		if len(out.Items) == 0 {
			return pkgerrors.NewNotFoundError("player")
		}
		return attributevalue.UnmarshalMap(out.Items[0], &item)
	})
	if err != nil {
		return nil, err
	}
	return r.toEntity(item)
}

func (r *PlayerRepository) toEntity(item playerItem) (*entities.Player, error) {
	id, err := valueobjects.PlayerIDFromString(item.PlayerID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode player id", err)
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("decode player timestamp", err)
	}
	return entities.ReconstructPlayer(id, item.Email, item.DisplayName, createdAt)
}

func playerPK(id valueobjects.PlayerID) string {
	return fmt.Sprintf("PLAYER#%s", id.String())
}
