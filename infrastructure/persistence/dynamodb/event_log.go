package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scandex-backend/application/ports"
	"scandex-backend/domain/events"
	pkgerrors "scandex-backend/pkg/errors"
)

// eventLogTTL keeps audit rows for 90 days
const eventLogTTL = 90 * 24 * time.Hour

// EventLog persists domain events to the table as an append-only audit
// trail. It implements ports.EventPublisher so it can sit behind the same
// fan-out as the external bus.
type EventLog struct {
	client     *dynamodb.Client
	tableName  string
	resilience *Resilience
	logger     *zap.Logger
}

// NewEventLog creates a new event log
func NewEventLog(client *dynamodb.Client, tableName string, resilience *Resilience, logger *zap.Logger) *EventLog {
	return &EventLog{client: client, tableName: tableName, resilience: resilience, logger: logger}
}

// eventRecord represents how events are stored in DynamoDB
type eventRecord struct {
	PK          string `dynamodbav:"PK"` // EVENTS#<aggregate_id>
	SK          string `dynamodbav:"SK"` // EVENT#<timestamp>#<event_id>
	EntityType  string `dynamodbav:"EntityType"`
	EventID     string `dynamodbav:"EventID"`
	EventType   string `dynamodbav:"EventType"`
	AggregateID string `dynamodbav:"AggregateID"`
	EventData   string `dynamodbav:"EventData"`
	Timestamp   string `dynamodbav:"Timestamp"`
	TTL         int64  `dynamodbav:"TTL"`
}

// Publish appends one event to the log
func (l *EventLog) Publish(ctx context.Context, event events.DomainEvent) error {
	record, err := l.toRecord(event)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal event record", err)
	}

	return l.resilience.Execute(ctx, "PutItem", func() error {
		_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(l.tableName),
			Item:      av,
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("append event", err)
		}
		return nil
	})
}

// PublishBatch appends multiple events to the log
func (l *EventLog) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(domainEvents))
	for _, event := range domainEvents {
		record, err := l.toRecord(event)
		if err != nil {
			return err
		}
		av, err := attributevalue.MarshalMap(record)
		if err != nil {
			return pkgerrors.NewDatabaseError("marshal event record", err)
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}

	for start := 0; start < len(requests); start += batchWriteChunk {
		end := min(start+batchWriteChunk, len(requests))
		batch := map[string][]types.WriteRequest{l.tableName: requests[start:end]}

		err := l.resilience.Execute(ctx, "BatchWriteItem", func() error {
			for len(batch[l.tableName]) > 0 {
				out, err := l.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
					RequestItems: batch,
				})
				if err != nil {
					return pkgerrors.NewDatabaseError("append events", err)
				}
				if len(out.UnprocessedItems) == 0 {
					return nil
				}
				batch = out.UnprocessedItems
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *EventLog) toRecord(event events.DomainEvent) (eventRecord, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return eventRecord{}, pkgerrors.NewDatabaseError("encode event", err)
	}

	eventID := uuid.New().String()
	ts := event.GetTimestamp().UTC().Format(time.RFC3339Nano)

	return eventRecord{
		PK:          fmt.Sprintf("EVENTS#%s", event.GetAggregateID()),
		SK:          fmt.Sprintf("EVENT#%s#%s", ts, eventID),
		EntityType:  "EVENT",
		EventID:     eventID,
		EventType:   event.GetEventType(),
		AggregateID: event.GetAggregateID(),
		EventData:   string(data),
		Timestamp:   ts,
		TTL:         event.GetTimestamp().Add(eventLogTTL).Unix(),
	}, nil
}

var _ ports.EventPublisher = (*EventLog)(nil)
