package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/crm-ledger/internal/domain/activity"
)

// DynamoLedger stores activity snapshots in DynamoDB. The table streams to
// Kinesis via the DynamoDB Kinesis integration, so no Kafka producer is
// attached: downstream projectors consume the stream instead.
type DynamoLedger struct {
	client    *dynamodb.Client
	tableName string
}

const (
	dynamoParentIndex = "parent-index"
	dynamoAllIndex    = "all-index"
	dynamoAllKey      = "SNAPSHOTS"
)

// dynamoSnapshot is the DynamoDB item layout. The full snapshot rides in the
// data attribute; the typed attributes exist for keys and indexes only.
type dynamoSnapshot struct {
	ID         string `dynamodbav:"id"`
	ParentID   string `dynamodbav:"parent_id"`
	Version    int    `dynamodbav:"version"`
	EventType  string `dynamodbav:"event_type"`
	Data       string `dynamodbav:"data"`
	AppendedAt string `dynamodbav:"appended_at"`
	GSIAllPK   string `dynamodbav:"gsi_all_pk"`
}

func NewDynamoLedger(client *dynamodb.Client, tableName string) *DynamoLedger {
	return &DynamoLedger{client: client, tableName: tableName}
}

func (l *DynamoLedger) Append(ctx context.Context, snap activity.Snapshot, eventType string) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	item := dynamoSnapshot{
		ID:         snap.ID,
		ParentID:   snap.ParentID,
		Version:    snap.Version,
		EventType:  eventType,
		Data:       string(data),
		AppendedAt: time.Now().Format(time.RFC3339Nano),
		GSIAllPK:   dynamoAllKey,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}

func (l *DynamoLedger) Get(id string) (activity.Snapshot, bool) {
	out, err := l.client.GetItem(context.Background(), &dynamodb.GetItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil || out.Item == nil {
		if err != nil {
			log.Printf("[DynamoLedger] Failed to get snapshot %s: %v", id, err)
		}
		return activity.Snapshot{}, false
	}
	snap, err := unmarshalDynamoSnapshot(out.Item)
	if err != nil {
		log.Printf("[DynamoLedger] Failed to unmarshal snapshot %s: %v", id, err)
		return activity.Snapshot{}, false
	}
	return snap, true
}

func (l *DynamoLedger) Group(parentID string) []activity.Snapshot {
	return l.queryIndex(dynamoParentIndex, "parent_id = :pk", map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: parentID},
	})
}

func (l *DynamoLedger) All() []activity.Snapshot {
	return l.queryIndex(dynamoAllIndex, "gsi_all_pk = :pk", map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: dynamoAllKey},
	})
}

// queryIndex pages through a GSI; the appended_at range key keeps results in
// insertion order.
func (l *DynamoLedger) queryIndex(index, keyCond string, values map[string]types.AttributeValue) []activity.Snapshot {
	var out []activity.Snapshot
	var startKey map[string]types.AttributeValue

	for {
		resp, err := l.client.Query(context.Background(), &dynamodb.QueryInput{
			TableName:                 aws.String(l.tableName),
			IndexName:                 aws.String(index),
			KeyConditionExpression:    aws.String(keyCond),
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
			ScanIndexForward:          aws.Bool(true),
		})
		if err != nil {
			log.Printf("[DynamoLedger] Query on %s failed: %v", index, err)
			return out
		}
		for _, item := range resp.Items {
			snap, err := unmarshalDynamoSnapshot(item)
			if err != nil {
				log.Printf("[DynamoLedger] Failed to unmarshal item: %v", err)
				continue
			}
			out = append(out, snap)
		}
		if resp.LastEvaluatedKey == nil {
			return out
		}
		startKey = resp.LastEvaluatedKey
	}
}

func unmarshalDynamoSnapshot(item map[string]types.AttributeValue) (activity.Snapshot, error) {
	var row dynamoSnapshot
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return activity.Snapshot{}, err
	}
	var snap activity.Snapshot
	if err := json.Unmarshal([]byte(row.Data), &snap); err != nil {
		return activity.Snapshot{}, err
	}
	return snap, nil
}
