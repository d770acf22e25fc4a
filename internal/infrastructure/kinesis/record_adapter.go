package kinesis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/infrastructure/store"
)

// ConvertFromKinesisRecord converts a Kinesis record (DynamoDB Streams
// format) into a store.Event. The DynamoDB Kinesis integration wraps stream
// records in Kinesis data payloads.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*store.Event, error) {
	var streamRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &streamRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB record: %w", err)
	}
	return ConvertFromDynamoDBStreamRecord(streamRecord)
}

// ConvertFromDynamoDBStreamRecord converts a DynamoDB Stream record into a
// store.Event. Only INSERTs are meaningful: the ledger is append-only.
func ConvertFromDynamoDBStreamRecord(record events.DynamoDBEventRecord) (*store.Event, error) {
	if record.EventName != "INSERT" {
		return nil, nil
	}
	return convertDynamoDBImage(record.Change.NewImage)
}

func convertDynamoDBImage(image map[string]events.DynamoDBAttributeValue) (*store.Event, error) {
	if image == nil {
		return nil, fmt.Errorf("DynamoDB image is nil")
	}

	event := &store.Event{AggregateType: activity.AggregateType}

	if v, ok := image["id"]; ok {
		event.ID = v.String()
	}
	if v, ok := image["parent_id"]; ok {
		event.AggregateID = v.String()
	}
	if v, ok := image["event_type"]; ok {
		event.EventType = v.String()
	}
	if v, ok := image["data"]; ok {
		event.Data = json.RawMessage(v.String())
	}
	if v, ok := image["version"]; ok {
		n, err := strconv.Atoi(v.Number())
		if err != nil {
			return nil, fmt.Errorf("invalid version attribute: %w", err)
		}
		event.Version = n
	}
	if v, ok := image["appended_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, fmt.Errorf("invalid appended_at attribute: %w", err)
		}
		event.Timestamp = t
	}

	if event.ID == "" || event.AggregateID == "" || event.EventType == "" {
		return nil, fmt.Errorf("incomplete snapshot image")
	}
	return event, nil
}
