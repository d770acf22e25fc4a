package kinesis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/crm-ledger/internal/domain/activity"
)

func insertRecord(image map[string]events.DynamoDBAttributeValue) events.DynamoDBEventRecord {
	return events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change: events.DynamoDBStreamRecord{
			NewImage: image,
		},
	}
}

func snapshotImage() map[string]events.DynamoDBAttributeValue {
	data, _ := json.Marshal(activity.Snapshot{
		ID: "s2", ParentID: "s1", Version: 2,
		Type: activity.TypeTask, Status: activity.StatusCompleted,
		Title: "Done", OwnerID: "t-mia", Datetime: time.Now(),
	})
	return map[string]events.DynamoDBAttributeValue{
		"id":          events.NewStringAttribute("s2"),
		"parent_id":   events.NewStringAttribute("s1"),
		"event_type":  events.NewStringAttribute(activity.EventSnapshotAppended),
		"data":        events.NewStringAttribute(string(data)),
		"version":     events.NewNumberAttribute("2"),
		"appended_at": events.NewStringAttribute(time.Now().Format(time.RFC3339Nano)),
	}
}

func TestConvertFromDynamoDBStreamRecord(t *testing.T) {
	event, err := ConvertFromDynamoDBStreamRecord(insertRecord(snapshotImage()))
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, "s2", event.ID)
	assert.Equal(t, "s1", event.AggregateID)
	assert.Equal(t, activity.AggregateType, event.AggregateType)
	assert.Equal(t, activity.EventSnapshotAppended, event.EventType)
	assert.Equal(t, 2, event.Version)
	assert.False(t, event.Timestamp.IsZero())

	var snap activity.Snapshot
	require.NoError(t, json.Unmarshal(event.Data, &snap))
	assert.Equal(t, "Done", snap.Title)
}

func TestConvertFromDynamoDBStreamRecord_NonInsertSkipped(t *testing.T) {
	record := insertRecord(snapshotImage())
	record.EventName = "MODIFY"

	event, err := ConvertFromDynamoDBStreamRecord(record)
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestConvertFromDynamoDBStreamRecord_IncompleteImage(t *testing.T) {
	image := snapshotImage()
	delete(image, "parent_id")

	_, err := ConvertFromDynamoDBStreamRecord(insertRecord(image))
	assert.Error(t, err)
}

func TestConvertFromDynamoDBStreamRecord_BadVersion(t *testing.T) {
	image := snapshotImage()
	image["version"] = events.NewNumberAttribute("two")

	_, err := ConvertFromDynamoDBStreamRecord(insertRecord(image))
	assert.Error(t, err)
}

func TestConvertFromDynamoDBStreamRecord_BadTimestamp(t *testing.T) {
	image := snapshotImage()
	image["appended_at"] = events.NewStringAttribute("yesterday")

	_, err := ConvertFromDynamoDBStreamRecord(insertRecord(image))
	assert.Error(t, err)
}

func TestConvertFromKinesisRecord(t *testing.T) {
	streamRecord := insertRecord(snapshotImage())
	payload, err := json.Marshal(streamRecord)
	require.NoError(t, err)

	event, err := ConvertFromKinesisRecord(events.KinesisEventRecord{
		Kinesis: events.KinesisRecord{Data: payload},
	})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "s2", event.ID)
}

func TestConvertFromKinesisRecord_BadPayload(t *testing.T) {
	_, err := ConvertFromKinesisRecord(events.KinesisEventRecord{
		Kinesis: events.KinesisRecord{Data: []byte("{not json")},
	})
	assert.Error(t, err)
}
