package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	mu          sync.Mutex
	pending     []types.Message
	deleted     []string
	visibility  map[string]int32
	receiveErrs int
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.receiveErrs > 0 {
		f.receiveErrs--
		return nil, errors.New("throttled")
	}

	out := &sqs.ReceiveMessageOutput{Messages: f.pending}
	f.pending = nil
	return out, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) ChangeMessageVisibility(_ context.Context, params *sqs.ChangeMessageVisibilityInput, _ ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visibility == nil {
		f.visibility = make(map[string]int32)
	}
	f.visibility[aws.ToString(params.ReceiptHandle)] = params.VisibilityTimeout
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

func (f *fakeSQS) snapshot() ([]string, map[string]int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	visibility := make(map[string]int32, len(f.visibility))
	for k, v := range f.visibility {
		visibility[k] = v
	}
	return append([]string(nil), f.deleted...), visibility
}

type handlerFunc func(ctx context.Context, event *events.Event) error

func (f handlerFunc) Handle(ctx context.Context, event *events.Event) error { return f(ctx, event) }

func sqsBody(t *testing.T, topic events.Topic, data interface{}) *string {
	t.Helper()
	raw, err := events.NewEvent(models.GenerateUUID(), topic, data).ToJSON()
	require.NoError(t, err)
	return aws.String(string(raw))
}

func TestSQSEventSubscriber_AcksAndRedelivers(t *testing.T) {
	corr := models.GenerateUUID()
	client := &fakeSQS{
		receiveErrs: 1,
		pending: []types.Message{
			{
				MessageId:     aws.String("m-ok"),
				ReceiptHandle: aws.String("r-ok"),
				Body:          sqsBody(t, events.GilDebitedTopic, events.GilDebited{CorrelationID: corr}),
				MessageAttributes: map[string]types.MessageAttributeValue{
					events.ReplyToKey: {DataType: aws.String("String"), StringValue: aws.String("reply-topic")},
				},
			},
			{
				MessageId:     aws.String("m-fail"),
				ReceiptHandle: aws.String("r-fail"),
				Body:          sqsBody(t, events.InventoryItemsGrantedTopic, events.InventoryItemsGranted{CorrelationID: corr}),
				Attributes:    map[string]string{"ApproximateReceiveCount": "4"},
			},
			{
				MessageId:     aws.String("m-garbage"),
				ReceiptHandle: aws.String("r-garbage"),
				Body:          aws.String("{not json"),
			},
		},
	}

	var mu sync.Mutex
	seen := make(map[events.Topic]events.Metadata)
	handler := handlerFunc(func(_ context.Context, event *events.Event) error {
		mu.Lock()
		seen[event.Topic] = event.Metadata
		mu.Unlock()
		if event.Topic == events.InventoryItemsGrantedTopic {
			return errors.New("store unavailable")
		}
		return nil
	})

	subscriber := NewSQSEventSubscriber(client, "queue", handler,
		WithWorkers(2),
		WithWaitTimeSeconds(0),
		WithEmptyReceiveSleep(5*time.Millisecond),
		func(o *sqsSubscriberOptions) { o.sleepTimeAfterError = 5 * time.Millisecond },
	)

	require.NoError(t, subscriber.Start(context.Background()))
	t.Cleanup(func() { _ = subscriber.Stop(context.Background()) })

	assert.Eventually(t, func() bool {
		deleted, visibility := client.snapshot()
		return len(deleted) == 1 && len(visibility) == 1
	}, 2*time.Second, 5*time.Millisecond)

	deleted, visibility := client.snapshot()
	assert.Equal(t, []string{"r-ok"}, deleted)
	// 30s base + (4/3)*30s offset
	assert.Equal(t, int32(60), visibility["r-fail"])

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, seen, events.GilDebitedTopic)
	assert.Equal(t, "reply-topic", seen[events.GilDebitedTopic][events.ReplyToKey])
	assert.Equal(t, "m-ok", seen[events.GilDebitedTopic][SQSMessageIDKey])
	assert.Equal(t, "4", seen[events.InventoryItemsGrantedTopic][SQSReceiveCountKey])
}

func TestSQSEventSubscriber_VisibilityTimeoutIsCapped(t *testing.T) {
	subscriber := NewSQSEventSubscriber(&fakeSQS{}, "queue", handlerFunc(func(context.Context, *events.Event) error { return nil }))

	assert.Equal(t, int32(30), subscriber.visibilityTimeoutFor(1))
	assert.Equal(t, int32(90), subscriber.visibilityTimeoutFor(6))
	assert.Equal(t, int32(900), subscriber.visibilityTimeoutFor(1000))
}

func TestSQSEventSubscriber_StartRequiresHandler(t *testing.T) {
	subscriber := NewSQSEventSubscriber(&fakeSQS{}, "queue", nil)
	assert.Error(t, subscriber.Start(context.Background()))
	assert.NoError(t, subscriber.Stop(context.Background()))
}
