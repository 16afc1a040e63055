package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/draftea/trading-system/shared/events"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var _ events.Publisher = (*SNSEventPublisher)(nil)

const maxBatchSize = 10

// ErrNoDestination is returned when an event topic has no configured destination
var ErrNoDestination = errors.New("no destination configured for topic")

// SNSAPI is the subset of the SNS client used by the publisher
type SNSAPI interface {
	PublishBatch(ctx context.Context, params *sns.PublishBatchInput, optFns ...func(*sns.Options)) (*sns.PublishBatchOutput, error)
}

type snsMessage struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	CorrelationID string          `json:"correlation_id"`
	Metadata      events.Metadata `json:"metadata"`
	Topic         string          `json:"topic"`
	Version       string          `json:"version"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Routes maps topic patterns to SNS topic ARNs. Exact topics win over patterns.
type Routes map[events.Topic]string

// Resolve returns the destination ARN for a topic
func (r Routes) Resolve(topic events.Topic) (string, bool) {
	if arn, ok := r[topic]; ok {
		return arn, true
	}

	patterns := make([]string, 0, len(r))
	for pattern := range r {
		patterns = append(patterns, pattern.String())
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		if topic.Matches(events.Topic(pattern)) {
			return r[events.Topic(pattern)], true
		}
	}

	return "", false
}

// SNSEventPublisher publishes events to SNS topics chosen by the event topic
type SNSEventPublisher struct {
	client SNSAPI
	routes Routes
	logger *slog.Logger
}

// NewSNSEventPublisher creates a new SNSEventPublisher
func NewSNSEventPublisher(client SNSAPI, routes Routes, logger *slog.Logger) *SNSEventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SNSEventPublisher{
		client: client,
		routes: routes,
		logger: logger,
	}
}

// Publish publishes events to SNS. Events are grouped per destination and sent in batches.
func (p *SNSEventPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	byDestination := make(map[string][]*events.Event)
	for _, event := range evts {
		arn, ok := p.routes.Resolve(event.Topic)
		if !ok {
			return errors.Wrapf(ErrNoDestination, "topic %s", event.Topic)
		}
		byDestination[arn] = append(byDestination[arn], event)
	}

	gr, ctx := errgroup.WithContext(ctx)

	for arn, destinationEvents := range byDestination {
		for _, eventBatch := range splitToChunks(destinationEvents, maxBatchSize) {
			arn, eventBatch := arn, eventBatch
			gr.Go(func() error {
				return p.batchPublish(ctx, arn, eventBatch)
			})
		}
	}

	return gr.Wait()
}

func (p *SNSEventPublisher) batchPublish(ctx context.Context, topicArn string, evts []*events.Event) error {
	requests := make([]types.PublishBatchRequestEntry, len(evts))

	for i, event := range evts {
		payload, err := event.MarshalPayload()
		if err != nil {
			return errors.Wrap(err, "failed to marshal payload")
		}

		message := &snsMessage{
			ID:            event.ID.String(),
			AggregateID:   event.AggregateID.String(),
			CorrelationID: event.CorrelationID.String(),
			Metadata:      event.Metadata,
			Topic:         string(event.Topic),
			Version:       event.Version,
			Data:          payload,
			Timestamp:     event.Timestamp,
		}

		msgJson, err := json.Marshal(message)
		if err != nil {
			return errors.Wrap(err, "failed to marshal message")
		}

		attrs := map[string]types.MessageAttributeValue{
			"topic": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Topic)),
			},
		}

		for k, v := range event.Metadata {
			if k == SQSMessageIDKey || k == SQSReceiptHandleKey || v == "" {
				continue
			}

			attrs[k] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(v),
			}
		}

		requests[i] = types.PublishBatchRequestEntry{
			Id:                aws.String(event.ID.String()),
			Message:           aws.String(string(msgJson)),
			MessageAttributes: attrs,
		}
	}

	res, err := p.client.PublishBatch(
		ctx,
		&sns.PublishBatchInput{
			TopicArn:                   aws.String(topicArn),
			PublishBatchRequestEntries: requests,
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to publish batch to SNS")
	}

	if len(res.Failed) > 0 {
		for _, entry := range res.Failed {
			p.logger.Error("sns entry rejected",
				slog.String("topic_arn", topicArn),
				slog.String("event_id", aws.ToString(entry.Id)),
				slog.String("code", aws.ToString(entry.Code)),
				slog.String("message", aws.ToString(entry.Message)),
			)
		}
		return errors.Errorf("sns rejected %d of %d entries", len(res.Failed), len(evts))
	}

	return nil
}

// splitToChunks splits slice into chunks of specified size
func splitToChunks[T any](slice []T, chunkSize int) [][]T {
	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
