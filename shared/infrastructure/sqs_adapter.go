package infrastructure

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/draftea/trading-system/shared/events"
	"github.com/pkg/errors"
)

var _ events.Subscriber = (*SQSSubscriberAdapter)(nil)

// SQSSubscriberAdapter adapts SQSEventSubscriber to the events.Subscriber interface
type SQSSubscriberAdapter struct {
	sqsSubscriber *SQSEventSubscriber
	client        *sqs.Client
	queueURL      string
	options       []SQSSubscriberOption
}

// NewSQSSubscriberAdapter creates a new SQS subscriber adapter
func NewSQSSubscriberAdapter(ctx context.Context, opts AWSOptions, queueURL string, logger *slog.Logger, options ...SQSSubscriberOption) (*SQSSubscriberAdapter, error) {
	cfg, err := LoadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &SQSSubscriberAdapter{
		client:   client,
		queueURL: queueURL,
		options:  append([]SQSSubscriberOption{WithLogger(logger)}, options...),
	}, nil
}

// Subscribe starts consuming the queue with the given handler
func (s *SQSSubscriberAdapter) Subscribe(ctx context.Context, handler events.EventHandler) error {
	if s.sqsSubscriber != nil {
		return errors.New("subscriber is already running")
	}

	s.sqsSubscriber = NewSQSEventSubscriber(s.client, s.queueURL, handler, s.options...)

	if err := s.sqsSubscriber.Start(ctx); err != nil {
		s.sqsSubscriber = nil
		return errors.Wrap(err, "failed to start SQS subscriber")
	}

	return nil
}

// Close stops the subscriber
func (s *SQSSubscriberAdapter) Close() error {
	if s.sqsSubscriber == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.sqsSubscriber.Stop(ctx); err != nil {
		return errors.Wrap(err, "failed to stop SQS subscriber")
	}

	s.sqsSubscriber = nil
	return nil
}
