package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/pkg/errors"
)

const (
	DefaultReleaseAttempts = 3
	DefaultReleaseInterval = 200 * time.Millisecond
)

// Outbox persists a purchase and only then releases its commands and notification.
// A purchase committed with commands is stored with PendingRelease set, which is cleared once
// the publisher accepted them; until then a redelivered event can release them again.
type Outbox struct {
	repository      domain.PurchaseRepository
	publisher       events.Publisher
	notifier        domain.Notifier
	logger          *slog.Logger
	releaseAttempts int
	releaseInterval time.Duration
}

// OutboxOption configures an Outbox
type OutboxOption func(*Outbox)

// WithReleaseRetry sets how many times a release is attempted and the pause between attempts
func WithReleaseRetry(attempts int, interval time.Duration) OutboxOption {
	return func(o *Outbox) {
		if attempts > 0 {
			o.releaseAttempts = attempts
		}
		if interval >= 0 {
			o.releaseInterval = interval
		}
	}
}

// NewOutbox creates a new Outbox
func NewOutbox(
	repository domain.PurchaseRepository,
	publisher events.Publisher,
	notifier domain.Notifier,
	logger *slog.Logger,
	opts ...OutboxOption,
) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Outbox{
		repository:      repository,
		publisher:       publisher,
		notifier:        notifier,
		logger:          logger,
		releaseAttempts: DefaultReleaseAttempts,
		releaseInterval: DefaultReleaseInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Commit writes state, creating it when expectedVersion is 0. Nothing is released if the write
// fails; a version conflict surfaces as domain.ErrConcurrencyConflict.
func (o *Outbox) Commit(ctx context.Context, state *domain.PurchaseState, expectedVersion int, commands []*events.Event, notify bool) error {
	state.PendingRelease = len(commands) > 0

	var err error
	if expectedVersion == 0 {
		err = o.repository.Create(ctx, state)
	} else {
		err = o.repository.Save(ctx, state, expectedVersion)
	}
	if err != nil {
		return errors.Wrap(err, "failed to persist purchase state")
	}

	if err := o.Release(ctx, state, commands); err != nil {
		return err
	}

	if notify && o.notifier != nil {
		if err := o.notifier.Notify(ctx, state.UserID, state.Snapshot()); err != nil {
			o.logger.WarnContext(ctx, "failed to notify purchase status",
				"correlation_id", state.CorrelationID,
				"user_id", state.UserID,
				"error", err,
			)
		}
	}

	return nil
}

// Release publishes the commands of the committed state, retrying under the release policy,
// and then clears its pending flag. The state stays pending when every attempt fails.
func (o *Outbox) Release(ctx context.Context, state *domain.PurchaseState, commands []*events.Event) error {
	if len(commands) == 0 {
		return nil
	}

	publish := func() (struct{}, error) {
		return struct{}{}, o.publisher.Publish(ctx, commands...)
	}
	_, err := backoff.Retry(ctx, publish,
		backoff.WithBackOff(backoff.NewConstantBackOff(o.releaseInterval)),
		backoff.WithMaxTries(uint(o.releaseAttempts)),
	)
	if err != nil {
		return errors.Wrap(err, "failed to release commands")
	}

	// Published is what matters; a flag left set only means a later duplicate publishes again.
	if err := o.repository.MarkReleased(ctx, state.CorrelationID, state.Version); err != nil {
		o.logger.WarnContext(ctx, "failed to mark purchase commands released",
			"correlation_id", state.CorrelationID,
			"version", state.Version,
			"error", err,
		)
		return nil
	}
	state.PendingRelease = false
	return nil
}
