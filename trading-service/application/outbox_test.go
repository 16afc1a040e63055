package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/draftea/trading-system/trading-service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOutbox_Commit(t *testing.T) {
	grant := events.NewEvent(correlationID, events.GrantItemsTopic, events.GrantItems{CorrelationID: correlationID})

	tests := []struct {
		name            string
		expectedVersion int
		commands        []*events.Event
		notify          bool
		setupMocks      func(*mocks.MockPurchaseRepository, *mocks.MockPublisher, *mocks.MockNotifier)
		expectedError   string
		conflict        bool
		pending         bool
	}{
		{
			name:            "new purchase is created then released",
			expectedVersion: 0,
			commands:        []*events.Event{grant},
			notify:          true,
			setupMocks: func(repo *mocks.MockPurchaseRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				created := repo.EXPECT().Create(mock.Anything, mock.MatchedBy(func(state *domain.PurchaseState) bool {
					return state.PendingRelease
				})).RunAndReturn(func(_ context.Context, state *domain.PurchaseState) error {
					state.Version = 1
					return nil
				}).Once()
				published := publisher.EXPECT().Publish(mock.Anything, grant).Return(nil).Once().NotBefore(created)
				released := repo.EXPECT().MarkReleased(mock.Anything, correlationID, 1).Return(nil).Once().NotBefore(published)
				notifier.EXPECT().Notify(mock.Anything, userID, mock.Anything).Return(nil).Once().NotBefore(released)
			},
		},
		{
			name:            "release is retried until the publisher accepts it",
			expectedVersion: 1,
			commands:        []*events.Event{grant},
			setupMocks: func(repo *mocks.MockPurchaseRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().Save(mock.Anything, mock.Anything, 1).Return(nil).Once()
				failed := publisher.EXPECT().Publish(mock.Anything, grant).Return(errors.New("throttled")).Once()
				publisher.EXPECT().Publish(mock.Anything, grant).Return(nil).Once().NotBefore(failed)
				repo.EXPECT().MarkReleased(mock.Anything, correlationID, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:            "failing to mark the release is swallowed",
			expectedVersion: 1,
			commands:        []*events.Event{grant},
			setupMocks: func(repo *mocks.MockPurchaseRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().Save(mock.Anything, mock.Anything, 1).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, grant).Return(nil).Once()
				repo.EXPECT().MarkReleased(mock.Anything, correlationID, mock.Anything).Return(errors.New("database error")).Once()
			},
			pending: true,
		},
		{
			name:            "existing purchase is saved with its version",
			expectedVersion: 2,
			notify:          true,
			setupMocks: func(repo *mocks.MockPurchaseRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().Save(mock.Anything, mock.MatchedBy(func(state *domain.PurchaseState) bool {
					return !state.PendingRelease
				}), 2).Return(nil).Once()
				notifier.EXPECT().Notify(mock.Anything, userID, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:            "conflict releases nothing",
			expectedVersion: 1,
			commands:        []*events.Event{grant},
			notify:          true,
			setupMocks: func(repo *mocks.MockPurchaseRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().Save(mock.Anything, mock.Anything, 1).Return(domain.ErrConcurrencyConflict).Once()
			},
			expectedError: "failed to persist purchase state",
			conflict:      true,
		},
		{
			name:            "storage error releases nothing",
			expectedVersion: 0,
			commands:        []*events.Event{grant},
			notify:          true,
			setupMocks: func(repo *mocks.MockPurchaseRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().Create(mock.Anything, mock.Anything).Return(errors.New("database error")).Once()
			},
			expectedError: "failed to persist purchase state",
		},
		{
			name:            "publish error is returned after every attempt failed",
			expectedVersion: 0,
			commands:        []*events.Event{grant},
			notify:          true,
			setupMocks: func(repo *mocks.MockPurchaseRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().Create(mock.Anything, mock.Anything).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, grant).Return(errors.New("sns down")).Times(3)
			},
			expectedError: "failed to release commands",
			pending:       true,
		},
		{
			name:            "notification failure is swallowed",
			expectedVersion: 3,
			notify:          true,
			setupMocks: func(repo *mocks.MockPurchaseRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().Save(mock.Anything, mock.Anything, 3).Return(nil).Once()
				notifier.EXPECT().Notify(mock.Anything, userID, mock.Anything).Return(errors.New("socket closed")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockPurchaseRepository(t)
			publisher := mocks.NewMockPublisher(t)
			notifier := mocks.NewMockNotifier(t)
			tt.setupMocks(repo, publisher, notifier)

			outbox := NewOutbox(repo, publisher, notifier, nil, WithReleaseRetry(3, time.Millisecond))
			state := purchaseIn(domain.StateAccepted, tt.expectedVersion)
			err := outbox.Commit(context.Background(), state, tt.expectedVersion, tt.commands, tt.notify)

			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
				assert.Equal(t, tt.conflict, errors.Is(err, domain.ErrConcurrencyConflict))
			} else {
				assert.NoError(t, err)
			}
			if len(tt.commands) > 0 && !tt.conflict && tt.expectedError != "failed to persist purchase state" {
				assert.Equal(t, tt.pending, state.PendingRelease)
			}
		})
	}
}

func TestOutbox_ReleaseWithoutCommands(t *testing.T) {
	repo := mocks.NewMockPurchaseRepository(t)
	publisher := mocks.NewMockPublisher(t)

	state := purchaseIn(domain.StateCompleted, 3)
	assert.NoError(t, NewOutbox(repo, publisher, nil, nil).Release(context.Background(), state, nil))
}

func TestOutbox_ReleaseStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	repo := mocks.NewMockPurchaseRepository(t)
	publisher := mocks.NewMockPublisher(t)
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).RunAndReturn(func(context.Context, ...*events.Event) error {
		cancel()
		return errors.New("sns down")
	}).Once()

	state := purchaseIn(domain.StateAccepted, 1)
	state.PendingRelease = true
	grant := events.NewEvent(correlationID, events.GrantItemsTopic, events.GrantItems{CorrelationID: correlationID})

	err := NewOutbox(repo, publisher, nil, nil, WithReleaseRetry(5, time.Hour)).Release(ctx, state, []*events.Event{grant})
	assert.ErrorContains(t, err, "failed to release commands")
	assert.True(t, state.PendingRelease)
}
