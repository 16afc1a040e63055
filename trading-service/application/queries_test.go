package application

import (
	"context"
	"errors"
	"testing"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/draftea/trading-system/trading-service/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmitPurchase_Execute(t *testing.T) {
	validCommand := func() *SubmitPurchaseCommand {
		return &SubmitPurchaseCommand{
			UserID:        userID.String(),
			ItemID:        itemID.String(),
			Quantity:      3,
			IdempotencyID: correlationID.String(),
		}
	}

	tests := []struct {
		name          string
		mutate        func(*SubmitPurchaseCommand)
		setupMocks    func(*mocks.MockPublisher)
		expectedError string
	}{
		{
			name: "publishes purchase requested",
			setupMocks: func(publisher *mocks.MockPublisher) {
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Run(func(_ context.Context, evts ...*events.Event) {
						require.Len(t, evts, 1)
						assert.Equal(t, events.PurchaseRequestedTopic, evts[0].Topic)
						assert.Equal(t, correlationID, evts[0].CorrelationID)
						assert.Equal(t, events.PurchaseRequested{
							UserID: userID, ItemID: itemID, Quantity: 3, CorrelationID: correlationID,
						}, evts[0].Data)
					}).Return(nil).Once()
			},
		},
		{
			name:          "missing user",
			mutate:        func(c *SubmitPurchaseCommand) { c.UserID = "" },
			expectedError: "user ID is required",
		},
		{
			name:          "zero quantity",
			mutate:        func(c *SubmitPurchaseCommand) { c.Quantity = 0 },
			expectedError: "quantity must be positive",
		},
		{
			name:          "missing idempotency id",
			mutate:        func(c *SubmitPurchaseCommand) { c.IdempotencyID = "" },
			expectedError: "idempotency ID is required",
		},
		{
			name:          "invalid item id",
			mutate:        func(c *SubmitPurchaseCommand) { c.ItemID = "potion" },
			expectedError: "invalid item ID",
		},
		{
			name: "publisher error",
			setupMocks: func(publisher *mocks.MockPublisher) {
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(errors.New("sns down")).Once()
			},
			expectedError: "failed to publish purchase request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := mocks.NewMockPublisher(t)
			if tt.setupMocks != nil {
				tt.setupMocks(publisher)
			}
			cmd := validCommand()
			if tt.mutate != nil {
				tt.mutate(cmd)
			}

			resp, err := NewSubmitPurchase(publisher).Execute(context.Background(), cmd)

			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, correlationID.String(), resp.IdempotencyID)
		})
	}
}

func TestGetPurchaseState_Execute(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := mocks.NewMockPurchaseRepository(t)
		repo.EXPECT().FindByCorrelationID(mock.Anything, correlationID).Return(purchaseIn(domain.StateItemsGranted, 2), nil).Once()

		snapshot, err := NewGetPurchaseState(repo).Execute(context.Background(), correlationID.String())
		require.NoError(t, err)
		assert.Equal(t, "ItemsGranted", snapshot.CurrentState)
		assert.True(t, snapshot.PurchaseTotal.Equal(decimal.NewFromInt(30)))
	})

	t.Run("not found", func(t *testing.T) {
		repo := mocks.NewMockPurchaseRepository(t)
		repo.EXPECT().FindByCorrelationID(mock.Anything, correlationID).Return(nil, nil).Once()

		_, err := NewGetPurchaseState(repo).Execute(context.Background(), correlationID.String())
		assert.ErrorIs(t, err, ErrPurchaseNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := NewGetPurchaseState(mocks.NewMockPurchaseRepository(t)).Execute(context.Background(), "abc")
		assert.ErrorContains(t, err, "invalid idempotency ID")
	})
}

func TestGetStore_Execute(t *testing.T) {
	catalog := mocks.NewMockCatalogRepository(t)
	inventory := mocks.NewMockInventoryRepository(t)
	users := mocks.NewMockUserRepository(t)

	otherItem := correlationID
	catalog.EXPECT().FindAll(mock.Anything).Return([]*domain.CatalogItem{
		{ID: itemID, Name: "Potion", Price: decimal.NewFromInt(5)},
		{ID: otherItem, Name: "Antidote", Price: decimal.NewFromInt(7)},
	}, nil).Once()
	inventory.EXPECT().FindByUserID(mock.Anything, userID).Return([]*domain.InventoryItem{
		{UserID: userID, CatalogItemID: itemID, Quantity: 2},
		{UserID: userID, CatalogItemID: itemID, Quantity: 1},
	}, nil).Once()
	users.EXPECT().FindByID(mock.Anything, userID).Return(&domain.User{ID: userID, Gil: decimal.NewFromInt(100)}, nil).Once()

	store, err := NewGetStore(catalog, inventory, users).Execute(context.Background(), userID.String())
	require.NoError(t, err)

	require.Len(t, store.Items, 2)
	assert.Equal(t, 3, store.Items[0].OwnedQuantity)
	assert.Equal(t, 0, store.Items[1].OwnedQuantity)
	assert.True(t, store.UserGil.Equal(decimal.NewFromInt(100)))
}

func TestGetStore_CatalogError(t *testing.T) {
	catalog := mocks.NewMockCatalogRepository(t)
	catalog.EXPECT().FindAll(mock.Anything).Return(nil, errors.New("database error")).Once()

	_, err := NewGetStore(catalog, mocks.NewMockInventoryRepository(t), mocks.NewMockUserRepository(t)).
		Execute(context.Background(), userID.String())
	assert.ErrorContains(t, err, "failed to list catalog")
}

func TestSubmitPurchase_RejectsBeforePublishing(t *testing.T) {
	_, err := NewSubmitPurchase(mocks.NewMockPublisher(t)).Execute(context.Background(), &SubmitPurchaseCommand{
		UserID: userID.String(), ItemID: itemID.String(), Quantity: -1, IdempotencyID: correlationID.String(),
	})
	assert.ErrorIs(t, err, ErrInvalidPurchase)
}
