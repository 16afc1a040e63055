package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/application"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/draftea/trading-system/trading-service/infrastructure"
	"github.com/draftea/trading-system/trading-service/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID        = "550e8400-e29b-41d4-a716-446655440010"
	testItemID        = "550e8400-e29b-41d4-a716-446655440020"
	testCorrelationID = "550e8400-e29b-41d4-a716-446655440001"
)

type httpFixture struct {
	router    *chi.Mux
	publisher *mocks.MockPublisher
	purchases *infrastructure.MemoryPurchaseRepository
	store     *infrastructure.MemoryStoreRepository
}

func newHTTPFixture(t *testing.T) *httpFixture {
	f := &httpFixture{
		publisher: mocks.NewMockPublisher(t),
		purchases: infrastructure.NewMemoryPurchaseRepository(),
		store: infrastructure.NewMemoryStoreRepository(&domain.CatalogItem{
			ID: models.ID(testItemID), Name: "Potion", Description: "Restores HP", Price: decimal.NewFromInt(5),
		}),
	}

	handlers := NewTradingHandlers(
		application.NewSubmitPurchase(f.publisher),
		application.NewGetPurchaseState(f.purchases),
		application.NewGetStore(f.store, f.store, f.store.Users()),
	)
	f.router = chi.NewRouter()
	handlers.RegisterRoutes(f.router)
	return f
}

func (f *httpFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func purchaseRequest(body string, userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase", strings.NewReader(body))
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	return req
}

func TestTradingHandlers_SubmitPurchase(t *testing.T) {
	validBody := `{"item_id":"` + testItemID + `","quantity":2,"idempotency_id":"` + testCorrelationID + `"}`

	tests := []struct {
		name           string
		body           string
		userID         string
		setupMocks     func(*mocks.MockPublisher)
		expectedStatus int
	}{
		{
			name:   "accepted",
			body:   validBody,
			userID: testUserID,
			setupMocks: func(publisher *mocks.MockPublisher) {
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "missing user",
			body:           validBody,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed body",
			body:           `{"item_id":`,
			userID:         testUserID,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid quantity",
			body:           `{"item_id":"` + testItemID + `","quantity":0,"idempotency_id":"` + testCorrelationID + `"}`,
			userID:         testUserID,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "publisher unavailable",
			body:   validBody,
			userID: testUserID,
			setupMocks: func(publisher *mocks.MockPublisher) {
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(errors.New("sns down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHTTPFixture(t)
			if tt.setupMocks != nil {
				tt.setupMocks(f.publisher)
			}

			rec := f.do(purchaseRequest(tt.body, tt.userID))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusAccepted {
				var resp application.SubmitPurchaseResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, testCorrelationID, resp.IdempotencyID)
				assert.Equal(t, "/api/v1/purchase/status/"+testCorrelationID, rec.Header().Get("Location"))
			}
		})
	}
}

func TestTradingHandlers_GetPurchaseStatus(t *testing.T) {
	f := newHTTPFixture(t)
	total := decimal.NewFromInt(10)
	received := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.purchases.Create(context.Background(), &domain.PurchaseState{
		CorrelationID: models.ID(testCorrelationID),
		CurrentState:  domain.StateAccepted,
		UserID:        models.ID(testUserID),
		ItemID:        models.ID(testItemID),
		Quantity:      2,
		PurchaseTotal: &total,
		Received:      received,
		LastUpdated:   received,
	}))

	t.Run("found", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/purchase/status/"+testCorrelationID, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var snapshot events.PurchaseSnapshot
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&snapshot))
		assert.Equal(t, "Accepted", snapshot.CurrentState)
		assert.Equal(t, 2, snapshot.Quantity)
		assert.True(t, snapshot.PurchaseTotal.Equal(total))
	})

	t.Run("not found", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/purchase/status/"+testItemID, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/purchase/status/potion", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTradingHandlers_GetStore(t *testing.T) {
	f := newHTTPFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.UpsertUser(ctx, &domain.User{ID: models.ID(testUserID), Gil: decimal.NewFromInt(42)}))
	require.NoError(t, f.store.UpsertInventoryItem(ctx, &domain.InventoryItem{UserID: models.ID(testUserID), CatalogItemID: models.ID(testItemID), Quantity: 4}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/store", nil)
	req.Header.Set(UserIDHeader, testUserID)
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var store application.StoreResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&store))
	require.Len(t, store.Items, 1)
	assert.Equal(t, "Potion", store.Items[0].Name)
	assert.Equal(t, 4, store.Items[0].OwnedQuantity)
	assert.True(t, store.UserGil.Equal(decimal.NewFromInt(42)))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/store", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
