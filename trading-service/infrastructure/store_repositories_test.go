package infrastructure

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCatalogRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("find by id", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT id, name, description, price FROM catalog_items WHERE id").
			WithArgs(testItemID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}).
				AddRow(testItemID, "Potion", "Restores a small amount of HP", "5.50"))

		item, err := NewPostgresCatalogRepository(db).FindByID(ctx, testItemID)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "Potion", item.Name)
		assert.True(t, item.Price.Equal(decimal.RequireFromString("5.5")))
	})

	t.Run("unknown item", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM catalog_items").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}))

		item, err := NewPostgresCatalogRepository(db).FindByID(ctx, testItemID)
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("find all", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM catalog_items ORDER BY name").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}).
				AddRow(testItemID, "Antidote", "Cures poison", "7").
				AddRow(testCorrelationID, "Potion", "Restores HP", "5"))

		items, err := NewPostgresCatalogRepository(db).FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Antidote", items[0].Name)
	})
}

func TestPostgresInventoryAndUserRepositories(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM inventory_items").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "catalog_item_id", "quantity"}).
			AddRow(testUserID, testItemID, 4))
	mock.ExpectQuery("SELECT id, gil FROM users").
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "gil"}).AddRow(testUserID, "120"))

	owned, err := NewPostgresInventoryRepository(db).FindByUserID(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, 4, owned[0].Quantity)

	user, err := NewPostgresUserRepository(db).FindByID(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, user.Gil.Equal(decimal.NewFromInt(120)))
}

func TestInitStoreSchema(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS catalog_items").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, InitStoreSchema(context.Background(), db))
}

func TestMemoryStoreRepository(t *testing.T) {
	ctx := context.Background()
	potion := &domain.CatalogItem{ID: testItemID, Name: "Potion", Price: decimal.NewFromInt(5)}
	repo := NewMemoryStoreRepository(potion)
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ID: testUserID, Gil: decimal.NewFromInt(50)}))
	require.NoError(t, repo.UpsertInventoryItem(ctx, &domain.InventoryItem{UserID: testUserID, CatalogItemID: testItemID, Quantity: 2}))

	item, err := repo.FindByID(ctx, testItemID)
	require.NoError(t, err)
	assert.Equal(t, "Potion", item.Name)

	missing, err := repo.FindByID(ctx, models.ID(testCorrelationID))
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	owned, err := repo.FindByUserID(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	user, err := repo.Users().FindByID(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, user.Gil.Equal(decimal.NewFromInt(50)))
}

func TestPostgresReplicaWrites(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog item upsert", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO catalog_items (.+) ON CONFLICT \\(id\\) DO UPDATE").
			WithArgs(testItemID, "Potion", "Restores HP", decimal.RequireFromString("5.5")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgresCatalogRepository(db).UpsertCatalogItem(ctx, &domain.CatalogItem{
			ID: testItemID, Name: "Potion", Description: "Restores HP", Price: decimal.RequireFromString("5.5"),
		})
		assert.NoError(t, err)
	})

	t.Run("catalog item delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("DELETE FROM catalog_items WHERE id").
			WithArgs(testItemID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, NewPostgresCatalogRepository(db).DeleteCatalogItem(ctx, testItemID))
	})

	t.Run("inventory upsert", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO inventory_items (.+) ON CONFLICT").
			WithArgs(testUserID, testItemID, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgresInventoryRepository(db).UpsertInventoryItem(ctx, &domain.InventoryItem{
			UserID: testUserID, CatalogItemID: testItemID, Quantity: 7,
		})
		assert.NoError(t, err)
	})

	t.Run("inventory at zero is removed", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("DELETE FROM inventory_items").
			WithArgs(testUserID, testItemID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgresInventoryRepository(db).UpsertInventoryItem(ctx, &domain.InventoryItem{
			UserID: testUserID, CatalogItemID: testItemID,
		})
		assert.NoError(t, err)
	})

	t.Run("user upsert", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO users (.+) ON CONFLICT").
			WithArgs(testUserID, decimal.NewFromInt(120)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgresUserRepository(db).UpsertUser(ctx, &domain.User{ID: testUserID, Gil: decimal.NewFromInt(120)}))
	})

	t.Run("write error is wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New("connection reset"))

		err := NewPostgresUserRepository(db).UpsertUser(ctx, &domain.User{ID: testUserID})
		assert.ErrorContains(t, err, "failed to upsert user")
	})
}

func TestMemoryStoreRepository_ReplicaWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStoreRepository()
	otherItem := models.ID(testCorrelationID)

	require.NoError(t, repo.UpsertCatalogItem(ctx, &domain.CatalogItem{ID: testItemID, Name: "Potion", Price: decimal.NewFromInt(5)}))
	require.NoError(t, repo.UpsertCatalogItem(ctx, &domain.CatalogItem{ID: testItemID, Name: "Hi-Potion", Price: decimal.NewFromInt(12)}))
	item, err := repo.FindByID(ctx, testItemID)
	require.NoError(t, err)
	assert.Equal(t, "Hi-Potion", item.Name)

	require.NoError(t, repo.DeleteCatalogItem(ctx, testItemID))
	item, err = repo.FindByID(ctx, testItemID)
	require.NoError(t, err)
	assert.Nil(t, item)

	require.NoError(t, repo.UpsertInventoryItem(ctx, &domain.InventoryItem{UserID: testUserID, CatalogItemID: testItemID, Quantity: 2}))
	require.NoError(t, repo.UpsertInventoryItem(ctx, &domain.InventoryItem{UserID: testUserID, CatalogItemID: otherItem, Quantity: 1}))
	require.NoError(t, repo.UpsertInventoryItem(ctx, &domain.InventoryItem{UserID: testUserID, CatalogItemID: testItemID, Quantity: 5}))

	owned, err := repo.FindByUserID(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, owned, 2, "an update replaces the quantity instead of adding a row")
	quantities := map[models.ID]int{}
	for _, o := range owned {
		quantities[o.CatalogItemID] = o.Quantity
	}
	assert.Equal(t, map[models.ID]int{testItemID: 5, otherItem: 1}, quantities)

	require.NoError(t, repo.UpsertInventoryItem(ctx, &domain.InventoryItem{UserID: testUserID, CatalogItemID: otherItem}))
	owned, err = repo.FindByUserID(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, models.ID(testItemID), owned[0].CatalogItemID)

	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ID: testUserID, Gil: decimal.NewFromInt(10)}))
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ID: testUserID, Gil: decimal.NewFromInt(90)}))
	user, err := repo.Users().FindByID(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, user.Gil.Equal(decimal.NewFromInt(90)))
}
