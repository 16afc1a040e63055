package infrastructure

import (
	"context"
	"database/sql"

	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Read replicas of data owned by the catalog, inventory and identity services.
const storeSchema = `
	CREATE TABLE IF NOT EXISTS catalog_items (
		id          UUID PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       NUMERIC(20, 4) NOT NULL
	);
	CREATE TABLE IF NOT EXISTS inventory_items (
		user_id         UUID NOT NULL,
		catalog_item_id UUID NOT NULL,
		quantity        INTEGER NOT NULL,
		PRIMARY KEY (user_id, catalog_item_id)
	);
	CREATE TABLE IF NOT EXISTS users (
		id  UUID PRIMARY KEY,
		gil NUMERIC(20, 4) NOT NULL DEFAULT 0
	)`

// InitStoreSchema creates the replica tables
func InitStoreSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, storeSchema); err != nil {
		return errors.Wrap(err, "failed to create store tables")
	}
	return nil
}

type postgresCatalogItem struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
}

func (p *postgresCatalogItem) toDomain() *domain.CatalogItem {
	return &domain.CatalogItem{
		ID:          models.ID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
	}
}

// PostgresCatalogRepository implements CatalogRepository using PostgreSQL
type PostgresCatalogRepository struct {
	db *sqlx.DB
}

// NewPostgresCatalogRepository creates a new PostgresCatalogRepository
func NewPostgresCatalogRepository(db *sqlx.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

// FindByID finds a catalog item by ID
func (r *PostgresCatalogRepository) FindByID(ctx context.Context, id models.ID) (*domain.CatalogItem, error) {
	query := `SELECT id, name, description, price FROM catalog_items WHERE id = $1`

	var item postgresCatalogItem
	if err := r.db.GetContext(ctx, &item, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find catalog item")
	}

	return item.toDomain(), nil
}

// FindAll lists the catalog ordered by name
func (r *PostgresCatalogRepository) FindAll(ctx context.Context) ([]*domain.CatalogItem, error) {
	query := `SELECT id, name, description, price FROM catalog_items ORDER BY name`

	var rows []postgresCatalogItem
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to list catalog items")
	}

	items := make([]*domain.CatalogItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toDomain())
	}
	return items, nil
}

// UpsertCatalogItem inserts item or replaces the stored one with the same id
func (r *PostgresCatalogRepository) UpsertCatalogItem(ctx context.Context, item *domain.CatalogItem) error {
	query := `
		INSERT INTO catalog_items (id, name, description, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price`

	if _, err := r.db.ExecContext(ctx, query, item.ID.String(), item.Name, item.Description, item.Price); err != nil {
		return errors.Wrap(err, "failed to upsert catalog item")
	}
	return nil
}

// DeleteCatalogItem removes a catalog item; unknown ids are not an error
func (r *PostgresCatalogRepository) DeleteCatalogItem(ctx context.Context, id models.ID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM catalog_items WHERE id = $1`, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete catalog item")
	}
	return nil
}

// PostgresInventoryRepository implements InventoryRepository using PostgreSQL
type PostgresInventoryRepository struct {
	db *sqlx.DB
}

// NewPostgresInventoryRepository creates a new PostgresInventoryRepository
func NewPostgresInventoryRepository(db *sqlx.DB) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{db: db}
}

// FindByUserID lists the items a user owns
func (r *PostgresInventoryRepository) FindByUserID(ctx context.Context, userID models.ID) ([]*domain.InventoryItem, error) {
	query := `
		SELECT user_id, catalog_item_id, quantity
		FROM inventory_items
		WHERE user_id = $1`

	var rows []struct {
		UserID        string `db:"user_id"`
		CatalogItemID string `db:"catalog_item_id"`
		Quantity      int    `db:"quantity"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID.String()); err != nil {
		return nil, errors.Wrap(err, "failed to list inventory items")
	}

	items := make([]*domain.InventoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &domain.InventoryItem{
			UserID:        models.ID(row.UserID),
			CatalogItemID: models.ID(row.CatalogItemID),
			Quantity:      row.Quantity,
		})
	}
	return items, nil
}

// UpsertInventoryItem sets the quantity a user owns of an item, removing the row at zero
func (r *PostgresInventoryRepository) UpsertInventoryItem(ctx context.Context, item *domain.InventoryItem) error {
	if item.Quantity <= 0 {
		query := `DELETE FROM inventory_items WHERE user_id = $1 AND catalog_item_id = $2`
		if _, err := r.db.ExecContext(ctx, query, item.UserID.String(), item.CatalogItemID.String()); err != nil {
			return errors.Wrap(err, "failed to delete inventory item")
		}
		return nil
	}

	query := `
		INSERT INTO inventory_items (user_id, catalog_item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, catalog_item_id) DO UPDATE
		SET quantity = EXCLUDED.quantity`

	if _, err := r.db.ExecContext(ctx, query, item.UserID.String(), item.CatalogItemID.String(), item.Quantity); err != nil {
		return errors.Wrap(err, "failed to upsert inventory item")
	}
	return nil
}

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id models.ID) (*domain.User, error) {
	query := `SELECT id, gil FROM users WHERE id = $1`

	var row struct {
		ID  string          `db:"id"`
		Gil decimal.Decimal `db:"gil"`
	}
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find user")
	}

	return &domain.User{ID: models.ID(row.ID), Gil: row.Gil}, nil
}

// UpsertUser inserts user or replaces its gil balance
func (r *PostgresUserRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, gil)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET gil = EXCLUDED.gil`

	if _, err := r.db.ExecContext(ctx, query, user.ID.String(), user.Gil); err != nil {
		return errors.Wrap(err, "failed to upsert user")
	}
	return nil
}
