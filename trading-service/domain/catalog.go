package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/draftea/trading-system/shared/models"
	"github.com/shopspring/decimal"
)

// CatalogItem is a purchasable item and its unit price
type CatalogItem struct {
	ID          models.ID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// InventoryItem is the quantity of a catalog item a user owns
type InventoryItem struct {
	UserID        models.ID `json:"user_id"`
	CatalogItemID models.ID `json:"catalog_item_id"`
	Quantity      int       `json:"quantity"`
}

// User is the trading service's read model of an identity user
type User struct {
	ID  models.ID       `json:"id"`
	Gil decimal.Decimal `json:"gil"`
}

// CatalogRepository reads catalog items. FindByID returns nil, nil when the item is unknown.
type CatalogRepository interface {
	FindByID(ctx context.Context, id models.ID) (*CatalogItem, error)
	FindAll(ctx context.Context) ([]*CatalogItem, error)
}

// InventoryRepository reads the inventory replica
type InventoryRepository interface {
	FindByUserID(ctx context.Context, userID models.ID) ([]*InventoryItem, error)
}

// UserRepository reads the user replica. FindByID returns nil, nil when absent.
type UserRepository interface {
	FindByID(ctx context.Context, id models.ID) (*User, error)
}

// CatalogReplica writes the catalog replica fed by catalog service events
type CatalogReplica interface {
	UpsertCatalogItem(ctx context.Context, item *CatalogItem) error
	DeleteCatalogItem(ctx context.Context, id models.ID) error
}

// InventoryReplica writes the inventory replica. A quantity of zero removes the item.
type InventoryReplica interface {
	UpsertInventoryItem(ctx context.Context, item *InventoryItem) error
}

// UserReplica writes the user replica
type UserReplica interface {
	UpsertUser(ctx context.Context, user *User) error
}

// UnknownItemError reports a purchase of an item the catalog does not know.
// It is a domain error: retrying cannot make it succeed.
type UnknownItemError struct {
	ItemID models.ID
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("Unknown item '%s'", e.ItemID)
}

// IsDomainError reports whether err is a business rule failure that must not be retried
func IsDomainError(err error) bool {
	var unknown *UnknownItemError
	return errors.As(err, &unknown)
}
