package events

import (
	"time"

	"github.com/draftea/trading-system/shared/models"
	"github.com/shopspring/decimal"
)

// Message contracts shared between the trading, inventory and identity services.

// PurchaseRequested starts a purchase saga. CorrelationID doubles as the idempotency key.
type PurchaseRequested struct {
	UserID        models.ID `json:"user_id"`
	ItemID        models.ID `json:"item_id"`
	Quantity      int       `json:"quantity"`
	CorrelationID models.ID `json:"correlation_id"`
}

// GetPurchaseState asks for the current snapshot of a purchase
type GetPurchaseState struct {
	CorrelationID models.ID `json:"correlation_id"`
}

// InventoryItemsGranted acknowledges a GrantItems command
type InventoryItemsGranted struct {
	CorrelationID models.ID `json:"correlation_id"`
}

// GilDebited acknowledges a DebitGil command
type GilDebited struct {
	CorrelationID models.ID `json:"correlation_id"`
}

// GrantItems asks inventory to grant items to a user
type GrantItems struct {
	UserID        models.ID `json:"user_id"`
	ItemID        models.ID `json:"item_id"`
	Quantity      int       `json:"quantity"`
	CorrelationID models.ID `json:"correlation_id"`
}

// SubtractItems reverses a previous GrantItems
type SubtractItems struct {
	UserID        models.ID `json:"user_id"`
	ItemID        models.ID `json:"item_id"`
	Quantity      int       `json:"quantity"`
	CorrelationID models.ID `json:"correlation_id"`
}

// DebitGil asks identity to debit gil from a user's wallet
type DebitGil struct {
	UserID        models.ID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	CorrelationID models.ID       `json:"correlation_id"`
}

// GrantItemsFault is published by inventory when GrantItems could not be processed
type GrantItemsFault struct {
	OriginalCommand GrantItems `json:"original_command"`
	ErrorMessages   []string   `json:"error_messages"`
}

// DebitGilFault is published by identity when DebitGil could not be processed
type DebitGilFault struct {
	OriginalCommand DebitGil `json:"original_command"`
	ErrorMessages   []string `json:"error_messages"`
}

// PurchaseSnapshot is the externally visible view of a purchase saga
type PurchaseSnapshot struct {
	CorrelationID models.ID        `json:"correlation_id"`
	UserID        models.ID        `json:"user_id"`
	ItemID        models.ID        `json:"item_id"`
	PurchaseTotal *decimal.Decimal `json:"purchase_total,omitempty"`
	Quantity      int              `json:"quantity"`
	CurrentState  string           `json:"current_state"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	Received      time.Time        `json:"received"`
	LastUpdated   time.Time        `json:"last_updated"`
}

// CatalogItemCreated is published by the catalog service for a new item
type CatalogItemCreated struct {
	ItemID      models.ID       `json:"item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// CatalogItemUpdated carries the full new value of a catalog item
type CatalogItemUpdated struct {
	ItemID      models.ID       `json:"item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// CatalogItemDeleted is published when an item leaves the catalog
type CatalogItemDeleted struct {
	ItemID models.ID `json:"item_id"`
}

// InventoryItemUpdated is published by inventory whenever a user's quantity of an item changes
type InventoryItemUpdated struct {
	UserID           models.ID `json:"user_id"`
	CatalogItemID    models.ID `json:"catalog_item_id"`
	NewTotalQuantity int       `json:"new_total_quantity"`
}

// UserUpdated is published by identity whenever a user's gil balance changes
type UserUpdated struct {
	UserID      models.ID       `json:"user_id"`
	Email       string          `json:"email"`
	NewTotalGil decimal.Decimal `json:"new_total_gil"`
}
