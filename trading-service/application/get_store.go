package application

import (
	"context"

	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// StoreItem is a catalog item annotated with how many the user owns
type StoreItem struct {
	ID            models.ID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	OwnedQuantity int             `json:"owned_quantity"`
}

// StoreResponse is what a user sees when browsing the store
type StoreResponse struct {
	Items   []StoreItem     `json:"items"`
	UserGil decimal.Decimal `json:"user_gil"`
}

// GetStore builds the store view for a user from the read-only replicas
type GetStore struct {
	catalogRepository   domain.CatalogRepository
	inventoryRepository domain.InventoryRepository
	userRepository      domain.UserRepository
}

// NewGetStore creates a new GetStore use case
func NewGetStore(
	catalogRepository domain.CatalogRepository,
	inventoryRepository domain.InventoryRepository,
	userRepository domain.UserRepository,
) *GetStore {
	return &GetStore{
		catalogRepository:   catalogRepository,
		inventoryRepository: inventoryRepository,
		userRepository:      userRepository,
	}
}

// Execute lists the catalog with the user's owned quantities and gil balance
func (uc *GetStore) Execute(ctx context.Context, userID string) (*StoreResponse, error) {
	id, err := models.NewID(userID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid user ID")
	}

	catalog, err := uc.catalogRepository.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list catalog")
	}

	owned, err := uc.inventoryRepository.FindByUserID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list inventory")
	}

	user, err := uc.userRepository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	quantities := make(map[models.ID]int, len(owned))
	for _, inv := range owned {
		quantities[inv.CatalogItemID] += inv.Quantity
	}

	response := &StoreResponse{
		Items:   make([]StoreItem, 0, len(catalog)),
		UserGil: decimal.Zero,
	}
	if user != nil {
		response.UserGil = user.Gil
	}

	for _, item := range catalog {
		response.Items = append(response.Items, StoreItem{
			ID:            item.ID,
			Name:          item.Name,
			Description:   item.Description,
			Price:         item.Price,
			OwnedQuantity: quantities[item.ID],
		})
	}

	return response, nil
}
