package application

import (
	"context"
	"fmt"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/shared/telemetry"
	"github.com/draftea/trading-system/trading-service/domain"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// SyncStoreReplica applies catalog, inventory and identity events to the replicas the store
// and pricing read from
type SyncStoreReplica struct {
	catalog   domain.CatalogReplica
	inventory domain.InventoryReplica
	users     domain.UserReplica
}

// NewSyncStoreReplica creates a new SyncStoreReplica use case
func NewSyncStoreReplica(catalog domain.CatalogReplica, inventory domain.InventoryReplica, users domain.UserReplica) *SyncStoreReplica {
	return &SyncStoreReplica{
		catalog:   catalog,
		inventory: inventory,
		users:     users,
	}
}

// Execute writes event to its replica. Payloads with invalid ids or values fail with
// ErrMalformedEvent.
func (uc *SyncStoreReplica) Execute(ctx context.Context, event *events.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "SyncStoreReplica")
	defer span.End()
	span.SetAttributes(attribute.String("topic", event.Topic.String()))

	var err error
	switch event.Topic {
	case events.CatalogItemCreatedTopic:
		var data events.CatalogItemCreated
		if err = decode(event, &data); err == nil {
			err = uc.upsertCatalogItem(ctx, data.ItemID, &domain.CatalogItem{
				Name:        data.Name,
				Description: data.Description,
				Price:       data.Price,
			})
		}
	case events.CatalogItemUpdatedTopic:
		var data events.CatalogItemUpdated
		if err = decode(event, &data); err == nil {
			err = uc.upsertCatalogItem(ctx, data.ItemID, &domain.CatalogItem{
				Name:        data.Name,
				Description: data.Description,
				Price:       data.Price,
			})
		}
	case events.CatalogItemDeletedTopic:
		var data events.CatalogItemDeleted
		if err = decode(event, &data); err == nil {
			err = uc.deleteCatalogItem(ctx, data.ItemID)
		}
	case events.InventoryItemUpdatedTopic:
		var data events.InventoryItemUpdated
		if err = decode(event, &data); err == nil {
			err = uc.upsertInventoryItem(ctx, data)
		}
	case events.UserUpdatedTopic:
		var data events.UserUpdated
		if err = decode(event, &data); err == nil {
			err = uc.upsertUser(ctx, data)
		}
	default:
		return nil
	}

	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (uc *SyncStoreReplica) upsertCatalogItem(ctx context.Context, rawID models.ID, item *domain.CatalogItem) error {
	id, err := models.NewID(rawID.String())
	if err != nil {
		return fmt.Errorf("%w: invalid catalog item id: %v", ErrMalformedEvent, err)
	}
	if item.Name == "" {
		return fmt.Errorf("%w: catalog item %s has no name", ErrMalformedEvent, id)
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("%w: catalog item %s has a negative price", ErrMalformedEvent, id)
	}

	item.ID = id
	if err := uc.catalog.UpsertCatalogItem(ctx, item); err != nil {
		return pkgerrors.Wrapf(err, "failed to replicate catalog item %s", id)
	}
	return nil
}

func (uc *SyncStoreReplica) deleteCatalogItem(ctx context.Context, rawID models.ID) error {
	id, err := models.NewID(rawID.String())
	if err != nil {
		return fmt.Errorf("%w: invalid catalog item id: %v", ErrMalformedEvent, err)
	}
	if err := uc.catalog.DeleteCatalogItem(ctx, id); err != nil {
		return pkgerrors.Wrapf(err, "failed to remove catalog item %s", id)
	}
	return nil
}

func (uc *SyncStoreReplica) upsertInventoryItem(ctx context.Context, data events.InventoryItemUpdated) error {
	userID, err := models.NewID(data.UserID.String())
	if err != nil {
		return fmt.Errorf("%w: invalid user id: %v", ErrMalformedEvent, err)
	}
	itemID, err := models.NewID(data.CatalogItemID.String())
	if err != nil {
		return fmt.Errorf("%w: invalid catalog item id: %v", ErrMalformedEvent, err)
	}
	if data.NewTotalQuantity < 0 {
		return fmt.Errorf("%w: negative quantity %d", ErrMalformedEvent, data.NewTotalQuantity)
	}

	item := &domain.InventoryItem{UserID: userID, CatalogItemID: itemID, Quantity: data.NewTotalQuantity}
	if err := uc.inventory.UpsertInventoryItem(ctx, item); err != nil {
		return pkgerrors.Wrapf(err, "failed to replicate inventory of user %s", userID)
	}
	return nil
}

func (uc *SyncStoreReplica) upsertUser(ctx context.Context, data events.UserUpdated) error {
	userID, err := models.NewID(data.UserID.String())
	if err != nil {
		return fmt.Errorf("%w: invalid user id: %v", ErrMalformedEvent, err)
	}
	if data.NewTotalGil.IsNegative() {
		return fmt.Errorf("%w: user %s has a negative balance", ErrMalformedEvent, userID)
	}

	if err := uc.users.UpsertUser(ctx, &domain.User{ID: userID, Gil: data.NewTotalGil}); err != nil {
		return pkgerrors.Wrapf(err, "failed to replicate user %s", userID)
	}
	return nil
}

func decode(event *events.Event, v interface{}) error {
	if err := event.UnmarshalPayload(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}
