package application

import (
	"context"

	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/shared/telemetry"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// PriceCalculator computes the total of a purchase
type PriceCalculator interface {
	Execute(ctx context.Context, itemID models.ID, quantity int) (decimal.Decimal, error)
}

// CalculatePurchaseTotal prices a purchase against the catalog
type CalculatePurchaseTotal struct {
	catalogRepository domain.CatalogRepository
}

// NewCalculatePurchaseTotal creates a new CalculatePurchaseTotal use case
func NewCalculatePurchaseTotal(catalogRepository domain.CatalogRepository) *CalculatePurchaseTotal {
	return &CalculatePurchaseTotal{
		catalogRepository: catalogRepository,
	}
}

// Execute returns price × quantity. It fails with *domain.UnknownItemError when the catalog
// has no such item.
func (uc *CalculatePurchaseTotal) Execute(ctx context.Context, itemID models.ID, quantity int) (decimal.Decimal, error) {
	ctx, span := telemetry.StartSpan(ctx, "CalculatePurchaseTotal")
	defer span.End()
	span.SetAttributes(attribute.String("item_id", itemID.String()))

	item, err := uc.catalogRepository.FindByID(ctx, itemID)
	if err != nil {
		span.RecordError(err)
		return decimal.Zero, errors.Wrap(err, "failed to find catalog item")
	}

	if item == nil {
		return decimal.Zero, &domain.UnknownItemError{ItemID: itemID}
	}

	return item.Price.Mul(decimal.NewFromInt(int64(quantity))), nil
}
