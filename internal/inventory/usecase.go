package inventory

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/inventory/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type UseCase interface {
	// LiveStock is the stock count less what open carts hold. nil means
	// stock is not tracked.
	LiveStock(ctx context.Context, variation *model.Variation) (*int, error)
	HasStock(ctx context.Context, variation *model.Variation, quantity int) (bool, error)

	// Decrement durably removes sold stock. Returns the variation, or
	// apperr.ErrNotFound when the sku no longer exists.
	Decrement(ctx context.Context, sku string, quantity int, orderID string) (*model.Variation, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, error)
}
