package inventory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/inventory/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type Repository interface {
	// HeldQuantity sums the quantity of sku held by carts updated at or
	// after since.
	HeldQuantity(ctx context.Context, sku string, since time.Time) (int, error)

	// AdjustStockWithMovement changes a variation's stock count (and its
	// product's mirror when it is the default variation) and records the
	// movement, atomically. Before/after are filled in on movement. It
	// reports false, recording nothing, when the variation's stock is not
	// tracked.
	AdjustStockWithMovement(ctx context.Context, variationID string, movement *model.StockMovement) (bool, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, error)
}
