package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/inventory"
	"github.com/fekuna/omnipos-cartridge/internal/inventory/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo       inventory.Repository
	variations product.Repository
	cartExpiry time.Duration
	clock      clock.Clock
	logger     logger.ZapLogger
}

// NewInventoryUseCase counts holds only in carts younger than cartExpiry.
func NewInventoryUseCase(repo inventory.Repository, variations product.Repository, cartExpiry time.Duration, clk clock.Clock, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:       repo,
		variations: variations,
		cartExpiry: cartExpiry,
		clock:      clk,
		logger:     log,
	}
}

func (uc *inventoryUseCase) LiveStock(ctx context.Context, v *model.Variation) (*int, error) {
	if v.StockCount == nil {
		return nil, nil
	}
	since := uc.clock.Now().Add(-uc.cartExpiry)
	held, err := uc.repo.HeldQuantity(ctx, v.SKU, since)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cart holds: %w", err)
	}
	live := *v.StockCount - held
	return &live, nil
}

// HasStock has no reservation behind it: two shoppers can both see the last
// unit. Callers wanting exclusion serialise on the sku (see cart usecase).
func (uc *inventoryUseCase) HasStock(ctx context.Context, v *model.Variation, quantity int) (bool, error) {
	if quantity == 0 {
		return true, nil
	}
	live, err := uc.LiveStock(ctx, v)
	if err != nil {
		return false, err
	}
	return live == nil || *live >= quantity, nil
}

func (uc *inventoryUseCase) Decrement(ctx context.Context, sku string, quantity int, orderID string) (*model.Variation, error) {
	v, err := uc.variations.FindVariationBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.ErrNotFound
	}
	if v.StockCount == nil {
		return v, nil
	}

	refType := "order"
	refID := orderID
	movement := &model.StockMovement{
		ID:             uuid.New().String(),
		VariationID:    v.ID,
		SKU:            v.SKU,
		MovementType:   model.MovementTypeSale,
		QuantityChange: -quantity,
		ReferenceType:  &refType,
		ReferenceID:    &refID,
		CreatedAt:      uc.clock.Now(),
	}
	adjusted, err := uc.repo.AdjustStockWithMovement(ctx, v.ID, movement)
	if err != nil {
		return nil, err
	}
	if !adjusted {
		// Tracking was switched off after the variation was read.
		v.StockCount = nil
		return v, nil
	}

	after := movement.QuantityAfter
	v.StockCount = &after
	if after < 0 {
		// Oversold: concurrent carts both passed HasStock.
		uc.logger.Warn("stock went negative",
			zap.String("sku", sku),
			zap.Int("stock_count", after),
			zap.String("order_id", orderID),
		)
	}
	return v, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, error) {
	return uc.repo.ListMovements(ctx, filters)
}
