package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/inventory/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type InventoryRepository struct {
	s *Store
}

func (r *InventoryRepository) HeldQuantity(_ context.Context, sku string, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	live := map[string]bool{}
	for _, c := range r.s.carts {
		if !c.LastUpdated.Before(since) {
			live[c.ID] = true
		}
	}
	held := 0
	for _, item := range r.s.cartItems {
		if item.SKU == sku && live[item.CartID] {
			held += item.Quantity
		}
	}
	return held, nil
}

func (r *InventoryRepository) AdjustStockWithMovement(_ context.Context, variationID string, movement *model.StockMovement) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var v *model.Variation
	for i := range r.s.variations {
		if r.s.variations[i].ID == variationID {
			v = &r.s.variations[i]
			break
		}
	}
	if v == nil {
		return false, fmt.Errorf("variation %s not found", variationID)
	}
	if v.StockCount == nil {
		return false, nil
	}

	movement.QuantityBefore = *v.StockCount
	movement.QuantityAfter = *v.StockCount + movement.QuantityChange
	after := movement.QuantityAfter
	v.StockCount = &after
	if v.IsDefault {
		for i := range r.s.products {
			if r.s.products[i].ID == v.ProductID {
				mirrored := after
				r.s.products[i].StockCount = &mirrored
			}
		}
	}
	r.s.movements = append(r.s.movements, *movement)
	return true, nil
}

func (r *InventoryRepository) ListMovements(_ context.Context, f *dto.MovementFilters) ([]model.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.StockMovement
	for _, m := range r.s.movements {
		if f != nil {
			switch {
			case f.SKU != "" && m.SKU != f.SKU,
				f.MovementType != "" && m.MovementType != f.MovementType,
				f.StartDate != nil && m.CreatedAt.Before(*f.StartDate),
				f.EndDate != nil && m.CreatedAt.After(*f.EndDate):
				continue
			}
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[j].CreatedAt.Before(out[i].CreatedAt) })
	return out, nil
}
