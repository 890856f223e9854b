package memory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/shopspring/decimal"
)

type CartRepository struct {
	s *Store
}

func (r *CartRepository) Create(_ context.Context, c *model.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.carts {
		if existing.ID == c.ID {
			return errDuplicate("carts", c.ID)
		}
	}
	r.s.carts = append(r.s.carts, model.Cart{ID: c.ID, LastUpdated: c.LastUpdated})
	return nil
}

func (r *CartRepository) FindByID(_ context.Context, id string) (*model.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.carts {
		if c.ID != id {
			continue
		}
		found := model.Cart{ID: c.ID, LastUpdated: c.LastUpdated}
		for _, item := range r.s.cartItems {
			if item.CartID == id {
				found.Items = append(found.Items, item)
			}
		}
		return &found, nil
	}
	return nil, nil
}

func (r *CartRepository) Touch(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.carts {
		if r.s.carts[i].ID == id {
			r.s.carts[i].LastUpdated = at
		}
	}
	return nil
}

func (r *CartRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.deleteWhere(func(c model.Cart) bool { return c.ID == id })
	return nil
}

func (r *CartRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.deleteWhere(func(c model.Cart) bool { return c.LastUpdated.Before(cutoff) }), nil
}

// deleteWhere drops matching carts with their items. Callers hold the lock.
func (r *CartRepository) deleteWhere(match func(model.Cart) bool) int64 {
	dropped := map[string]bool{}
	kept := r.s.carts[:0]
	for _, c := range r.s.carts {
		if match(c) {
			dropped[c.ID] = true
			continue
		}
		kept = append(kept, c)
	}
	r.s.carts = kept

	items := r.s.cartItems[:0]
	for _, item := range r.s.cartItems {
		if !dropped[item.CartID] {
			items = append(items, item)
		}
	}
	r.s.cartItems = items
	return int64(len(dropped))
}

func (r *CartRepository) FindItem(_ context.Context, cartID, sku string, unitPrice decimal.Decimal) (*model.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, item := range r.s.cartItems {
		if item.CartID == cartID && item.SKU == sku && item.UnitPrice.Equal(unitPrice) {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (r *CartRepository) FindItemByID(_ context.Context, cartID, itemID string) (*model.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, item := range r.s.cartItems {
		if item.CartID == cartID && item.ID == itemID {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (r *CartRepository) CreateItem(_ context.Context, item *model.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.cartItems {
		if existing.ID == item.ID {
			return errDuplicate("cart_items", item.ID)
		}
	}
	r.s.cartItems = append(r.s.cartItems, *item)
	return nil
}

func (r *CartRepository) UpdateItem(_ context.Context, item *model.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.cartItems {
		if r.s.cartItems[i].ID == item.ID && r.s.cartItems[i].CartID == item.CartID {
			r.s.cartItems[i].Quantity = item.Quantity
			r.s.cartItems[i].TotalPrice = item.TotalPrice
		}
	}
	return nil
}

func (r *CartRepository) DeleteItem(_ context.Context, cartID, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.cartItems[:0]
	for _, item := range r.s.cartItems {
		if item.CartID == cartID && item.ID == itemID {
			continue
		}
		kept = append(kept, item)
	}
	r.s.cartItems = kept
	return nil
}
