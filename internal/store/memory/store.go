// Package memory keeps every repository in process memory. It backs the
// "memory" store driver and the usecase tests.
package memory

import (
	"fmt"
	"sync"

	"github.com/fekuna/omnipos-cartridge/internal/cart"
	"github.com/fekuna/omnipos-cartridge/internal/category"
	"github.com/fekuna/omnipos-cartridge/internal/discount"
	"github.com/fekuna/omnipos-cartridge/internal/inventory"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	"github.com/fekuna/omnipos-cartridge/internal/sale"
)

var (
	_ product.Repository   = (*ProductRepository)(nil)
	_ category.Repository  = (*CategoryRepository)(nil)
	_ inventory.Repository = (*InventoryRepository)(nil)
	_ cart.Repository      = (*CartRepository)(nil)
	_ sale.Repository      = (*SaleRepository)(nil)
	_ discount.Repository  = (*DiscountRepository)(nil)
	_ order.Repository     = (*OrderRepository)(nil)
)

type actionKey struct {
	productID string
	day       int
}

// Store holds all tables behind one lock. Rows are kept in insertion order.
type Store struct {
	mu sync.RWMutex

	products   []model.Product
	variations []model.Variation
	options    []model.ProductOption
	actions    map[actionKey]*model.ProductAction
	categories []model.Category
	carts      []model.Cart
	cartItems  []model.CartItem
	movements  []model.StockMovement
	sales      []model.Sale
	codes      []model.DiscountCode
	orders     []model.Order
}

func NewStore() *Store {
	return &Store{actions: map[actionKey]*model.ProductAction{}}
}

func (s *Store) Products() *ProductRepository { return &ProductRepository{s} }
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s} }
func (s *Store) Inventory() *InventoryRepository { return &InventoryRepository{s} }
func (s *Store) Carts() *CartRepository { return &CartRepository{s} }
func (s *Store) Sales() *SaleRepository { return &SaleRepository{s} }
func (s *Store) Discounts() *DiscountRepository { return &DiscountRepository{s} }
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s} }

func errDuplicate(table, id string) error {
	return fmt.Errorf("%s: duplicate key %q", table, id)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneOptions(in model.OptionValues) model.OptionValues {
	if in == nil {
		return nil
	}
	out := make(model.OptionValues, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneFilter(in model.OptionFilter) model.OptionFilter {
	if in == nil {
		return nil
	}
	out := make(model.OptionFilter, len(in))
	for k, v := range in {
		out[k] = cloneStrings(v)
	}
	return out
}

func copyProduct(p model.Product) model.Product {
	p.CategoryIDs = cloneStrings(p.CategoryIDs)
	p.UpsellIDs = cloneStrings(p.UpsellIDs)
	p.Variations = nil
	return p
}

func copyVariation(v model.Variation) model.Variation {
	v.Options = cloneOptions(v.Options)
	return v
}

func copyDiscount(d model.Discount) model.Discount {
	d.ProductIDs = cloneStrings(d.ProductIDs)
	d.CategoryIDs = cloneStrings(d.CategoryIDs)
	return d
}
