package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/product/dto"
)

type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) Create(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.ID == p.ID {
			return errDuplicate("products", p.ID)
		}
	}
	r.s.products = append(r.s.products, copyProduct(*p))
	return nil
}

func (r *ProductRepository) FindByID(_ context.Context, id string) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.ID == id {
			found := copyProduct(p)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *ProductRepository) FindAll(_ context.Context, f *dto.ProductFilters) ([]model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids, skuOwners map[string]bool
	if f == nil {
		f = &dto.ProductFilters{}
	}
	if len(f.IDs) > 0 {
		ids = toSet(f.IDs)
	}
	if len(f.SKUs) > 0 {
		skus := toSet(f.SKUs)
		skuOwners = map[string]bool{}
		for _, v := range r.s.variations {
			if skus[v.SKU] {
				skuOwners[v.ProductID] = true
			}
		}
	}

	var out []model.Product
	for _, p := range r.s.products {
		if ids != nil && !ids[p.ID] {
			continue
		}
		if skuOwners != nil && !skuOwners[p.ID] {
			continue
		}
		if f.CategoryID != "" && !p.InCategory(f.CategoryID) {
			continue
		}
		if f.Published != nil && p.Published != *f.Published {
			continue
		}
		out = append(out, copyProduct(p))
	}

	asc := strings.ToLower(f.SortOrder) == "asc"
	var less func(a, b model.Product) bool
	switch f.SortBy {
	case "title":
		less = func(a, b model.Product) bool { return a.Title < b.Title }
	case "price":
		less = func(a, b model.Product) bool { return a.UnitPrice.Decimal.LessThan(b.UnitPrice.Decimal) }
	default:
		less = func(a, b model.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out, nil
}

func (r *ProductRepository) Update(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.products {
		if r.s.products[i].ID == p.ID {
			r.s.products[i] = copyProduct(*p)
			return nil
		}
	}
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.products[:0]
	for _, p := range r.s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.s.products = kept
	return nil
}

func (r *ProductRepository) CreateVariation(_ context.Context, v *model.Variation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.variations {
		if existing.ID == v.ID {
			return errDuplicate("product_variations", v.ID)
		}
		if existing.SKU == v.SKU {
			return errDuplicate("product_variations.sku", v.SKU)
		}
	}
	r.s.variations = append(r.s.variations, copyVariation(*v))
	return nil
}

func (r *ProductRepository) UpdateVariation(_ context.Context, v *model.Variation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.variations {
		if existing.ID != v.ID && existing.SKU == v.SKU {
			return errDuplicate("product_variations.sku", v.SKU)
		}
	}
	for i := range r.s.variations {
		if r.s.variations[i].ID == v.ID {
			r.s.variations[i] = copyVariation(*v)
			return nil
		}
	}
	return nil
}

func (r *ProductRepository) DeleteVariations(_ context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	drop := toSet(ids)
	kept := r.s.variations[:0]
	for _, v := range r.s.variations {
		if !drop[v.ID] {
			kept = append(kept, v)
		}
	}
	r.s.variations = kept
	return nil
}

func (r *ProductRepository) FindVariations(_ context.Context, f *dto.VariationFilters) ([]model.Variation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids, productIDs, skus map[string]bool
	if len(f.IDs) > 0 {
		ids = toSet(f.IDs)
	}
	if len(f.ProductIDs) > 0 {
		productIDs = toSet(f.ProductIDs)
	}
	if len(f.SKUs) > 0 {
		skus = toSet(f.SKUs)
	}

	var out []model.Variation
	for _, v := range r.s.variations {
		switch {
		case ids != nil && !ids[v.ID],
			f.ProductID != "" && v.ProductID != f.ProductID,
			productIDs != nil && !productIDs[v.ProductID],
			skus != nil && !skus[v.SKU],
			f.SaleID != "" && (v.SaleID == nil || *v.SaleID != f.SaleID):
			continue
		}
		out = append(out, copyVariation(v))
	}
	return out, nil
}

func (r *ProductRepository) FindVariationBySKU(_ context.Context, sku string) (*model.Variation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, v := range r.s.variations {
		if v.SKU == sku {
			found := copyVariation(v)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *ProductRepository) ListOptions(_ context.Context) ([]model.ProductOption, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := append([]model.ProductOption(nil), r.s.options...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ProductRepository) CreateOption(_ context.Context, o *model.ProductOption) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.options = append(r.s.options, *o)
	return nil
}

func (r *ProductRepository) RecordAction(_ context.Context, productID string, day int, kind model.ActionKind) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := actionKey{productID: productID, day: day}
	a, ok := r.s.actions[key]
	if !ok {
		a = &model.ProductAction{ProductID: productID, Day: day}
		r.s.actions[key] = a
	}
	switch kind {
	case model.ActionAddedToCart:
		a.TotalCart++
	case model.ActionPurchased:
		a.TotalPurchase++
	default:
		return fmt.Errorf("unknown product action %q", kind)
	}
	return nil
}

// Actions returns the recorded counters of a product, oldest day first.
func (r *ProductRepository) Actions(productID string) []model.ProductAction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.ProductAction
	for key, a := range r.s.actions {
		if key.productID == productID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
