package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/sale"
)

type SaleRepository struct {
	s *Store
}

func copySale(s model.Sale) model.Sale {
	s.Discount = copyDiscount(s.Discount)
	return s
}

func (r *SaleRepository) Create(_ context.Context, s *model.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sales {
		if existing.ID == s.ID {
			return errDuplicate("sales", s.ID)
		}
	}
	r.s.sales = append(r.s.sales, copySale(*s))
	return nil
}

func (r *SaleRepository) FindByID(_ context.Context, id string) (*model.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.sales {
		if s.ID == id {
			found := copySale(s)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *SaleRepository) FindAll(_ context.Context) ([]model.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Sale, 0, len(r.s.sales))
	for _, s := range r.s.sales {
		out = append(out, copySale(s))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[j].CreatedAt.Before(out[i].CreatedAt) })
	return out, nil
}

func (r *SaleRepository) Update(_ context.Context, s *model.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.sales {
		if r.s.sales[i].ID == s.ID {
			r.s.sales[i] = copySale(*s)
		}
	}
	return nil
}

func (r *SaleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.sales[:0]
	for _, s := range r.s.sales {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.s.sales = kept
	return nil
}

func (r *SaleRepository) ReplaceAssignments(_ context.Context, s *model.Sale, a sale.Assignment) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	touched := newIDSet()
	r.clear(s.ID, touched)

	for i := range r.s.products {
		p := &r.s.products[i]
		if price, ok := a.Products[p.ID]; ok {
			p.SetSale(s.ID, price, s.ValidFrom, s.ValidTo)
			touched.add(p.ID)
		}
	}
	for i := range r.s.variations {
		v := &r.s.variations[i]
		if price, ok := a.Variations[v.ID]; ok {
			v.SetSale(s.ID, price, s.ValidFrom, s.ValidTo)
			touched.add(v.ProductID)
		}
	}
	return touched.list(), nil
}

func (r *SaleRepository) ClearAssignments(_ context.Context, saleID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	touched := newIDSet()
	r.clear(saleID, touched)
	return touched.list(), nil
}

// clear drops the sale from rows still referencing it. Callers hold the lock.
func (r *SaleRepository) clear(saleID string, touched *idSet) {
	for i := range r.s.products {
		p := &r.s.products[i]
		if p.SaleID != nil && *p.SaleID == saleID {
			p.ClearSale()
			touched.add(p.ID)
		}
	}
	for i := range r.s.variations {
		v := &r.s.variations[i]
		if v.SaleID != nil && *v.SaleID == saleID {
			v.ClearSale()
			touched.add(v.ProductID)
		}
	}
}

type idSet struct {
	seen  map[string]bool
	order []string
}

func newIDSet() *idSet {
	return &idSet{seen: map[string]bool{}}
}

func (s *idSet) add(id string) {
	if s.seen[id] {
		return
	}
	s.seen[id] = true
	s.order = append(s.order, id)
}

func (s *idSet) list() []string {
	return s.order
}
