package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order/dto"
)

type OrderRepository struct {
	s *Store
}

func copyOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}

func (r *OrderRepository) CreateWithItems(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.orders {
		if existing.ID == o.ID {
			return errDuplicate("orders", o.ID)
		}
	}
	r.s.orders = append(r.s.orders, copyOrder(*o))
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.orders {
		if o.ID == id {
			found := copyOrder(o)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *OrderRepository) FindAll(_ context.Context, f *dto.OrderFilters) ([]model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Order
	for _, o := range r.s.orders {
		if f != nil {
			switch {
			case f.Key != "" && o.Key != f.Key,
				f.UserID != "" && (o.UserID == nil || *o.UserID != f.UserID),
				f.Status != 0 && o.Status != f.Status,
				f.StartDate != nil && o.Time.Before(*f.StartDate),
				f.EndDate != nil && o.Time.After(*f.EndDate):
				continue
			}
		}
		// List views carry no items, as in the SQL store.
		listed := o
		listed.Items = nil
		out = append(out, listed)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[j].Time.Before(out[i].Time) })
	return out, nil
}

func (r *OrderRepository) UpdateTransaction(_ context.Context, id, transactionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.orders {
		if r.s.orders[i].ID == id {
			txID := transactionID
			r.s.orders[i].TransactionID = &txID
		}
	}
	return nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id string, status model.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.orders {
		if r.s.orders[i].ID == id {
			r.s.orders[i].Status = status
		}
	}
	return nil
}

func (r *OrderRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.orders[:0]
	for _, o := range r.s.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	r.s.orders = kept
	return nil
}
