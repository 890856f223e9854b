package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type DiscountRepository struct {
	s *Store
}

func copyCode(d model.DiscountCode) model.DiscountCode {
	d.Discount = copyDiscount(d.Discount)
	if d.UsesRemaining != nil {
		uses := *d.UsesRemaining
		d.UsesRemaining = &uses
	}
	return d
}

func (r *DiscountRepository) Create(_ context.Context, d *model.DiscountCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.codes {
		if existing.ID == d.ID {
			return errDuplicate("discount_codes", d.ID)
		}
		if existing.Code == d.Code {
			return errDuplicate("discount_codes.code", d.Code)
		}
	}
	r.s.codes = append(r.s.codes, copyCode(*d))
	return nil
}

func (r *DiscountRepository) FindByID(_ context.Context, id string) (*model.DiscountCode, error) {
	return r.find(func(d model.DiscountCode) bool { return d.ID == id }), nil
}

func (r *DiscountRepository) FindByCode(_ context.Context, code string) (*model.DiscountCode, error) {
	return r.find(func(d model.DiscountCode) bool { return d.Code == code }), nil
}

func (r *DiscountRepository) find(match func(model.DiscountCode) bool) *model.DiscountCode {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.codes {
		if match(d) {
			found := copyCode(d)
			return &found
		}
	}
	return nil
}

func (r *DiscountRepository) FindAll(_ context.Context) ([]model.DiscountCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.DiscountCode, 0, len(r.s.codes))
	for _, d := range r.s.codes {
		out = append(out, copyCode(d))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *DiscountRepository) Update(_ context.Context, d *model.DiscountCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.codes {
		if r.s.codes[i].ID == d.ID {
			r.s.codes[i] = copyCode(*d)
		}
	}
	return nil
}

func (r *DiscountRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.codes[:0]
	for _, d := range r.s.codes {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	r.s.codes = kept
	return nil
}

func (r *DiscountRepository) DecrementUses(_ context.Context, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.codes {
		d := &r.s.codes[i]
		if d.Code == code && d.Active && d.UsesRemaining != nil && *d.UsesRemaining > 0 {
			uses := *d.UsesRemaining - 1
			d.UsesRemaining = &uses
		}
	}
	return nil
}
