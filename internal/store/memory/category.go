package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-cartridge/internal/category/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type CategoryRepository struct {
	s *Store
}

func copyCategory(c model.Category) model.Category {
	c.Options = cloneFilter(c.Options)
	return c
}

func (r *CategoryRepository) Create(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.ID == c.ID {
			return errDuplicate("categories", c.ID)
		}
	}
	r.s.categories = append(r.s.categories, copyCategory(*c))
	return nil
}

func (r *CategoryRepository) FindByID(_ context.Context, id string) (*model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.ID == id {
			found := copyCategory(c)
			return &found, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepository) FindAll(_ context.Context, f *dto.CategoryFilters) ([]model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids map[string]bool
	if f != nil && len(f.IDs) > 0 {
		ids = toSet(f.IDs)
	}
	var out []model.Category
	for _, c := range r.s.categories {
		if ids != nil && !ids[c.ID] {
			continue
		}
		if f != nil && f.ParentID != nil {
			if *f.ParentID == "" && c.ParentID != nil {
				continue
			}
			if *f.ParentID != "" && (c.ParentID == nil || *c.ParentID != *f.ParentID) {
				continue
			}
		}
		out = append(out, copyCategory(c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (r *CategoryRepository) Update(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.categories {
		if r.s.categories[i].ID == c.ID {
			r.s.categories[i] = copyCategory(*c)
			return nil
		}
	}
	return nil
}

// Delete detaches child categories, matching the ON DELETE SET NULL key.
func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.categories[:0]
	for _, c := range r.s.categories {
		if c.ID == id {
			continue
		}
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
		}
		kept = append(kept, c)
	}
	r.s.categories = kept
	return nil
}
