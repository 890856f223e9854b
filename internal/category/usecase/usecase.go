package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/category"
	"github.com/fekuna/omnipos-cartridge/internal/category/dto"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/pricing"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	productdto "github.com/fekuna/omnipos-cartridge/internal/product/dto"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type categoryUseCase struct {
	repo     category.Repository
	products product.Repository
	clock    clock.Clock
	logger   logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, products product.Repository, clk clock.Clock, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:     repo,
		products: products,
		clock:    clk,
		logger:   log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if input.Title == "" {
		return nil, apperr.Validation("title", "is required")
	}
	if input.ParentID != nil && *input.ParentID != "" {
		parent, err := uc.repo.FindByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.Validation("parent_id", "category not found")
		}
	}
	if err := validatePriceRange(input.PriceMin, input.PriceMax); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ParentID:  input.ParentID,
		Title:     input.Title,
		SortOrder: input.SortOrder,
		Options:   input.Options,
		SaleID:    input.SaleID,
		PriceMin:  input.PriceMin,
		PriceMax:  input.PriceMax,
		Combined:  input.Combined,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.ErrNotFound
	}
	if input.ParentID != nil && *input.ParentID == cat.ID {
		return nil, apperr.Validation("parent_id", "a category cannot be its own parent")
	}
	if err := validatePriceRange(input.PriceMin, input.PriceMax); err != nil {
		return nil, err
	}

	cat.ParentID = input.ParentID
	cat.Title = input.Title
	cat.SortOrder = input.SortOrder
	cat.Options = input.Options
	cat.SaleID = input.SaleID
	cat.PriceMin = input.PriceMin
	cat.PriceMax = input.PriceMax
	cat.Combined = input.Combined
	cat.UpdatedAt = uc.clock.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *categoryUseCase) ProductIDs(ctx context.Context, categoryID string) (map[string]bool, error) {
	cat, err := uc.repo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.ErrNotFound
	}
	return uc.members(ctx, cat)
}

func (uc *categoryUseCase) ResolveProducts(ctx context.Context, discount *model.Discount) (map[string]bool, error) {
	ids := make(map[string]bool, len(discount.ProductIDs))
	for _, id := range discount.ProductIDs {
		ids[id] = true
	}
	if len(discount.CategoryIDs) == 0 {
		return ids, nil
	}

	cats, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{IDs: discount.CategoryIDs})
	if err != nil {
		return nil, err
	}
	for i := range cats {
		members, err := uc.members(ctx, &cats[i])
		if err != nil {
			return nil, err
		}
		for id := range members {
			ids[id] = true
		}
	}
	return ids, nil
}

// members evaluates a category: its assigned products, combined with the
// products owning a variation that passes the category's filters. Combined
// categories intersect both sets, the others take the union.
func (uc *categoryUseCase) members(ctx context.Context, cat *model.Category) (map[string]bool, error) {
	assigned, err := uc.products.FindAll(ctx, &productdto.ProductFilters{CategoryID: cat.ID})
	if err != nil {
		return nil, err
	}
	explicit := make(map[string]bool, len(assigned))
	for _, p := range assigned {
		explicit[p.ID] = true
	}
	if !cat.HasFilters() {
		return explicit, nil
	}

	variations, err := uc.products.FindVariations(ctx, &productdto.VariationFilters{})
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	filtered := make(map[string]bool)
	for _, v := range variations {
		if matchVariation(cat, v, now) {
			filtered[v.ProductID] = true
		}
	}

	if cat.Combined {
		if len(explicit) == 0 {
			return filtered, nil
		}
		out := make(map[string]bool)
		for id := range filtered {
			if explicit[id] {
				out[id] = true
			}
		}
		return out, nil
	}
	for id := range explicit {
		filtered[id] = true
	}
	return filtered, nil
}

func matchVariation(cat *model.Category, v model.Variation, now time.Time) bool {
	var results []bool

	if len(cat.Options) > 0 {
		ok := true
		for typeID, allowed := range cat.Options {
			val, set := v.Options[typeID]
			if !set || !contains(allowed, val) {
				ok = false
				break
			}
		}
		results = append(results, ok)
	}

	validSale := pricing.WithinValidity(v.SaleFrom, v.SaleTo, now)
	if cat.SaleID != nil {
		results = append(results, v.SaleID != nil && *v.SaleID == *cat.SaleID && validSale)
	}

	if cat.PriceMin.Valid || cat.PriceMax.Valid {
		ok := true
		if cat.PriceMin.Valid {
			unit := v.UnitPrice.Valid && v.UnitPrice.Decimal.GreaterThanOrEqual(cat.PriceMin.Decimal)
			sale := v.SalePrice.Valid && v.SalePrice.Decimal.GreaterThanOrEqual(cat.PriceMin.Decimal) && validSale
			ok = ok && (unit || sale)
		}
		if cat.PriceMax.Valid {
			unit := v.UnitPrice.Valid && v.UnitPrice.Decimal.LessThanOrEqual(cat.PriceMax.Decimal)
			sale := v.SalePrice.Valid && v.SalePrice.Decimal.LessThanOrEqual(cat.PriceMax.Decimal) && validSale
			ok = ok && (unit || sale)
		}
		results = append(results, ok)
	}

	if len(results) == 0 {
		return false
	}
	out := results[0]
	for _, r := range results[1:] {
		if cat.Combined {
			out = out && r
		} else {
			out = out || r
		}
	}
	return out
}

func validatePriceRange(min, max decimal.NullDecimal) error {
	if min.Valid && max.Valid && min.Decimal.GreaterThan(max.Decimal) {
		return apperr.Validation("price_min", "must not exceed the maximum price")
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
