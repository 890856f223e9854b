package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/category"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/discount"
	"github.com/fekuna/omnipos-cartridge/internal/discount/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/pricing"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	productdto "github.com/fekuna/omnipos-cartridge/internal/product/dto"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxCodeLength = 20

type discountUseCase struct {
	repo       discount.Repository
	products   product.Repository
	categories category.UseCase
	clock      clock.Clock
	logger     logger.ZapLogger
}

func NewDiscountUseCase(repo discount.Repository, products product.Repository, categories category.UseCase, clk clock.Clock, log logger.ZapLogger) discount.UseCase {
	return &discountUseCase{
		repo:       repo,
		products:   products,
		categories: categories,
		clock:      clk,
		logger:     log,
	}
}

func (uc *discountUseCase) SaveCode(ctx context.Context, input *dto.SaveCodeInput) (*model.DiscountCode, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, apperr.Validation("code", "is required")
	}
	if len(code) > maxCodeLength {
		return nil, apperr.Validation("code", "must be at most %d characters", maxCodeLength)
	}
	if err := pricing.ValidateReduction(input.Reduction, false); err != nil {
		return nil, err
	}
	if input.MinPurchase.Valid && input.MinPurchase.Decimal.IsNegative() {
		return nil, apperr.Configuration("minimum purchase must not be negative")
	}
	if input.UsesRemaining != nil && *input.UsesRemaining < 0 {
		return nil, apperr.Configuration("uses remaining must not be negative")
	}

	other, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != input.ID {
		return nil, apperr.Validation("code", "%q already exists", code)
	}

	now := uc.clock.Now()
	var dc *model.DiscountCode
	if input.ID == "" {
		dc = &model.DiscountCode{BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now}}
	} else {
		dc, err = uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		if dc == nil {
			return nil, apperr.ErrNotFound
		}
	}
	dc.UpdatedAt = now
	dc.Title = input.Title
	dc.Code = code
	dc.Active = input.Active
	dc.ProductIDs = input.ProductIDs
	dc.CategoryIDs = input.CategoryIDs
	dc.Reduction = input.Reduction
	dc.ValidFrom = input.ValidFrom
	dc.ValidTo = input.ValidTo
	dc.MinPurchase = input.MinPurchase
	dc.FreeShipping = input.FreeShipping
	dc.UsesRemaining = input.UsesRemaining

	if input.ID == "" {
		err = uc.repo.Create(ctx, dc)
	} else {
		err = uc.repo.Update(ctx, dc)
	}
	if err != nil {
		return nil, err
	}
	return dc, nil
}

func (uc *discountUseCase) GetCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	return uc.repo.FindByCode(ctx, code)
}

func (uc *discountUseCase) ListCodes(ctx context.Context) ([]model.DiscountCode, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *discountUseCase) DeleteCode(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func (uc *discountUseCase) Validate(ctx context.Context, code string, c *model.Cart) (*model.DiscountCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, discount.ErrInvalidCode
	}
	dc, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if dc == nil || !dc.Active {
		return nil, discount.ErrInvalidCode
	}
	if !pricing.WithinValidity(dc.ValidFrom, dc.ValidTo, uc.clock.Now()) {
		return nil, discount.ErrInvalidCode
	}
	if dc.UsesRemaining != nil && *dc.UsesRemaining <= 0 {
		return nil, discount.ErrInvalidCode
	}
	if dc.MinPurchase.Valid && c.TotalPrice().LessThan(dc.MinPurchase.Decimal) {
		return nil, discount.ErrInvalidCode
	}

	if dc.Restricted() {
		skus, err := uc.applicableSKUs(ctx, dc, c)
		if err != nil {
			return nil, err
		}
		if len(skus) == 0 {
			return nil, discount.ErrInvalidCode
		}
	}
	return dc, nil
}

// CalculateDiscount applies the code to the cart total, or line by line to
// the lines it covers when restricted to some products.
func (uc *discountUseCase) CalculateDiscount(ctx context.Context, dc *model.DiscountCode, c *model.Cart) (decimal.Decimal, error) {
	if !dc.Restricted() {
		return pricing.DiscountAmount(dc.Reduction, c.TotalPrice()), nil
	}

	skus, err := uc.applicableSKUs(ctx, dc, c)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, item := range c.Items {
		if !skus[item.SKU] {
			continue
		}
		perUnit := pricing.DiscountAmount(dc.Reduction, item.UnitPrice)
		total = total.Add(perUnit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

func (uc *discountUseCase) Redeem(ctx context.Context, code string) error {
	if code == "" {
		return nil
	}
	dc, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if dc == nil || !dc.Active || !pricing.WithinValidity(dc.ValidFrom, dc.ValidTo, uc.clock.Now()) {
		return nil
	}
	if err := uc.repo.DecrementUses(ctx, code); err != nil {
		uc.logger.Error("failed to redeem discount code", zap.String("code", code), zap.Error(err))
		return err
	}
	return nil
}

// applicableSKUs returns the cart skus that belong to products the code
// covers.
func (uc *discountUseCase) applicableSKUs(ctx context.Context, dc *model.DiscountCode, c *model.Cart) (map[string]bool, error) {
	skus := map[string]bool{}
	if !c.HasItems() {
		return skus, nil
	}
	covered, err := uc.categories.ResolveProducts(ctx, &dc.Discount)
	if err != nil {
		return nil, err
	}
	if len(covered) == 0 {
		return skus, nil
	}

	variations, err := uc.products.FindVariations(ctx, &productdto.VariationFilters{SKUs: c.SKUs()})
	if err != nil {
		return nil, err
	}
	for _, v := range variations {
		if covered[v.ProductID] {
			skus[v.SKU] = true
		}
	}
	return skus, nil
}
