package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/category"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/pricing"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	productdto "github.com/fekuna/omnipos-cartridge/internal/product/dto"
	"github.com/fekuna/omnipos-cartridge/internal/sale"
	"github.com/fekuna/omnipos-cartridge/internal/sale/dto"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type saleUseCase struct {
	repo       sale.Repository
	products   product.Repository
	productUC  product.UseCase
	categories category.UseCase
	clock      clock.Clock
	logger     logger.ZapLogger
}

func NewSaleUseCase(repo sale.Repository, products product.Repository, productUC product.UseCase, categories category.UseCase, clk clock.Clock, log logger.ZapLogger) sale.UseCase {
	return &saleUseCase{
		repo:       repo,
		products:   products,
		productUC:  productUC,
		categories: categories,
		clock:      clk,
		logger:     log,
	}
}

func (uc *saleUseCase) SaveSale(ctx context.Context, input *dto.SaveSaleInput) (*model.Sale, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("title", "is required")
	}
	if err := pricing.ValidateReduction(input.Reduction, true); err != nil {
		return nil, err
	}
	if input.ValidFrom != nil && input.ValidTo != nil && input.ValidTo.Before(*input.ValidFrom) {
		return nil, apperr.Configuration("sale ends before it starts")
	}

	now := uc.clock.Now()
	var s *model.Sale
	if input.ID == "" {
		s = &model.Sale{BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now}}
	} else {
		existing, err := uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, apperr.ErrNotFound
		}
		s = existing
	}
	s.UpdatedAt = now
	s.Title = input.Title
	s.Active = input.Active
	s.ProductIDs = input.ProductIDs
	s.CategoryIDs = input.CategoryIDs
	s.Reduction = input.Reduction
	s.ValidFrom = input.ValidFrom
	s.ValidTo = input.ValidTo

	var err error
	if input.ID == "" {
		err = uc.repo.Create(ctx, s)
	} else {
		err = uc.repo.Update(ctx, s)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.apply(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *saleUseCase) GetSale(ctx context.Context, id string) (*model.Sale, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *saleUseCase) ListSales(ctx context.Context) ([]model.Sale, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *saleUseCase) Deactivate(ctx context.Context, id string) (*model.Sale, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperr.ErrNotFound
	}
	s.Active = false
	s.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	if err := uc.Remove(ctx, id); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *saleUseCase) DeleteSale(ctx context.Context, id string) error {
	if err := uc.Remove(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *saleUseCase) Apply(ctx context.Context, id string) error {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		// Deleted since the event was published.
		return uc.Remove(ctx, id)
	}
	return uc.apply(ctx, s)
}

func (uc *saleUseCase) Remove(ctx context.Context, id string) error {
	touched, err := uc.repo.ClearAssignments(ctx, id)
	if err != nil {
		return err
	}
	uc.logger.Info("sale cleared", zap.String("sale_id", id), zap.Int("products", len(touched)))
	uc.reindex(touched)
	return nil
}

// apply runs in two phases: compute every price the sale should cache, then
// swap them in with one repository call. A failed run leaves the previous
// prices in place and can simply be repeated.
func (uc *saleUseCase) apply(ctx context.Context, s *model.Sale) error {
	if !s.Active {
		return uc.Remove(ctx, s.ID)
	}

	assignment, err := uc.compute(ctx, s)
	if err != nil {
		return err
	}
	touched, err := uc.repo.ReplaceAssignments(ctx, s, assignment)
	if err != nil {
		return err
	}

	uc.logger.Info("sale applied",
		zap.String("sale_id", s.ID),
		zap.Int("products", len(assignment.Products)),
		zap.Int("variations", len(assignment.Variations)),
	)
	uc.reindex(touched)
	return nil
}

func (uc *saleUseCase) compute(ctx context.Context, s *model.Sale) (sale.Assignment, error) {
	assignment := sale.Assignment{
		Products:   map[string]decimal.Decimal{},
		Variations: map[string]decimal.Decimal{},
	}

	covered, err := uc.categories.ResolveProducts(ctx, &s.Discount)
	if err != nil {
		return assignment, err
	}
	if len(covered) == 0 {
		return assignment, nil
	}
	ids := make([]string, 0, len(covered))
	for id := range covered {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products, err := uc.products.FindAll(ctx, &productdto.ProductFilters{IDs: ids})
	if err != nil {
		return assignment, err
	}
	for _, p := range products {
		if price, ok := pricing.SalePrice(s.Reduction, p.UnitPrice); ok {
			assignment.Products[p.ID] = price
		}
	}

	variations, err := uc.products.FindVariations(ctx, &productdto.VariationFilters{ProductIDs: ids})
	if err != nil {
		return assignment, err
	}
	for _, v := range variations {
		if price, ok := pricing.SalePrice(s.Reduction, v.UnitPrice); ok {
			assignment.Variations[v.ID] = price
		}
	}
	return assignment, nil
}

func (uc *saleUseCase) reindex(productIDs []string) {
	if len(productIDs) == 0 {
		return
	}
	go uc.productUC.Reindex(context.Background(), productIDs)
}
