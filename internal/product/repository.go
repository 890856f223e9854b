package product

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error

	// Variations
	CreateVariation(ctx context.Context, variation *model.Variation) error
	UpdateVariation(ctx context.Context, variation *model.Variation) error
	DeleteVariations(ctx context.Context, ids []string) error
	FindVariations(ctx context.Context, filters *dto.VariationFilters) ([]model.Variation, error)
	FindVariationBySKU(ctx context.Context, sku string) (*model.Variation, error)

	// Allowed option values
	ListOptions(ctx context.Context) ([]model.ProductOption, error)
	CreateOption(ctx context.Context, option *model.ProductOption) error

	RecordAction(ctx context.Context, productID string, day int, kind model.ActionKind) error
}
