package product

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// Options
	OptionTypes(ctx context.Context) ([]model.OptionType, error)
	AddOption(ctx context.Context, typeID int, name string) (*model.ProductOption, error)

	// Variation ops
	CreateFromOptions(ctx context.Context, productID string, selections map[int][]string) ([]model.Variation, error)
	ManageEmpty(ctx context.Context, productID string) error
	UpdateVariation(ctx context.Context, input *dto.UpdateVariationInput) (*model.Variation, error)
	ListVariations(ctx context.Context, productID string) ([]model.Variation, error)
	FindVariationBySKU(ctx context.Context, sku string) (*model.Variation, error)
	CopyDefaultVariation(ctx context.Context, productID string) (*model.Product, error)

	// Popularity counters
	AddedToCart(ctx context.Context, productID string) error
	Purchased(ctx context.Context, productID string) error

	// Search index
	Reindex(ctx context.Context, productIDs []string)
}
