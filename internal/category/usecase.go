package category

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/category/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// ProductIDs returns the ids of the products a category shows.
	ProductIDs(ctx context.Context, categoryID string) (map[string]bool, error)
	// ResolveProducts returns the products a sale or discount code covers:
	// its explicit products plus those of its categories.
	ResolveProducts(ctx context.Context, discount *model.Discount) (map[string]bool, error)
}
