package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/category"
	"github.com/fekuna/omnipos-cartridge/internal/category/dto"
	"github.com/fekuna/omnipos-cartridge/internal/category/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	productdto "github.com/fekuna/omnipos-cartridge/internal/product/dto"
	productUC "github.com/fekuna/omnipos-cartridge/internal/product/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/store/memory"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	categories category.UseCase
	products   product.UseCase
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	clk := &clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	types := []model.OptionType{{ID: 1, Name: "Size"}}
	return fixture{
		categories: usecase.NewCategoryUseCase(store.Categories(), store.Products(), clk, logger.NewNop()),
		products:   productUC.NewProductUseCase(store.Products(), types, nil, clk, logger.NewNop()),
	}
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func (f fixture) product(t *testing.T, title, unitPrice string, categoryIDs ...string) *model.Product {
	t.Helper()
	input := &productdto.CreateProductInput{Title: title, CategoryIDs: categoryIDs}
	if unitPrice != "" {
		input.UnitPrice = price(unitPrice)
	}
	p, err := f.products.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	return p
}

func TestCreateCategory_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{})
	assert.True(t, apperr.IsValidation(err))

	missing := "missing"
	_, err = f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Kids", ParentID: &missing})
	assert.True(t, apperr.IsValidation(err))

	_, err = f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Odd", PriceMin: price("10"), PriceMax: price("5")})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateCategory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cat, err := f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Shirts"})
	require.NoError(t, err)

	_, err = f.categories.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: cat.ID, Title: "Shirts", ParentID: &cat.ID})
	assert.True(t, apperr.IsValidation(err))

	_, err = f.categories.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := f.categories.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: cat.ID, Title: "Tops", SortOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, "Tops", updated.Title)
}

func TestListCategories_Roots(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	root, err := f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Clothing"})
	require.NoError(t, err)
	_, err = f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Shirts", ParentID: &root.ID})
	require.NoError(t, err)

	empty := ""
	roots, err := f.categories.ListCategories(ctx, &dto.CategoryFilters{ParentID: &empty})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, root.ID, roots[0].ID)

	children, err := f.categories.ListCategories(ctx, &dto.CategoryFilters{ParentID: &root.ID})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Shirts", children[0].Title)
}

func TestProductIDs_Explicit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cat, err := f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Mugs"})
	require.NoError(t, err)
	in := f.product(t, "Mug", "8", cat.ID)
	f.product(t, "Plate", "12")

	ids, err := f.categories.ProductIDs(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{in.ID: true}, ids)

	_, err = f.categories.ProductIDs(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProductIDs_PriceFilter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cheap := f.product(t, "Cheap", "5")
	f.product(t, "Dear", "50")
	f.product(t, "Unfiltered", "80")

	cat, err := f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Under 10", PriceMax: price("10")})
	require.NoError(t, err)

	ids, err := f.categories.ProductIDs(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{cheap.ID: true}, ids)

	t.Run("union with assigned", func(t *testing.T) {
		cat2, err := f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Cheap or picked", PriceMax: price("10")})
		require.NoError(t, err)
		f.product(t, "Picked", "90", cat2.ID)

		ids, err := f.categories.ProductIDs(ctx, cat2.ID)
		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.True(t, ids[cheap.ID])
	})

	t.Run("combined intersects assigned", func(t *testing.T) {
		cat3, err := f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Cheap and picked", PriceMax: price("10"), Combined: true})
		require.NoError(t, err)
		picked := f.product(t, "Picked cheap", "3", cat3.ID)
		f.product(t, "Picked dear", "30", cat3.ID)

		ids, err := f.categories.ProductIDs(ctx, cat3.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{picked.ID: true}, ids)
	})
}

func TestResolveProducts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cat, err := f.categories.CreateCategory(ctx, &dto.CreateCategoryInput{Title: "Hats"})
	require.NoError(t, err)
	hat := f.product(t, "Hat", "20", cat.ID)
	scarf := f.product(t, "Scarf", "25")

	ids, err := f.categories.ResolveProducts(ctx, &model.Discount{
		ProductIDs:  []string{scarf.ID},
		CategoryIDs: []string{cat.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{hat.ID: true, scarf.ID: true}, ids)

	ids, err = f.categories.ResolveProducts(ctx, &model.Discount{})
	require.NoError(t, err)
	assert.Empty(t, ids)
}
