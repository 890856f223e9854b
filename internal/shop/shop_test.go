package shop_test

import (
	"context"
	"testing"
	"time"

	categorydto "github.com/fekuna/omnipos-cartridge/internal/category/dto"
	checkoutdto "github.com/fekuna/omnipos-cartridge/internal/checkout/dto"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	discountdto "github.com/fekuna/omnipos-cartridge/internal/discount/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	orderdto "github.com/fekuna/omnipos-cartridge/internal/order/dto"
	productdto "github.com/fekuna/omnipos-cartridge/internal/product/dto"
	saledto "github.com/fekuna/omnipos-cartridge/internal/sale/dto"
	"github.com/fekuna/omnipos-cartridge/internal/session"
	"github.com/fekuna/omnipos-cartridge/internal/shop"
	"github.com/fekuna/omnipos-cartridge/internal/store/memory"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestShop_StorefrontFlow(t *testing.T) {
	ctx := context.Background()
	clk := &clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	app := shop.New(shop.MemoryRepositories(memory.NewStore()), shop.Options{
		OptionTypes: []model.OptionType{{ID: 1, Name: "Size"}, {ID: 2, Name: "Colour"}},
		CartExpiry:  30 * time.Minute,
		Clock:       clk,
	}, logger.NewNop())

	// Catalogue: a category with a sized tee.
	cat, err := app.Categories.CreateCategory(ctx, &categorydto.CreateCategoryInput{Title: "Tops"})
	require.NoError(t, err)
	for _, size := range []string{"S", "M"} {
		_, err := app.Products.AddOption(ctx, 1, size)
		require.NoError(t, err)
	}
	tee, err := app.Products.CreateProduct(ctx, &productdto.CreateProductInput{
		Title: "Tee", UnitPrice: amount("40"), Published: true, CategoryIDs: []string{cat.ID},
	})
	require.NoError(t, err)
	sizes, err := app.Products.CreateFromOptions(ctx, tee.ID, map[int][]string{1: {"S", "M"}})
	require.NoError(t, err)
	require.Len(t, sizes, 2)

	stock := 5
	medium := sizes[1]
	_, err = app.Products.UpdateVariation(ctx, &productdto.UpdateVariationInput{
		ID: medium.ID, SKU: "TEE-M", UnitPrice: amount("40"), StockCount: &stock,
	})
	require.NoError(t, err)

	// A quarter off everything in the category.
	_, err = app.Sales.SaveSale(ctx, &saledto.SaveSaleInput{
		Title: "Quarter off", Active: true, CategoryIDs: []string{cat.ID},
		Reduction: model.Reduction{Percent: amount("25")},
	})
	require.NoError(t, err)

	v, err := app.Products.FindVariationBySKU(ctx, "TEE-M")
	require.NoError(t, err)
	require.True(t, v.SalePrice.Valid)
	assert.True(t, v.SalePrice.Decimal.Equal(decimal.NewFromInt(30)))

	// Shopping.
	sess := app.Sessions("shopper-1")
	c, err := app.Carts.FromSession(ctx, sess)
	require.NoError(t, err)
	c, err = app.Carts.AddItem(ctx, sess, c, v, 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Tee Size: M", c.Items[0].Description)
	assert.True(t, c.TotalPrice().Equal(decimal.NewFromInt(60)))

	_, err = app.Discounts.SaveCode(ctx, &discountdto.SaveCodeInput{
		Code: "FREESHIP", Active: true, FreeShipping: true, Reduction: model.Reduction{Deduct: amount("5")},
		UsesRemaining: func() *int { n := 10; return &n }(),
	})
	require.NoError(t, err)

	// Reopening the session finds the same cart.
	sess = app.Sessions("shopper-1")
	c, err = app.Carts.FromSession(ctx, sess)
	require.NoError(t, err)
	require.True(t, c.HasItems())

	require.NoError(t, app.Checkout.SetShipping(ctx, sess, "Courier", decimal.NewFromInt(9)))
	discountTotal, err := app.Checkout.ApplyDiscountCode(ctx, sess, c, "FREESHIP")
	require.NoError(t, err)
	assert.True(t, discountTotal.Equal(decimal.NewFromInt(5)))

	o, err := app.Checkout.Process(ctx, sess, c, &checkoutdto.ProcessInput{
		SetupInput: orderdto.SetupInput{Billing: model.Address{FirstName: "Sam", LastName: "Shopper"}},
	})
	require.NoError(t, err)
	assert.True(t, o.ItemTotal.Equal(decimal.NewFromInt(60)))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(55)), o.Total.String())
	assert.Equal(t, "FREESHIP", o.DiscountCode)
	require.NotNil(t, o.TransactionID)

	v, err = app.Products.FindVariationBySKU(ctx, "TEE-M")
	require.NoError(t, err)
	assert.Equal(t, 3, *v.StockCount)

	dc, err := app.Discounts.GetCode(ctx, "FREESHIP")
	require.NoError(t, err)
	assert.Equal(t, 9, *dc.UsesRemaining)

	orders, err := app.Orders.ListOrders(ctx, &orderdto.OrderFilters{Key: "shopper-1"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Free shipping", orders[0].ShippingType)

	next, err := app.Carts.FromSession(ctx, sess)
	require.NoError(t, err)
	assert.False(t, next.IsPersisted())
	_, ok, err := sess.Get(ctx, session.KeyDiscountCode)
	require.NoError(t, err)
	assert.False(t, ok)
}
