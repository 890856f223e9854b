package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/cart"
	cartUC "github.com/fekuna/omnipos-cartridge/internal/cart/usecase"
	categoryUC "github.com/fekuna/omnipos-cartridge/internal/category/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/discount"
	discountdto "github.com/fekuna/omnipos-cartridge/internal/discount/dto"
	discountUC "github.com/fekuna/omnipos-cartridge/internal/discount/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/inventory"
	inventoryUC "github.com/fekuna/omnipos-cartridge/internal/inventory/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order"
	"github.com/fekuna/omnipos-cartridge/internal/order/dto"
	"github.com/fekuna/omnipos-cartridge/internal/order/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	productdto "github.com/fekuna/omnipos-cartridge/internal/product/dto"
	productUC "github.com/fekuna/omnipos-cartridge/internal/product/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/session"
	"github.com/fekuna/omnipos-cartridge/internal/store/memory"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, event any) error {
	return m.Called(ctx, key, event).Error(0)
}

type fixture struct {
	uc        order.UseCase
	carts     cart.UseCase
	products  product.UseCase
	stock     inventory.UseCase
	discounts discount.UseCase
	store     *memory.Store
	sess      session.Store
}

func setup(t *testing.T, publisher order.Publisher) fixture {
	t.Helper()
	store := memory.NewStore()
	clk := &clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	log := logger.NewNop()

	products := productUC.NewProductUseCase(store.Products(), nil, nil, clk, log)
	categories := categoryUC.NewCategoryUseCase(store.Categories(), store.Products(), clk, log)
	stock := inventoryUC.NewInventoryUseCase(store.Inventory(), store.Products(), 30*time.Minute, clk, log)
	carts := cartUC.NewCartUseCase(store.Carts(), products, stock, cartUC.Config{Expiry: 30 * time.Minute}, clk, log)
	discounts := discountUC.NewDiscountUseCase(store.Discounts(), store.Products(), categories, clk, log)

	return fixture{
		uc:        usecase.NewOrderUseCase(store.Orders(), carts, stock, products, discounts, publisher, clk, log),
		carts:     carts,
		products:  products,
		stock:     stock,
		discounts: discounts,
		store:     store,
		sess:      session.NewMemoryStore("shopper-key"),
	}
}

func (f fixture) variation(t *testing.T, title, sku, unitPrice string, stock *int) *model.Variation {
	t.Helper()
	ctx := context.Background()
	p, err := f.products.CreateProduct(ctx, &productdto.CreateProductInput{Title: title})
	require.NoError(t, err)
	vs, err := f.products.ListVariations(ctx, p.ID)
	require.NoError(t, err)
	v, err := f.products.UpdateVariation(ctx, &productdto.UpdateVariationInput{
		ID:         vs[0].ID,
		SKU:        sku,
		UnitPrice:  decimal.NewNullDecimal(decimal.RequireFromString(unitPrice)),
		StockCount: stock,
		IsDefault:  true,
	})
	require.NoError(t, err)
	return v
}

func intPtr(n int) *int { return &n }

// fill builds the two line cart: 2 x SKU1 at 10 and 1 x SKU2 at 5.
func (f fixture) fill(t *testing.T) *model.Cart {
	t.Helper()
	ctx := context.Background()
	sku1 := f.variation(t, "First", "SKU1", "10", intPtr(10))
	sku2 := f.variation(t, "Second", "SKU2", "5", nil)

	c, err := f.carts.AddItem(ctx, f.sess, &model.Cart{}, sku1, 2)
	require.NoError(t, err)
	c, err = f.carts.AddItem(ctx, f.sess, c, sku2, 1)
	require.NoError(t, err)
	return c
}

func (f fixture) setSession(t *testing.T, values map[string]string) {
	t.Helper()
	for k, v := range values {
		require.NoError(t, f.sess.Set(context.Background(), k, v))
	}
}

func TestSetup_Totals(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	c := f.fill(t)
	f.setSession(t, map[string]string{
		session.KeyShippingType:  "Courier",
		session.KeyShippingTotal: "7",
		session.KeyDiscountTotal: "5",
	})

	o, err := f.uc.Setup(ctx, f.sess, c, &dto.SetupInput{
		Billing:  model.Address{FirstName: "Ada", LastName: "Lovelace"},
		Shipping: model.Address{FirstName: "Ada", LastName: "Lovelace"},
	})
	require.NoError(t, err)

	assert.True(t, o.ItemTotal.Equal(decimal.NewFromInt(25)), o.ItemTotal.String())
	assert.True(t, o.Total.Equal(decimal.NewFromInt(27)), o.Total.String())
	assert.Equal(t, "Courier", o.ShippingType)
	assert.Equal(t, "shopper-key", o.Key)
	assert.Equal(t, model.OrderStatusUnprocessed, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "SKU1", o.Items[0].SKU)
	assert.True(t, o.Items[0].TotalPrice.Equal(decimal.NewFromInt(20)))

	stored, err := f.uc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)

	id, ok, err := f.sess.Get(ctx, session.KeyOrder)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, o.ID, id)

	v, err := f.products.FindVariationBySKU(ctx, "SKU1")
	require.NoError(t, err)
	assert.Equal(t, 10, *v.StockCount, "setup leaves stock alone")
}

func TestSetup_TaxAndFreeShipping(t *testing.T) {
	f := setup(t, nil)
	c := f.fill(t)
	f.setSession(t, map[string]string{
		session.KeyShippingType:  "Courier",
		session.KeyShippingTotal: "7",
		session.KeyTaxType:       "GST",
		session.KeyTaxTotal:      "2.50",
		session.KeyFreeShipping:  "true",
	})

	o, err := f.uc.Setup(context.Background(), f.sess, c, &dto.SetupInput{})
	require.NoError(t, err)
	assert.Equal(t, order.FreeShippingType, o.ShippingType)
	assert.True(t, o.ShippingTotal.Decimal.IsZero())
	assert.Equal(t, "GST", o.TaxType)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("27.5")), o.Total.String())
}

func TestSetup_Rejections(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	_, err := f.uc.Setup(ctx, f.sess, &model.Cart{}, &dto.SetupInput{})
	assert.True(t, apperr.IsValidation(err))

	c := f.fill(t)
	f.setSession(t, map[string]string{session.KeyShippingTotal: "seven"})
	_, err = f.uc.Setup(ctx, f.sess, c, &dto.SetupInput{})
	require.Error(t, err)
	assert.False(t, apperr.IsValidation(err))
}

func TestComplete(t *testing.T) {
	pub := new(mockPublisher)
	f := setup(t, pub)
	ctx := context.Background()
	c := f.fill(t)

	_, err := f.discounts.SaveCode(ctx, &discountdto.SaveCodeInput{
		Code: "ONCE", Active: true, UsesRemaining: intPtr(1),
		Reduction: model.Reduction{Deduct: decimal.NewNullDecimal(decimal.NewFromInt(5))},
	})
	require.NoError(t, err)
	f.setSession(t, map[string]string{
		session.KeyShippingTotal: "7",
		session.KeyDiscountCode:  "ONCE",
		session.KeyDiscountTotal: "5",
	})

	o, err := f.uc.Setup(ctx, f.sess, c, &dto.SetupInput{})
	require.NoError(t, err)

	pub.On("Publish", mock.Anything, o.ID, mock.MatchedBy(func(e order.OrderCompletedEvent) bool {
		return e.EventType == order.EventOrderCompleted &&
			e.Payload.TransactionID == "txn-1" &&
			e.Payload.Total.Equal(decimal.NewFromInt(27)) &&
			len(e.Payload.Items) == 2
	})).Return(nil).Once()

	require.NoError(t, f.uc.Complete(ctx, f.sess, c, o, "txn-1"))
	pub.AssertExpectations(t)

	v, err := f.products.FindVariationBySKU(ctx, "SKU1")
	require.NoError(t, err)
	assert.Equal(t, 8, *v.StockCount)

	stored, err := f.store.Carts().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored, "the cart is deleted")

	for _, key := range append([]string{session.KeyCart, session.KeyOrder}, session.OrderFields...) {
		_, ok, err := f.sess.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	dc, err := f.discounts.GetCode(ctx, "ONCE")
	require.NoError(t, err)
	assert.Equal(t, 0, *dc.UsesRemaining)

	got, err := f.uc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, "txn-1", *got.TransactionID)
	assert.Equal(t, model.OrderStatusUnprocessed, got.Status)

	movements, err := f.stock.ListMovements(ctx, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "SKU1", movements[0].SKU)
}

func TestComplete_SkipsDeletedVariation(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	c := f.fill(t)

	o, err := f.uc.Setup(ctx, f.sess, c, &dto.SetupInput{})
	require.NoError(t, err)

	v, err := f.products.FindVariationBySKU(ctx, "SKU2")
	require.NoError(t, err)
	require.NoError(t, f.products.DeleteProduct(ctx, v.ProductID))

	require.NoError(t, f.uc.Complete(ctx, f.sess, c, o, ""))

	first, err := f.products.FindVariationBySKU(ctx, "SKU1")
	require.NoError(t, err)
	assert.Equal(t, 8, *first.StockCount)
}

func TestAbandon(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	c := f.fill(t)

	o, err := f.uc.Setup(ctx, f.sess, c, &dto.SetupInput{})
	require.NoError(t, err)
	require.NoError(t, f.uc.Abandon(ctx, f.sess, o.ID))

	_, err = f.uc.GetOrder(ctx, o.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, ok, err := f.sess.Get(ctx, session.KeyOrder)
	require.NoError(t, err)
	assert.False(t, ok)

	live, err := f.carts.FromSession(ctx, f.sess)
	require.NoError(t, err)
	assert.Equal(t, c.ID, live.ID, "the cart survives a failed payment")
	assert.Equal(t, 3, live.TotalQuantity())
}

func TestListAndUpdateStatus(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	c := f.fill(t)
	user := "user-1"

	o, err := f.uc.Setup(ctx, f.sess, c, &dto.SetupInput{UserID: &user})
	require.NoError(t, err)

	orders, err := f.uc.ListOrders(ctx, &dto.OrderFilters{UserID: user})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	orders, err = f.uc.ListOrders(ctx, &dto.OrderFilters{Key: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, orders)

	updated, err := f.uc.UpdateStatus(ctx, o.ID, model.OrderStatusProcessed)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessed, updated.Status)

	orders, err = f.uc.ListOrders(ctx, &dto.OrderFilters{Status: model.OrderStatusProcessed})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = f.uc.UpdateStatus(ctx, o.ID, model.OrderStatus(9))
	assert.True(t, apperr.IsValidation(err))

	_, err = f.uc.UpdateStatus(ctx, "missing", model.OrderStatusProcessed)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
