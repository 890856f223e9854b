package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/cart"
	"github.com/fekuna/omnipos-cartridge/internal/cart/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	invUC "github.com/fekuna/omnipos-cartridge/internal/inventory/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/model"
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

const expiry = 30 * time.Minute

type fixture struct {
	uc       cart.UseCase
	products product.UseCase
	store    *memory.Store
	clock    *clock.Fixed
	sess     session.Store
}

func setup(t *testing.T, cfg usecase.Config) fixture {
	t.Helper()
	store := memory.NewStore()
	clk := &clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	log := logger.NewNop()
	products := productUC.NewProductUseCase(store.Products(), []model.OptionType{{ID: 1, Name: "Size"}}, nil, clk, log)
	stock := invUC.NewInventoryUseCase(store.Inventory(), store.Products(), expiry, clk, log)
	cfg.Expiry = expiry
	return fixture{
		uc:       usecase.NewCartUseCase(store.Carts(), products, stock, cfg, clk, log),
		products: products,
		store:    store,
		clock:    clk,
		sess:     session.NewMemoryStore("shopper"),
	}
}

// variation creates a product and returns its default variation with the
// given sku, price and stock.
func (f fixture) variation(t *testing.T, title, sku, unitPrice string, stock *int) *model.Variation {
	t.Helper()
	ctx := context.Background()
	p, err := f.products.CreateProduct(ctx, &productdto.CreateProductInput{Title: title, Published: true})
	require.NoError(t, err)
	vs, err := f.products.ListVariations(ctx, p.ID)
	require.NoError(t, err)
	input := &productdto.UpdateVariationInput{ID: vs[0].ID, SKU: sku, StockCount: stock, IsDefault: true}
	if unitPrice != "" {
		input.UnitPrice = decimal.NewNullDecimal(decimal.RequireFromString(unitPrice))
	}
	v, err := f.products.UpdateVariation(ctx, input)
	require.NoError(t, err)
	return v
}

func intPtr(n int) *int { return &n }

func TestFromSession_EmptyWithoutCart(t *testing.T) {
	f := setup(t, usecase.Config{})
	c, err := f.uc.FromSession(context.Background(), f.sess)
	require.NoError(t, err)
	assert.False(t, c.IsPersisted())
	assert.False(t, c.HasItems())
}

func TestAddItem_CreatesCartAndMergesLines(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", intPtr(10))

	c, err := f.uc.FromSession(ctx, f.sess)
	require.NoError(t, err)

	c, err = f.uc.AddItem(ctx, f.sess, c, v, 2)
	require.NoError(t, err)
	require.True(t, c.IsPersisted())

	id, ok, err := f.sess.Get(ctx, session.KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, c.ID, id)

	c, err = f.uc.AddItem(ctx, f.sess, c, v, 3)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	item := c.Items[0]
	assert.Equal(t, 5, item.Quantity)
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "Tee", item.Description)
	assert.Equal(t, "/shop/product/tee/", item.URL)

	reloaded, err := f.uc.FromSession(ctx, f.sess)
	require.NoError(t, err)
	assert.Equal(t, c.ID, reloaded.ID)
	assert.Equal(t, 5, reloaded.TotalQuantity())
}

func TestAddItem_PriceChangeStartsNewLine(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", nil)

	c, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.NoError(t, err)

	v.UnitPrice = decimal.NewNullDecimal(decimal.NewFromInt(12))
	c, err = f.uc.AddItem(ctx, f.sess, c, v, 1)
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.True(t, c.TotalPrice().Equal(decimal.NewFromInt(22)))
	assert.Equal(t, []string{"TEE", "TEE"}, c.SKUs())
}

func TestAddItem_UsesSalePrice(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", nil)
	v.SetSale("sale-1", decimal.NewFromInt(7), nil, nil)

	c, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].UnitPrice.Equal(decimal.NewFromInt(7)))
}

func TestAddItem_Rejections(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", intPtr(2))

	_, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 0)
	assert.True(t, apperr.IsValidation(err))

	_, err = f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 3)
	assert.True(t, apperr.IsValidation(err), "more than in stock")

	unpriced := f.variation(t, "Sample", "SAMPLE", "", nil)
	_, err = f.uc.AddItem(ctx, f.sess, &model.Cart{}, unpriced, 1)
	assert.True(t, apperr.IsValidation(err), "no price")

	orphan := *v
	orphan.ProductID = "missing"
	_, err = f.uc.AddItem(ctx, f.sess, &model.Cart{}, &orphan, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, ok, err := f.sess.Get(ctx, session.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok, "rejected adds persist no cart")
}

func TestAddItem_StockCountsOtherCarts(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", intPtr(3))

	_, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 2)
	require.NoError(t, err)

	other := session.NewMemoryStore("other")
	_, err = f.uc.AddItem(ctx, other, &model.Cart{}, v, 2)
	assert.True(t, apperr.IsValidation(err))

	f.clock.Advance(expiry + time.Minute)
	_, err = f.uc.AddItem(ctx, other, &model.Cart{}, v, 2)
	require.NoError(t, err, "the first cart's hold has lapsed")
}

func TestUpdateQuantity(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", intPtr(5))

	c, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 2)
	require.NoError(t, err)
	itemID := c.Items[0].ID

	c, err = f.uc.UpdateQuantity(ctx, c, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.True(t, c.TotalPrice().Equal(decimal.NewFromInt(40)))

	_, err = f.uc.UpdateQuantity(ctx, c, itemID, 8)
	assert.True(t, apperr.IsValidation(err))

	_, err = f.uc.UpdateQuantity(ctx, c, itemID, -1)
	assert.True(t, apperr.IsValidation(err))

	_, err = f.uc.UpdateQuantity(ctx, c, "missing", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	c, err = f.uc.UpdateQuantity(ctx, c, itemID, 0)
	require.NoError(t, err)
	assert.True(t, c.IsPersisted())
	assert.Empty(t, c.Items)
}

func TestUpdateQuantity_ExpiredCart(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", nil)

	c, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.NoError(t, err)

	f.clock.Advance(expiry + time.Second)

	_, err = f.uc.UpdateQuantity(ctx, c, c.Items[0].ID, 2)
	assert.True(t, apperr.IsValidation(err))

	_, err = f.uc.RemoveItem(ctx, c, c.Items[0].ID)
	assert.True(t, apperr.IsValidation(err))

	fresh, err := f.uc.FromSession(ctx, f.sess)
	require.NoError(t, err)
	assert.False(t, fresh.IsPersisted())
}

func TestAddItem_SweptCart(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", nil)

	c, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.NoError(t, err)

	f.clock.Advance(expiry + time.Second)
	n, err := f.uc.ExpireStale(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := f.uc.AddItem(ctx, f.sess, c, v, 1)
	assert.Nil(t, got)
	assert.True(t, apperr.IsValidation(err))

	item, err := f.store.Carts().FindItem(ctx, c.ID, "TEE", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Nil(t, item, "no line is written into a removed cart")
}

func TestAddItem_StaleCartNotSwept(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", nil)

	c, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.NoError(t, err)

	f.clock.Advance(expiry + time.Second)
	_, err = f.uc.AddItem(ctx, f.sess, c, v, 1)
	assert.True(t, apperr.IsValidation(err))

	stored, err := f.store.Carts().FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 1, stored.Items[0].Quantity)
}

func TestExpireStale(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", nil)

	_, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.NoError(t, err)
	_, err = f.uc.AddItem(ctx, session.NewMemoryStore("b"), &model.Cart{}, v, 1)
	require.NoError(t, err)

	n, err := f.uc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(expiry + time.Second)
	n, err = f.uc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDelete(t *testing.T) {
	f := setup(t, usecase.Config{})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", nil)

	c, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, f.sess, c))

	stored, err := f.store.Carts().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	_, ok, err := f.sess.Get(ctx, session.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsellProducts(t *testing.T) {
	ctx := context.Background()
	f := setup(t, usecase.Config{UseUpsell: true})

	extra, err := f.products.CreateProduct(ctx, &productdto.CreateProductInput{Title: "Socks", Published: true})
	require.NoError(t, err)
	hidden, err := f.products.CreateProduct(ctx, &productdto.CreateProductInput{Title: "Draft"})
	require.NoError(t, err)

	v := f.variation(t, "Shoes", "SHOES", "60", nil)
	shoes, err := f.store.Products().FindByID(ctx, v.ProductID)
	require.NoError(t, err)
	shoes.UpsellIDs = []string{extra.ID, hidden.ID, shoes.ID}
	require.NoError(t, f.store.Products().Update(ctx, shoes))

	c, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.NoError(t, err)

	upsell, err := f.uc.UpsellProducts(ctx, c)
	require.NoError(t, err)
	require.Len(t, upsell, 1)
	assert.Equal(t, extra.ID, upsell[0].ID)

	t.Run("disabled", func(t *testing.T) {
		off := setup(t, usecase.Config{})
		got, err := off.uc.UpsellProducts(ctx, c)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockLocker) ReleaseLock(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func TestAddItem_LocksSku(t *testing.T) {
	locker := new(mockLocker)
	f := setup(t, usecase.Config{Locker: locker})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", intPtr(3))

	locker.On("AcquireLock", mock.Anything, "lock:stock:TEE", mock.Anything, 5*time.Second).Return(true, nil).Once()
	locker.On("ReleaseLock", mock.Anything, "lock:stock:TEE", mock.Anything).Return(nil).Once()

	_, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.NoError(t, err)
	locker.AssertExpectations(t)
}

func TestAddItem_LockBusy(t *testing.T) {
	locker := new(mockLocker)
	f := setup(t, usecase.Config{Locker: locker})
	ctx := context.Background()
	v := f.variation(t, "Tee", "TEE", "10", intPtr(3))

	locker.On("AcquireLock", mock.Anything, "lock:stock:TEE", mock.Anything, mock.Anything).Return(false, errors.New("redis down")).Times(3)

	_, err := f.uc.AddItem(ctx, f.sess, &model.Cart{}, v, 1)
	require.Error(t, err)
	assert.False(t, apperr.IsValidation(err))
	locker.AssertExpectations(t)
	locker.AssertNotCalled(t, "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
}
