package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/cart"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/inventory"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/pricing"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	"github.com/fekuna/omnipos-cartridge/internal/product/dto"
	"github.com/fekuna/omnipos-cartridge/internal/session"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locker serialises stock checks per sku. *cache.RedisClient satisfies it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type Config struct {
	Expiry    time.Duration
	UseUpsell bool
	// Locker, when set, makes the stock check and the cart write of an add
	// atomic with respect to other adds of the same sku.
	Locker Locker
}

type cartUseCase struct {
	repo     cart.Repository
	products product.UseCase
	stock    inventory.UseCase
	cfg      Config
	clock    clock.Clock
	logger   logger.ZapLogger
}

func NewCartUseCase(repo cart.Repository, products product.UseCase, stock inventory.UseCase, cfg Config, clk clock.Clock, log logger.ZapLogger) cart.UseCase {
	return &cartUseCase{
		repo:     repo,
		products: products,
		stock:    stock,
		cfg:      cfg,
		clock:    clk,
		logger:   log,
	}
}

var errCartExpired = &apperr.ValidationError{Field: "cart", Message: "your cart has expired"}

func (uc *cartUseCase) cutoff() time.Time {
	return uc.clock.Now().Add(-uc.cfg.Expiry)
}

func (uc *cartUseCase) FromSession(ctx context.Context, sess session.Store) (*model.Cart, error) {
	id, ok, err := sess.Get(ctx, session.KeyCart)
	if err != nil {
		return nil, fmt.Errorf("failed to read session cart: %w", err)
	}
	if !ok || id == "" {
		return &model.Cart{}, nil
	}

	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.LastUpdated.Before(uc.cutoff()) {
		return &model.Cart{}, nil
	}

	now := uc.clock.Now()
	if err := uc.repo.Touch(ctx, c.ID, now); err != nil {
		return nil, err
	}
	c.LastUpdated = now
	return c, nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, sess session.Store, c *model.Cart, v *model.Variation, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity", "must be at least 1")
	}
	now := uc.clock.Now()
	if !pricing.HasPrice(v.Priced, now) {
		return nil, apperr.Validation("variation", "this product is not available for purchase")
	}
	p, err := uc.products.GetProduct(ctx, v.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	if c.IsPersisted() {
		if err := uc.ensureLive(ctx, c); err != nil {
			return nil, err
		}
	}

	release, err := uc.lock(ctx, v.SKU)
	if err != nil {
		return nil, err
	}
	defer release()

	ok, err := uc.stock.HasStock(ctx, v, quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validation("quantity", "the selected options are currently not in stock")
	}

	if !c.IsPersisted() {
		if c, err = uc.create(ctx, sess); err != nil {
			return nil, err
		}
	}

	unitPrice := pricing.Price(v.Priced, now)
	item, err := uc.repo.FindItem(ctx, c.ID, v.SKU, unitPrice)
	if err != nil {
		return nil, err
	}

	if item == nil {
		types, err := uc.products.OptionTypes(ctx)
		if err != nil {
			return nil, err
		}
		item = &model.CartItem{
			ID:     uuid.New().String(),
			CartID: c.ID,
			SelectedProduct: model.SelectedProduct{
				SKU:         v.SKU,
				Description: v.Describe(p.Title, types),
				Quantity:    quantity,
				UnitPrice:   unitPrice,
			},
			URL:       p.URL(),
			Image:     v.Image,
			CreatedAt: now,
		}
		if item.Image == nil {
			item.Image = p.Image
		}
		item.Recalculate()
		if err := uc.repo.CreateItem(ctx, item); err != nil {
			return nil, err
		}
		if err := uc.products.AddedToCart(ctx, p.ID); err != nil {
			uc.logger.Error("failed to record cart action", zap.String("product_id", p.ID), zap.Error(err))
		}
	} else {
		item.Quantity += quantity
		item.Recalculate()
		if err := uc.repo.UpdateItem(ctx, item); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Touch(ctx, c.ID, now); err != nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, c.ID)
}

func (uc *cartUseCase) UpdateQuantity(ctx context.Context, c *model.Cart, itemID string, quantity int) (*model.Cart, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity", "must not be negative")
	}
	if err := uc.ensureLive(ctx, c); err != nil {
		return nil, err
	}
	item, err := uc.repo.FindItemByID(ctx, c.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrNotFound
	}

	if quantity == 0 {
		return uc.RemoveItem(ctx, c, itemID)
	}

	if quantity > item.Quantity {
		v, err := uc.products.FindVariationBySKU(ctx, item.SKU)
		if err != nil {
			return nil, err
		}
		if v != nil {
			release, err := uc.lock(ctx, v.SKU)
			if err != nil {
				return nil, err
			}
			defer release()

			ok, err := uc.stock.HasStock(ctx, v, quantity-item.Quantity)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperr.Validation("quantity", "not enough of %s in stock", item.Description)
			}
		}
	}

	item.Quantity = quantity
	item.Recalculate()
	if err := uc.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	if err := uc.repo.Touch(ctx, c.ID, uc.clock.Now()); err != nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, c.ID)
}

// RemoveItem leaves the cart row in place even when it becomes empty; only
// expiry deletes carts.
func (uc *cartUseCase) RemoveItem(ctx context.Context, c *model.Cart, itemID string) (*model.Cart, error) {
	if err := uc.ensureLive(ctx, c); err != nil {
		return nil, err
	}
	if err := uc.repo.DeleteItem(ctx, c.ID, itemID); err != nil {
		return nil, err
	}
	if err := uc.repo.Touch(ctx, c.ID, uc.clock.Now()); err != nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, c.ID)
}

// UpsellProducts lists the published upsell targets of the cart's products,
// leaving out products already in the cart.
func (uc *cartUseCase) UpsellProducts(ctx context.Context, c *model.Cart) ([]model.Product, error) {
	if !uc.cfg.UseUpsell || !c.HasItems() {
		return nil, nil
	}
	inCart, err := uc.products.ListProducts(ctx, &dto.ProductFilters{SKUs: c.SKUs()})
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]bool, len(inCart))
	for _, p := range inCart {
		exclude[p.ID] = true
	}
	var targets []string
	seen := make(map[string]bool)
	for _, p := range inCart {
		for _, id := range p.UpsellIDs {
			if !exclude[id] && !seen[id] {
				seen[id] = true
				targets = append(targets, id)
			}
		}
	}
	if len(targets) == 0 {
		return nil, nil
	}

	published := true
	return uc.products.ListProducts(ctx, &dto.ProductFilters{IDs: targets, Published: &published})
}

func (uc *cartUseCase) Delete(ctx context.Context, sess session.Store, c *model.Cart) error {
	if c.IsPersisted() {
		if err := uc.repo.Delete(ctx, c.ID); err != nil {
			return err
		}
	}
	return sess.Delete(ctx, session.KeyCart)
}

func (uc *cartUseCase) ExpireStale(ctx context.Context) (int64, error) {
	n, err := uc.repo.DeleteExpired(ctx, uc.cutoff())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.logger.Info("expired carts removed", zap.Int64("count", n))
	}
	return n, nil
}

func (uc *cartUseCase) create(ctx context.Context, sess session.Store) (*model.Cart, error) {
	if _, err := uc.ExpireStale(ctx); err != nil {
		return nil, err
	}
	c := &model.Cart{ID: uuid.New().String(), LastUpdated: uc.clock.Now()}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := sess.Set(ctx, session.KeyCart, c.ID); err != nil {
		return nil, fmt.Errorf("failed to store cart in session: %w", err)
	}
	return c, nil
}

func (uc *cartUseCase) ensureLive(ctx context.Context, c *model.Cart) error {
	if !c.IsPersisted() {
		return errCartExpired
	}
	stored, err := uc.repo.FindByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if stored == nil || stored.LastUpdated.Before(uc.cutoff()) {
		return errCartExpired
	}
	return nil
}

func (uc *cartUseCase) lock(ctx context.Context, sku string) (func(), error) {
	if uc.cfg.Locker == nil {
		return func() {}, nil
	}
	key := "lock:stock:" + sku
	value := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cfg.Locker.AcquireLock(ctx, key, value, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire stock lock", zap.String("sku", sku), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, errors.New("system busy, please try again later (lock)")
	}

	return func() {
		if err := uc.cfg.Locker.ReleaseLock(context.Background(), key, value); err != nil {
			uc.logger.Error("failed to release stock lock", zap.String("sku", sku), zap.Error(err))
		}
	}, nil
}
