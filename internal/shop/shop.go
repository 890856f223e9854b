// Package shop assembles the usecases from a set of repositories.
package shop

import (
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/cart"
	cartRepoPkg "github.com/fekuna/omnipos-cartridge/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-cartridge/internal/cart/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/category"
	catRepoPkg "github.com/fekuna/omnipos-cartridge/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-cartridge/internal/category/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/checkout"
	checkoutUCPkg "github.com/fekuna/omnipos-cartridge/internal/checkout/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/discount"
	discRepoPkg "github.com/fekuna/omnipos-cartridge/internal/discount/repository"
	discUCPkg "github.com/fekuna/omnipos-cartridge/internal/discount/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/inventory"
	invRepoPkg "github.com/fekuna/omnipos-cartridge/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-cartridge/internal/inventory/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order"
	orderRepoPkg "github.com/fekuna/omnipos-cartridge/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-cartridge/internal/order/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/payment"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-cartridge/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-cartridge/internal/product/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/sale"
	saleRepoPkg "github.com/fekuna/omnipos-cartridge/internal/sale/repository"
	saleUCPkg "github.com/fekuna/omnipos-cartridge/internal/sale/usecase"
	"github.com/fekuna/omnipos-cartridge/internal/session"
	"github.com/fekuna/omnipos-cartridge/internal/store/memory"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Products   product.Repository
	Categories category.Repository
	Inventory  inventory.Repository
	Carts      cart.Repository
	Sales      sale.Repository
	Discounts  discount.Repository
	Orders     order.Repository
}

func PostgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Products:   prodRepoPkg.NewPGRepository(db),
		Categories: catRepoPkg.NewPGRepository(db),
		Inventory:  invRepoPkg.NewPGRepository(db),
		Carts:      cartRepoPkg.NewPGRepository(db),
		Sales:      saleRepoPkg.NewPGRepository(db),
		Discounts:  discRepoPkg.NewPGRepository(db),
		Orders:     orderRepoPkg.NewPGRepository(db),
	}
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Products:   store.Products(),
		Categories: store.Categories(),
		Inventory:  store.Inventory(),
		Carts:      store.Carts(),
		Sales:      store.Sales(),
		Discounts:  store.Discounts(),
		Orders:     store.Orders(),
	}
}

// Options carries the optional collaborators. Leave an interface field nil
// (not a typed nil pointer) to switch the feature off.
type Options struct {
	OptionTypes []model.OptionType
	CartExpiry  time.Duration
	UseUpsell   bool
	Locker      cartUCPkg.Locker
	Indexer     prodUCPkg.Indexer
	Publisher   order.Publisher
	Payments    payment.Authorizer
	Clock       clock.Clock
	Sessions    session.Factory
}

type Shop struct {
	Products   product.UseCase
	Categories category.UseCase
	Inventory  inventory.UseCase
	Carts      cart.UseCase
	Sales      sale.UseCase
	Discounts  discount.UseCase
	Orders     order.UseCase
	Checkout   checkout.UseCase
	Sessions   session.Factory
}

func New(repos Repositories, opts Options, log logger.ZapLogger) *Shop {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System()
	}
	payments := opts.Payments
	if payments == nil {
		payments = payment.NewDummyAuthorizer()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.MemoryFactory()
	}

	prodUC := prodUCPkg.NewProductUseCase(repos.Products, opts.OptionTypes, opts.Indexer, clk, log)
	catUC := catUCPkg.NewCategoryUseCase(repos.Categories, repos.Products, clk, log)
	invUC := invUCPkg.NewInventoryUseCase(repos.Inventory, repos.Products, opts.CartExpiry, clk, log)
	cartUC := cartUCPkg.NewCartUseCase(repos.Carts, prodUC, invUC, cartUCPkg.Config{
		Expiry:    opts.CartExpiry,
		UseUpsell: opts.UseUpsell,
		Locker:    opts.Locker,
	}, clk, log)
	saleUC := saleUCPkg.NewSaleUseCase(repos.Sales, repos.Products, prodUC, catUC, clk, log)
	discUC := discUCPkg.NewDiscountUseCase(repos.Discounts, repos.Products, catUC, clk, log)
	orderUC := orderUCPkg.NewOrderUseCase(repos.Orders, cartUC, invUC, prodUC, discUC, opts.Publisher, clk, log)

	return &Shop{
		Products:   prodUC,
		Categories: catUC,
		Inventory:  invUC,
		Carts:      cartUC,
		Sales:      saleUC,
		Discounts:  discUC,
		Orders:     orderUC,
		Checkout:   checkoutUCPkg.NewCheckoutUseCase(orderUC, discUC, payments, log),
		Sessions:   sessions,
	}
}
