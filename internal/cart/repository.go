package cart

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, cart *model.Cart) error
	// FindByID loads the cart with its items in insertion order.
	FindByID(ctx context.Context, id string) (*model.Cart, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)

	// Items. A line is identified by (cart, sku, unit price).
	FindItem(ctx context.Context, cartID, sku string, unitPrice decimal.Decimal) (*model.CartItem, error)
	FindItemByID(ctx context.Context, cartID, itemID string) (*model.CartItem, error)
	CreateItem(ctx context.Context, item *model.CartItem) error
	UpdateItem(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, cartID, itemID string) error
}
