package checkout

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/checkout/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/session"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	SetShipping(ctx context.Context, sess session.Store, shippingType string, total decimal.Decimal) error
	SetTax(ctx context.Context, sess session.Store, taxType string, total decimal.Decimal) error
	SetDiscount(ctx context.Context, sess session.Store, code string, total decimal.Decimal, freeShipping bool) error

	// ApplyDiscountCode validates code against the cart and stores the
	// resulting discount in the session.
	ApplyDiscountCode(ctx context.Context, sess session.Store, cart *model.Cart, code string) (decimal.Decimal, error)
	// RecalculateDiscount re-validates the session's code after the cart
	// changed, dropping it when it no longer applies.
	RecalculateDiscount(ctx context.Context, sess session.Store, cart *model.Cart) error

	// Process sets up the order, authorizes payment and completes it. A
	// failed payment abandons the order and leaves the cart intact.
	Process(ctx context.Context, sess session.Store, cart *model.Cart, input *dto.ProcessInput) (*model.Order, error)
}
