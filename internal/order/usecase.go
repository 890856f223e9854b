package order

import (
	"context"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order/dto"
	"github.com/fekuna/omnipos-cartridge/internal/session"
)

// FreeShippingType is shown as the shipping type of orders whose discount
// code waived shipping.
const FreeShippingType = "Free shipping"

type UseCase interface {
	// Setup freezes the cart and the session's checkout fields into an
	// unpaid order. The cart is left alone so a failed payment can be
	// abandoned.
	Setup(ctx context.Context, sess session.Store, cart *model.Cart, input *dto.SetupInput) (*model.Order, error)
	// Abandon deletes a setup order after a failed payment.
	Abandon(ctx context.Context, sess session.Store, orderID string) error
	// Complete records a paid order: stock is decremented, the discount code
	// redeemed, and the cart and checkout session state discarded.
	Complete(ctx context.Context, sess session.Store, cart *model.Cart, order *model.Order, transactionID string) error

	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
}
