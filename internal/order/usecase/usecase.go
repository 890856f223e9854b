package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/cart"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/discount"
	"github.com/fekuna/omnipos-cartridge/internal/inventory"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order"
	"github.com/fekuna/omnipos-cartridge/internal/order/dto"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	"github.com/fekuna/omnipos-cartridge/internal/session"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo      order.Repository
	carts     cart.UseCase
	stock     inventory.UseCase
	products  product.UseCase
	discounts discount.UseCase
	publisher order.Publisher
	clock     clock.Clock
	logger    logger.ZapLogger
}

// NewOrderUseCase accepts a nil publisher, in which case no events are sent.
func NewOrderUseCase(repo order.Repository, carts cart.UseCase, stock inventory.UseCase, products product.UseCase, discounts discount.UseCase, publisher order.Publisher, clk clock.Clock, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		carts:     carts,
		stock:     stock,
		products:  products,
		discounts: discounts,
		publisher: publisher,
		clock:     clk,
		logger:    log,
	}
}

func (uc *orderUseCase) Setup(ctx context.Context, sess session.Store, c *model.Cart, input *dto.SetupInput) (*model.Order, error) {
	if !c.HasItems() {
		return nil, apperr.Validation("cart", "your cart is empty")
	}

	now := uc.clock.Now()
	o := &model.Order{
		BaseModel:              model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Billing:                input.Billing,
		Shipping:               input.Shipping,
		AdditionalInstructions: input.AdditionalInstructions,
		Time:                   now,
		Key:                    sess.Key(),
		UserID:                 input.UserID,
		Status:                 model.OrderStatusUnprocessed,
	}
	if err := uc.copySessionFields(ctx, sess, o); err != nil {
		return nil, err
	}

	o.ItemTotal = c.TotalPrice()
	o.Total = o.ItemTotal
	if o.ShippingTotal.Valid {
		o.Total = o.Total.Add(o.ShippingTotal.Decimal)
	}
	if o.DiscountTotal.Valid {
		o.Total = o.Total.Sub(o.DiscountTotal.Decimal)
	}
	if o.TaxTotal.Valid {
		o.Total = o.Total.Add(o.TaxTotal.Decimal)
	}

	for _, item := range c.Items {
		line := model.OrderItem{
			ID:              uuid.New().String(),
			OrderID:         o.ID,
			SelectedProduct: item.SelectedProduct,
		}
		line.Recalculate()
		o.Items = append(o.Items, line)
	}

	if err := uc.repo.CreateWithItems(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err := sess.Set(ctx, session.KeyOrder, o.ID); err != nil {
		return nil, fmt.Errorf("failed to store order in session: %w", err)
	}
	return o, nil
}

func (uc *orderUseCase) copySessionFields(ctx context.Context, sess session.Store, o *model.Order) error {
	var err error
	if o.ShippingType, _, err = sess.Get(ctx, session.KeyShippingType); err != nil {
		return err
	}
	if o.TaxType, _, err = sess.Get(ctx, session.KeyTaxType); err != nil {
		return err
	}
	if o.DiscountCode, _, err = sess.Get(ctx, session.KeyDiscountCode); err != nil {
		return err
	}
	if o.ShippingTotal, err = sessionDecimal(ctx, sess, session.KeyShippingTotal); err != nil {
		return err
	}
	if o.TaxTotal, err = sessionDecimal(ctx, sess, session.KeyTaxTotal); err != nil {
		return err
	}
	if o.DiscountTotal, err = sessionDecimal(ctx, sess, session.KeyDiscountTotal); err != nil {
		return err
	}

	free, _, err := sess.Get(ctx, session.KeyFreeShipping)
	if err != nil {
		return err
	}
	if free == "true" {
		o.ShippingType = order.FreeShippingType
		o.ShippingTotal = decimal.NewNullDecimal(decimal.Zero)
	}
	return nil
}

func sessionDecimal(ctx context.Context, sess session.Store, key string) (decimal.NullDecimal, error) {
	raw, ok, err := sess.Get(ctx, key)
	if err != nil || !ok || raw == "" {
		return decimal.NullDecimal{}, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid %s in session: %w", key, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func (uc *orderUseCase) Abandon(ctx context.Context, sess session.Store, orderID string) error {
	if err := uc.repo.Delete(ctx, orderID); err != nil {
		return err
	}
	uc.logger.Info("order abandoned", zap.String("order_id", orderID))
	return sess.Delete(ctx, session.KeyOrder)
}

func (uc *orderUseCase) Complete(ctx context.Context, sess session.Store, c *model.Cart, o *model.Order, transactionID string) error {
	if transactionID != "" {
		if err := uc.repo.UpdateTransaction(ctx, o.ID, transactionID); err != nil {
			return err
		}
		o.TransactionID = &transactionID
	}

	for _, item := range c.Items {
		v, err := uc.stock.Decrement(ctx, item.SKU, item.Quantity, o.ID)
		if errors.Is(err, apperr.ErrNotFound) {
			// Variation deleted after it was added to the cart.
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to decrement stock for %s: %w", item.SKU, err)
		}
		if err := uc.products.Purchased(ctx, v.ProductID); err != nil {
			uc.logger.Error("failed to record purchase action", zap.String("product_id", v.ProductID), zap.Error(err))
		}
	}

	if err := uc.discounts.Redeem(ctx, o.DiscountCode); err != nil {
		return err
	}
	if err := uc.carts.Delete(ctx, sess, c); err != nil {
		return err
	}

	keys := append([]string{session.KeyOrder, session.KeyFreeShipping}, session.OrderFields...)
	if err := sess.Delete(ctx, keys...); err != nil {
		return err
	}

	uc.logger.Info("order completed",
		zap.String("order_id", o.ID),
		zap.String("total", o.Total.StringFixed(2)),
		zap.Int("items", len(o.Items)),
	)
	uc.publishCompleted(ctx, o)
	return nil
}

func (uc *orderUseCase) publishCompleted(ctx context.Context, o *model.Order) {
	if uc.publisher == nil {
		return
	}
	event := order.OrderCompletedEvent{
		EventID:   uuid.New().String(),
		EventType: order.EventOrderCompleted,
		Payload: order.OrderPayload{
			ID:           o.ID,
			Total:        o.Total,
			DiscountCode: o.DiscountCode,
		},
		Timestamp: uc.clock.Now(),
	}
	if o.TransactionID != nil {
		event.Payload.TransactionID = *o.TransactionID
	}
	for _, item := range o.Items {
		event.Payload.Items = append(event.Payload.Items, order.OrderItemPayload{
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	if err := uc.publisher.Publish(ctx, o.ID, event); err != nil {
		uc.logger.Error("failed to publish order completed event", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if status != model.OrderStatusUnprocessed && status != model.OrderStatusProcessed {
		return nil, apperr.Validation("status", "unknown order status %d", status)
	}
	o, err := uc.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}
