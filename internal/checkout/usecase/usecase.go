package usecase

import (
	"context"
	"strconv"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/checkout"
	"github.com/fekuna/omnipos-cartridge/internal/checkout/dto"
	"github.com/fekuna/omnipos-cartridge/internal/discount"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order"
	"github.com/fekuna/omnipos-cartridge/internal/payment"
	"github.com/fekuna/omnipos-cartridge/internal/session"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type checkoutUseCase struct {
	orders    order.UseCase
	discounts discount.UseCase
	payments  payment.Authorizer
	logger    logger.ZapLogger
}

func NewCheckoutUseCase(orders order.UseCase, discounts discount.UseCase, payments payment.Authorizer, log logger.ZapLogger) checkout.UseCase {
	return &checkoutUseCase{
		orders:    orders,
		discounts: discounts,
		payments:  payments,
		logger:    log,
	}
}

func (uc *checkoutUseCase) SetShipping(ctx context.Context, sess session.Store, shippingType string, total decimal.Decimal) error {
	if err := sess.Set(ctx, session.KeyShippingType, shippingType); err != nil {
		return err
	}
	return sess.Set(ctx, session.KeyShippingTotal, total.String())
}

func (uc *checkoutUseCase) SetTax(ctx context.Context, sess session.Store, taxType string, total decimal.Decimal) error {
	if err := sess.Set(ctx, session.KeyTaxType, taxType); err != nil {
		return err
	}
	return sess.Set(ctx, session.KeyTaxTotal, total.String())
}

// SetDiscount stores a validated discount. A code waiving shipping replaces
// the shipping fields; any other code clears shipping set by an earlier one.
func (uc *checkoutUseCase) SetDiscount(ctx context.Context, sess session.Store, code string, total decimal.Decimal, freeShipping bool) error {
	if freeShipping {
		if err := uc.SetShipping(ctx, sess, order.FreeShippingType, decimal.Zero); err != nil {
			return err
		}
	} else if err := sess.Delete(ctx, session.KeyShippingType, session.KeyShippingTotal); err != nil {
		return err
	}

	if err := sess.Set(ctx, session.KeyFreeShipping, strconv.FormatBool(freeShipping)); err != nil {
		return err
	}
	if err := sess.Set(ctx, session.KeyDiscountCode, code); err != nil {
		return err
	}
	return sess.Set(ctx, session.KeyDiscountTotal, total.String())
}

func (uc *checkoutUseCase) ApplyDiscountCode(ctx context.Context, sess session.Store, c *model.Cart, code string) (decimal.Decimal, error) {
	dc, err := uc.discounts.Validate(ctx, code, c)
	if err != nil {
		return decimal.Zero, err
	}
	total, err := uc.discounts.CalculateDiscount(ctx, dc, c)
	if err != nil {
		return decimal.Zero, err
	}
	if err := uc.SetDiscount(ctx, sess, dc.Code, total, dc.FreeShipping); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (uc *checkoutUseCase) RecalculateDiscount(ctx context.Context, sess session.Store, c *model.Cart) error {
	code, ok, err := sess.Get(ctx, session.KeyDiscountCode)
	if err != nil || !ok || code == "" {
		return err
	}
	keys := []string{session.KeyFreeShipping, session.KeyDiscountCode, session.KeyDiscountTotal}
	// Shipping written by a free-shipping code goes with it; the shopper
	// picks a method again if the code no longer applies.
	free, _, err := sess.Get(ctx, session.KeyFreeShipping)
	if err != nil {
		return err
	}
	if free == "true" {
		keys = append(keys, session.KeyShippingType, session.KeyShippingTotal)
	}
	if err := sess.Delete(ctx, keys...); err != nil {
		return err
	}

	_, err = uc.ApplyDiscountCode(ctx, sess, c, code)
	if apperr.IsValidation(err) {
		uc.logger.Debug("discount code no longer applies", zap.String("code", code))
		return nil
	}
	return err
}

func (uc *checkoutUseCase) Process(ctx context.Context, sess session.Store, c *model.Cart, input *dto.ProcessInput) (*model.Order, error) {
	o, err := uc.orders.Setup(ctx, sess, c, &input.SetupInput)
	if err != nil {
		return nil, err
	}

	transactionID, err := uc.payments.Authorize(ctx, o.Total, input.Card, o.Billing)
	if err != nil {
		if abandonErr := uc.orders.Abandon(ctx, sess, o.ID); abandonErr != nil {
			uc.logger.Error("failed to abandon order", zap.String("order_id", o.ID), zap.Error(abandonErr))
		}
		if !apperr.IsCheckout(err) {
			uc.logger.Error("payment authorization failed", zap.String("order_id", o.ID), zap.Error(err))
		}
		return nil, err
	}

	if err := uc.orders.Complete(ctx, sess, c, o, transactionID); err != nil {
		return nil, err
	}
	return o, nil
}
