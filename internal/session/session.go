// Package session is the per-shopper key/value store the shop keeps its
// in-progress checkout state in.
package session

import "context"

// Keys written by the shop.
const (
	KeyCart          = "cart"
	KeyOrder         = "order"
	KeyShippingType  = "shipping_type"
	KeyShippingTotal = "shipping_total"
	KeyTaxType       = "tax_type"
	KeyTaxTotal      = "tax_total"
	KeyDiscountCode  = "discount_code"
	KeyDiscountTotal = "discount_total"
	KeyFreeShipping  = "free_shipping"
)

// OrderFields are copied onto an order at setup and cleared at completion.
var OrderFields = []string{
	KeyShippingType,
	KeyShippingTotal,
	KeyDiscountCode,
	KeyDiscountTotal,
	KeyTaxType,
	KeyTaxTotal,
}

type Store interface {
	// Key identifies the session.
	Key() string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
