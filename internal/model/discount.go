package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Reduction holds the three mutually exclusive ways of reducing a price.
type Reduction struct {
	Deduct  decimal.NullDecimal `db:"discount_deduct"`
	Percent decimal.NullDecimal `db:"discount_percent"`
	Exact   decimal.NullDecimal `db:"discount_exact"`
}

// Discount is the part shared by sales and discount codes.
type Discount struct {
	Title       string         `db:"title"`
	Active      bool           `db:"active"`
	ProductIDs  pq.StringArray `db:"product_ids"`
	CategoryIDs pq.StringArray `db:"category_ids"`
	Reduction
	ValidFrom *time.Time `db:"valid_from"`
	ValidTo   *time.Time `db:"valid_to"`
}

// Restricted reports whether the discount only covers some products.
func (d *Discount) Restricted() bool {
	return len(d.ProductIDs) > 0 || len(d.CategoryIDs) > 0
}

type Sale struct {
	BaseModel
	Discount
}

type DiscountCode struct {
	BaseModel
	Discount
	Code          string              `db:"code"`
	MinPurchase   decimal.NullDecimal `db:"min_purchase"`
	FreeShipping  bool                `db:"free_shipping"`
	UsesRemaining *int                `db:"uses_remaining"` // nil means unlimited
}
