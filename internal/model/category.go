package model

import "github.com/shopspring/decimal"

type Category struct {
	BaseModel
	ParentID  *string             `db:"parent_id"` // Nullable
	Title     string              `db:"title"`
	SortOrder int                 `db:"sort_order"`
	Options   OptionFilter        `db:"options"`
	SaleID    *string             `db:"sale_id"`
	PriceMin  decimal.NullDecimal `db:"price_min"`
	PriceMax  decimal.NullDecimal `db:"price_max"`
	Combined  bool                `db:"combined"` // AND filters together rather than OR
}

// HasFilters reports whether membership depends on more than the explicit
// product assignment.
func (c *Category) HasFilters() bool {
	return len(c.Options) > 0 || c.SaleID != nil || c.PriceMin.Valid || c.PriceMax.Valid
}
