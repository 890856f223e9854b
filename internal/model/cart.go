package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelectedProduct is a frozen copy of a variation at the time it was chosen.
type SelectedProduct struct {
	SKU         string          `db:"sku" json:"sku"`
	Description string          `db:"description" json:"description"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"total_price"`
}

// Recalculate must run before every save.
func (s *SelectedProduct) Recalculate() {
	s.TotalPrice = s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

type CartItem struct {
	ID     string `db:"id" json:"id"`
	CartID string `db:"cart_id" json:"cart_id"`
	SelectedProduct
	URL       string    `db:"url" json:"url"`
	Image     *string   `db:"image" json:"image"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Cart is either empty (never persisted, no ID) or a stored cart with items.
type Cart struct {
	ID          string     `db:"id"`
	LastUpdated time.Time  `db:"last_updated"`
	Items       []CartItem `db:"-"`
}

func (c *Cart) IsPersisted() bool {
	return c != nil && c.ID != ""
}

func (c *Cart) HasItems() bool {
	return c != nil && len(c.Items) > 0
}

func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// SKUs lists the sku of every line, in line order. A variation bought at two
// price points appears twice.
func (c *Cart) SKUs() []string {
	if c == nil {
		return nil
	}
	skus := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		skus = append(skus, item.SKU)
	}
	return skus
}
