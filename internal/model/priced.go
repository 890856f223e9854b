package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Priced holds the price fields shared by products and variations. The sale
// fields are written only by sale application and are set or cleared together.
type Priced struct {
	UnitPrice decimal.NullDecimal `db:"unit_price" json:"unit_price"`
	SalePrice decimal.NullDecimal `db:"sale_price" json:"sale_price"`
	SaleFrom  *time.Time          `db:"sale_from" json:"sale_from"`
	SaleTo    *time.Time          `db:"sale_to" json:"sale_to"`
	SaleID    *string             `db:"sale_id" json:"sale_id"`
}

// ClearSale drops any cached sale.
func (p *Priced) ClearSale() {
	p.SalePrice = decimal.NullDecimal{}
	p.SaleFrom = nil
	p.SaleTo = nil
	p.SaleID = nil
}

// SetSale caches a sale price and its window.
func (p *Priced) SetSale(saleID string, price decimal.Decimal, from, to *time.Time) {
	id := saleID
	p.SalePrice = decimal.NewNullDecimal(price)
	p.SaleFrom = from
	p.SaleTo = to
	p.SaleID = &id
}
