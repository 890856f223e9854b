// Package pricing decides which price applies to a priced row and performs
// the reduction arithmetic shared by sales and discount codes.
package pricing

import (
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// OnSale is true when a sale price is cached and now lies strictly inside
// the sale window. An unset bound is open.
func OnSale(p model.Priced, now time.Time) bool {
	if !p.SalePrice.Valid {
		return false
	}
	validFrom := p.SaleFrom == nil || p.SaleFrom.Before(now)
	validTo := p.SaleTo == nil || p.SaleTo.After(now)
	return validFrom && validTo
}

func HasPrice(p model.Priced, now time.Time) bool {
	return OnSale(p, now) || p.UnitPrice.Valid
}

// Price returns the sale price when on sale, else the unit price. Zero is
// returned when no price is set; use HasPrice to tell it from a free item.
func Price(p model.Priced, now time.Time) decimal.Decimal {
	if OnSale(p, now) {
		return p.SalePrice.Decimal
	}
	if p.UnitPrice.Valid {
		return p.UnitPrice.Decimal
	}
	return decimal.Zero
}

// WithinValidity applies the inclusive window used for discount codes and
// category sale filters.
func WithinValidity(from, to *time.Time, now time.Time) bool {
	validFrom := from == nil || !from.After(now)
	validTo := to == nil || !to.Before(now)
	return validFrom && validTo
}

// ValidateReduction rejects a reduction with more than one kind set, or with
// out of range values. Exact reductions are only allowed for sales.
func ValidateReduction(r model.Reduction, allowExact bool) error {
	set := 0
	for _, v := range []decimal.NullDecimal{r.Deduct, r.Percent, r.Exact} {
		if v.Valid {
			set++
		}
	}
	if set > 1 {
		return apperr.Configuration("only one type of reduction may be set")
	}
	if r.Exact.Valid && !allowExact {
		return apperr.Configuration("discount codes cannot reduce to an exact amount")
	}
	if r.Deduct.Valid && r.Deduct.Decimal.IsNegative() {
		return apperr.Configuration("deduct amount must not be negative")
	}
	if r.Exact.Valid && r.Exact.Decimal.IsNegative() {
		return apperr.Configuration("exact amount must not be negative")
	}
	if r.Percent.Valid && (r.Percent.Decimal.IsNegative() || r.Percent.Decimal.GreaterThan(hundred)) {
		return apperr.Configuration("percent must be between 0 and 100")
	}
	return nil
}

// SalePrice computes the price a sale would cache on a row with the given
// unit price. ok is false when the sale must not touch the row: no unit
// price, a deduction that is not smaller than the price, or an exact price
// that is not cheaper.
func SalePrice(r model.Reduction, unitPrice decimal.NullDecimal) (price decimal.Decimal, ok bool) {
	if !unitPrice.Valid {
		return decimal.Zero, false
	}
	unit := unitPrice.Decimal
	switch {
	case r.Deduct.Valid:
		if !unit.GreaterThan(r.Deduct.Decimal) {
			return decimal.Zero, false
		}
		return unit.Sub(r.Deduct.Decimal), true
	case r.Percent.Valid:
		return unit.Sub(unit.Div(hundred).Mul(r.Percent.Decimal)), true
	case r.Exact.Valid:
		if !unit.GreaterThan(r.Exact.Decimal) {
			return decimal.Zero, false
		}
		return r.Exact.Decimal, true
	}
	return decimal.Zero, false
}

// DiscountAmount is how much a discount code takes off amount. A deduction
// larger than the amount yields zero.
func DiscountAmount(r model.Reduction, amount decimal.Decimal) decimal.Decimal {
	switch {
	case r.Deduct.Valid:
		if r.Deduct.Decimal.LessThanOrEqual(amount) {
			return r.Deduct.Decimal
		}
	case r.Percent.Valid:
		return amount.Div(hundred).Mul(r.Percent.Decimal)
	}
	return decimal.Zero
}
