package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Title       string
	Slug        string
	UnitPrice   decimal.NullDecimal
	Image       string
	Published   bool
	Available   bool
	CategoryIDs []string
	UpsellIDs   []string
}

type UpdateVariationInput struct {
	ID         string
	SKU        string
	UnitPrice  decimal.NullDecimal
	StockCount *int
	IsDefault  bool
	Image      *string
}
