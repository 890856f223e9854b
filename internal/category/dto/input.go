package dto

import (
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/shopspring/decimal"
)

type CreateCategoryInput struct {
	ParentID  *string
	Title     string
	SortOrder int
	Options   model.OptionFilter
	SaleID    *string
	PriceMin  decimal.NullDecimal
	PriceMax  decimal.NullDecimal
	Combined  bool
}

type UpdateCategoryInput struct {
	ID        string
	ParentID  *string
	Title     string
	SortOrder int
	Options   model.OptionFilter
	SaleID    *string
	PriceMin  decimal.NullDecimal
	PriceMax  decimal.NullDecimal
	Combined  bool
}
