package dto

import (
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/shopspring/decimal"
)

type SaveCodeInput struct {
	ID            string
	Title         string
	Code          string
	Active        bool
	ProductIDs    []string
	CategoryIDs   []string
	Reduction     model.Reduction
	ValidFrom     *time.Time
	ValidTo       *time.Time
	MinPurchase   decimal.NullDecimal
	FreeShipping  bool
	UsesRemaining *int // Nil means unlimited
}
