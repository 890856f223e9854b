package dto

import (
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/model"
)

// SaveSaleInput creates a sale when ID is empty.
type SaveSaleInput struct {
	ID          string
	Title       string
	Active      bool
	ProductIDs  []string
	CategoryIDs []string
	Reduction   model.Reduction
	ValidFrom   *time.Time
	ValidTo     *time.Time
}
