package dto

import (
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/model"
)

type OrderFilters struct {
	Key       string // Session key of the shopper
	UserID    string
	Status    model.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
}
