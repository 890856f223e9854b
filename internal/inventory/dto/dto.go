package dto

import "time"

type MovementFilters struct {
	SKU          string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
}
