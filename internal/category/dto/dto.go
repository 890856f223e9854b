package dto

type CategoryFilters struct {
	IDs      []string
	ParentID *string // Nil means ignore, Empty string means root categories
}
