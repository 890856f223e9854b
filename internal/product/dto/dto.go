package dto

type ProductFilters struct {
	IDs        []string
	CategoryID string
	Published  *bool
	SKUs       []string // Products owning a variation with any of these skus
	SortBy     string   // title, price, created_at
	SortOrder  string   // asc, desc
}

type VariationFilters struct {
	IDs        []string
	ProductID  string
	ProductIDs []string
	SKUs       []string
	SaleID     string
}
