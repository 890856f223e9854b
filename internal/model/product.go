package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Priced
	Title       string         `db:"title" json:"title"`
	Slug        string         `db:"slug" json:"slug"`
	SKU         *string        `db:"sku" json:"sku"`
	StockCount  *int           `db:"stock_count" json:"stock_count"`
	Image       *string        `db:"image" json:"image"`
	Published   bool           `db:"published" json:"published"`
	Available   bool           `db:"available" json:"available"`
	CategoryIDs pq.StringArray `db:"category_ids" json:"category_ids"`
	UpsellIDs   pq.StringArray `db:"upsell_ids" json:"upsell_ids"`
	Variations  []Variation    `db:"-" json:"variations"`
}

func (p *Product) URL() string {
	return "/shop/product/" + p.Slug + "/"
}

func (p *Product) InCategory(categoryID string) bool {
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

type Variation struct {
	BaseModel
	Priced
	ProductID  string       `db:"product_id" json:"product_id"`
	SKU        string       `db:"sku" json:"sku"`
	Options    OptionValues `db:"options" json:"options"`
	StockCount *int         `db:"stock_count" json:"stock_count"`
	IsDefault  bool         `db:"is_default" json:"is_default"`
	Image      *string      `db:"image" json:"image"`
}

// Describe renders the product title followed by the chosen option values in
// option type order.
func (v *Variation) Describe(productTitle string, types []OptionType) string {
	var parts []string
	seen := map[int]bool{}
	for _, t := range types {
		if val, ok := v.Options[t.ID]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", t.Name, val))
			seen[t.ID] = true
		}
	}
	// Values for types no longer configured still show up, sorted by id.
	var rest []int
	for id := range v.Options {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Ints(rest)
	for _, id := range rest {
		parts = append(parts, fmt.Sprintf("option%d: %s", id, v.Options[id]))
	}
	return strings.TrimSpace(productTitle + " " + strings.Join(parts, ", "))
}

// ProductAction counts cart adds and purchases of a product per day.
type ProductAction struct {
	ProductID     string `db:"product_id"`
	Day           int    `db:"day"`
	TotalCart     int    `db:"total_cart"`
	TotalPurchase int    `db:"total_purchase"`
}

type ActionKind string

const (
	ActionAddedToCart ActionKind = "total_cart"
	ActionPurchased   ActionKind = "total_purchase"
)
