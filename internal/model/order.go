package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	OrderStatusUnprocessed OrderStatus = 1
	OrderStatusProcessed   OrderStatus = 2
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusUnprocessed:
		return "Unprocessed"
	case OrderStatusProcessed:
		return "Processed"
	}
	return "Unknown"
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
}

func (a Address) Name() string {
	return a.FirstName + " " + a.LastName
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(src any) error {
	return scanJSON(src, a)
}

type Order struct {
	BaseModel
	Billing                Address             `db:"billing_detail"`
	Shipping               Address             `db:"shipping_detail"`
	AdditionalInstructions string              `db:"additional_instructions"`
	Time                   time.Time           `db:"time"`
	Key                    string              `db:"key"` // session key of the shopper
	UserID                 *string             `db:"user_id"`
	ShippingType           string              `db:"shipping_type"`
	ShippingTotal          decimal.NullDecimal `db:"shipping_total"`
	TaxType                string              `db:"tax_type"`
	TaxTotal               decimal.NullDecimal `db:"tax_total"`
	ItemTotal              decimal.Decimal     `db:"item_total"`
	DiscountCode           string              `db:"discount_code"`
	DiscountTotal          decimal.NullDecimal `db:"discount_total"`
	Total                  decimal.Decimal     `db:"total"`
	TransactionID          *string             `db:"transaction_id"`
	Status                 OrderStatus         `db:"status"`
	Items                  []OrderItem         `db:"-"`
}

type OrderItem struct {
	ID      string `db:"id"`
	OrderID string `db:"order_id"`
	SelectedProduct
}
