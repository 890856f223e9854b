package model

import "time"

type StockMovement struct {
	ID             string    `db:"id"`
	VariationID    string    `db:"variation_id"`
	SKU            string    `db:"sku"`
	MovementType   string    `db:"movement_type"`
	QuantityChange int       `db:"quantity_change"`
	QuantityBefore int       `db:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after"`
	ReferenceType  *string   `db:"reference_type"`
	ReferenceID    *string   `db:"reference_id"`
	CreatedAt      time.Time `db:"created_at"`
}

const MovementTypeSale = "sale"
