package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/inventory/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) HeldQuantity(ctx context.Context, sku string, since time.Time) (int, error) {
	var held int
	query := `
        SELECT COALESCE(SUM(ci.quantity), 0)
        FROM cart_items ci
        JOIN carts c ON c.id = ci.cart_id
        WHERE ci.sku = $1 AND c.last_updated >= $2
    `
	err := r.DB.GetContext(ctx, &held, query, sku, since)
	return held, err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, error) {
	var items []model.StockMovement

	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil {
		if f.SKU != "" {
			conditions = append(conditions, "sku = :sku")
			args["sku"] = f.SKU
		}
		if f.MovementType != "" {
			conditions = append(conditions, "movement_type = :movement_type")
			args["movement_type"] = f.MovementType
		}
		if f.StartDate != nil {
			conditions = append(conditions, "created_at >= :start_date")
			args["start_date"] = *f.StartDate
		}
		if f.EndDate != nil {
			conditions = append(conditions, "created_at <= :end_date")
			args["end_date"] = *f.EndDate
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, err
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, variationID string, movement *model.StockMovement) (bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// 1. Lock the variation row and read the current count
	var current struct {
		ProductID  string `db:"product_id"`
		StockCount *int   `db:"stock_count"`
		IsDefault  bool   `db:"is_default"`
	}
	err = tx.GetContext(ctx, &current,
		`SELECT product_id, stock_count, is_default FROM product_variations WHERE id = $1 FOR UPDATE`, variationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("variation %s not found", variationID)
		}
		return false, err
	}
	if current.StockCount == nil {
		return false, nil
	}
	movement.QuantityBefore = *current.StockCount
	movement.QuantityAfter = *current.StockCount + movement.QuantityChange

	// 2. Update the variation and the product mirror
	_, err = tx.ExecContext(ctx,
		`UPDATE product_variations SET stock_count = $1 WHERE id = $2`, movement.QuantityAfter, variationID)
	if err != nil {
		return false, fmt.Errorf("failed to update stock: %w", err)
	}
	if current.IsDefault {
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET stock_count = $1 WHERE id = $2`, movement.QuantityAfter, current.ProductID)
		if err != nil {
			return false, fmt.Errorf("failed to update product stock: %w", err)
		}
	}

	// 3. Log Movement
	insertLogQuery := `
        INSERT INTO stock_movements (
            id, variation_id, sku, movement_type, quantity_change, quantity_before,
            quantity_after, reference_type, reference_id, created_at
        )
        VALUES (
            :id, :variation_id, :sku, :movement_type, :quantity_change, :quantity_before,
            :quantity_after, :reference_type, :reference_id, :created_at
        )
    `
	_, err = tx.NamedExecContext(ctx, insertLogQuery, movement)
	if err != nil {
		return false, fmt.Errorf("failed to log movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
