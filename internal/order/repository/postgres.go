package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/order/dto"
	"github.com/fekuna/omnipos-cartridge/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateWithItems(ctx context.Context, o *model.Order) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO orders (
                id, billing_detail, shipping_detail, additional_instructions, time, key,
                user_id, shipping_type, shipping_total, tax_type, tax_total, item_total,
                discount_code, discount_total, total, transaction_id, status, created_at, updated_at
            )
            VALUES (
                :id, :billing_detail, :shipping_detail, :additional_instructions, :time, :key,
                :user_id, :shipping_type, :shipping_total, :tax_type, :tax_total, :item_total,
                :discount_code, :discount_total, :total, :transaction_id, :status, :created_at, :updated_at
            )
        `
		if _, err := tx.NamedExecContext(ctx, query, o); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		itemQuery := `
            INSERT INTO order_items (id, order_id, sku, description, quantity, unit_price, total_price)
            VALUES (:id, :order_id, :sku, :description, :quantity, :unit_price, :total_price)
        `
		for i := range o.Items {
			if _, err := tx.NamedExecContext(ctx, itemQuery, &o.Items[i]); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
		return nil
	})
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	err = r.DB.SelectContext(ctx, &o.Items, `SELECT * FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, error) {
	var orders []model.Order

	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil {
		if f.Key != "" {
			conditions = append(conditions, "key = :key")
			args["key"] = f.Key
		}
		if f.UserID != "" {
			conditions = append(conditions, "user_id = :user_id")
			args["user_id"] = f.UserID
		}
		if f.Status != 0 {
			conditions = append(conditions, "status = :status")
			args["status"] = f.Status
		}
		if f.StartDate != nil {
			conditions = append(conditions, "time >= :start_date")
			args["start_date"] = *f.StartDate
		}
		if f.EndDate != nil {
			conditions = append(conditions, "time <= :end_date")
			args["end_date"] = *f.EndDate
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT * FROM orders" + whereClause + " ORDER BY time DESC"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &orders, args)
	return orders, err
}

func (r *PGRepository) UpdateTransaction(ctx context.Context, id, transactionID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET transaction_id = $1, updated_at = NOW() WHERE id = $2`, transactionID, id)
	return err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, int(status), id)
	return err
}

// Delete removes the order; items go through ON DELETE CASCADE.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	return err
}
