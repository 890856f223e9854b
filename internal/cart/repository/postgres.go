package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Cart) error {
	_, err := r.DB.NamedExecContext(ctx, `INSERT INTO carts (id, last_updated) VALUES (:id, :last_updated)`, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	var c model.Cart
	err := r.DB.GetContext(ctx, &c, `SELECT * FROM carts WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	err = r.DB.SelectContext(ctx, &c.Items,
		`SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE carts SET last_updated = $1 WHERE id = $2`, at, id)
	return err
}

// Delete removes the cart; its items go with it through ON DELETE CASCADE.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	return err
}

func (r *PGRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM carts WHERE last_updated < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepository) FindItem(ctx context.Context, cartID, sku string, unitPrice decimal.Decimal) (*model.CartItem, error) {
	var item model.CartItem
	query := `SELECT * FROM cart_items WHERE cart_id = $1 AND sku = $2 AND unit_price = $3 LIMIT 1`
	err := r.DB.GetContext(ctx, &item, query, cartID, sku, unitPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindItemByID(ctx context.Context, cartID, itemID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.DB.GetContext(ctx, &item, `SELECT * FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) CreateItem(ctx context.Context, item *model.CartItem) error {
	query := `
        INSERT INTO cart_items (
            id, cart_id, sku, description, quantity, unit_price, total_price,
            url, image, created_at
        )
        VALUES (
            :id, :cart_id, :sku, :description, :quantity, :unit_price, :total_price,
            :url, :image, :created_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) UpdateItem(ctx context.Context, item *model.CartItem) error {
	query := `
        UPDATE cart_items
        SET quantity = :quantity,
            total_price = :total_price
        WHERE id = :id AND cart_id = :cart_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) DeleteItem(ctx context.Context, cartID, itemID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, itemID)
	return err
}
