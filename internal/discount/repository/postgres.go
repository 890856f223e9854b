package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, d *model.DiscountCode) error {
	query := `
        INSERT INTO discount_codes (
            id, title, code, active, product_ids, category_ids, discount_deduct,
            discount_percent, discount_exact, valid_from, valid_to, min_purchase,
            free_shipping, uses_remaining, created_at, updated_at
        )
        VALUES (
            :id, :title, :code, :active, :product_ids, :category_ids, :discount_deduct,
            :discount_percent, :discount_exact, :valid_from, :valid_to, :min_purchase,
            :free_shipping, :uses_remaining, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, d)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.DiscountCode, error) {
	return r.findOne(ctx, `SELECT * FROM discount_codes WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	return r.findOne(ctx, `SELECT * FROM discount_codes WHERE code = $1 LIMIT 1`, code)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg string) (*model.DiscountCode, error) {
	var d model.DiscountCode
	err := r.DB.GetContext(ctx, &d, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.DiscountCode, error) {
	var codes []model.DiscountCode
	err := r.DB.SelectContext(ctx, &codes, `SELECT * FROM discount_codes ORDER BY code ASC`)
	return codes, err
}

func (r *PGRepository) Update(ctx context.Context, d *model.DiscountCode) error {
	query := `
        UPDATE discount_codes
        SET title = :title,
            code = :code,
            active = :active,
            product_ids = :product_ids,
            category_ids = :category_ids,
            discount_deduct = :discount_deduct,
            discount_percent = :discount_percent,
            discount_exact = :discount_exact,
            valid_from = :valid_from,
            valid_to = :valid_to,
            min_purchase = :min_purchase,
            free_shipping = :free_shipping,
            uses_remaining = :uses_remaining,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, d)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM discount_codes WHERE id = $1", id)
	return err
}

func (r *PGRepository) DecrementUses(ctx context.Context, code string) error {
	query := `
        UPDATE discount_codes
        SET uses_remaining = uses_remaining - 1
        WHERE code = $1 AND active AND uses_remaining IS NOT NULL AND uses_remaining > 0
    `
	_, err := r.DB.ExecContext(ctx, query, code)
	return err
}
