package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/sale"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, s *model.Sale) error {
	query := `
        INSERT INTO sales (
            id, title, active, product_ids, category_ids, discount_deduct,
            discount_percent, discount_exact, valid_from, valid_to, created_at, updated_at
        )
        VALUES (
            :id, :title, :active, :product_ids, :category_ids, :discount_deduct,
            :discount_percent, :discount_exact, :valid_from, :valid_to, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	var s model.Sale
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM sales WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.DB.SelectContext(ctx, &sales, `SELECT * FROM sales ORDER BY created_at DESC`)
	return sales, err
}

func (r *PGRepository) Update(ctx context.Context, s *model.Sale) error {
	query := `
        UPDATE sales
        SET title = :title,
            active = :active,
            product_ids = :product_ids,
            category_ids = :category_ids,
            discount_deduct = :discount_deduct,
            discount_percent = :discount_percent,
            discount_exact = :discount_exact,
            valid_from = :valid_from,
            valid_to = :valid_to,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sales WHERE id = $1", id)
	return err
}

const (
	clearProductsQuery = `
        UPDATE products
        SET sale_id = NULL, sale_price = NULL, sale_from = NULL, sale_to = NULL
        WHERE sale_id = $1
        RETURNING id
    `
	clearVariationsQuery = `
        UPDATE product_variations
        SET sale_id = NULL, sale_price = NULL, sale_from = NULL, sale_to = NULL
        WHERE sale_id = $1
        RETURNING product_id
    `
)

func (r *PGRepository) ReplaceAssignments(ctx context.Context, s *model.Sale, a sale.Assignment) ([]string, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	touched := newIDSet()

	// 1. Clear previous prices
	if err := clearInTx(ctx, tx, s.ID, touched); err != nil {
		return nil, err
	}

	// 2. Cache the new ones
	for id, price := range a.Products {
		var productID string
		err := tx.GetContext(ctx, &productID, `
            UPDATE products
            SET sale_id = $1, sale_price = $2, sale_from = $3, sale_to = $4
            WHERE id = $5
            RETURNING id
        `, s.ID, price, s.ValidFrom, s.ValidTo, id)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to apply sale to product %s: %w", id, err)
		}
		touched.add(productID)
	}
	for id, price := range a.Variations {
		var productID string
		err := tx.GetContext(ctx, &productID, `
            UPDATE product_variations
            SET sale_id = $1, sale_price = $2, sale_from = $3, sale_to = $4
            WHERE id = $5
            RETURNING product_id
        `, s.ID, price, s.ValidFrom, s.ValidTo, id)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to apply sale to variation %s: %w", id, err)
		}
		touched.add(productID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return touched.list(), nil
}

func (r *PGRepository) ClearAssignments(ctx context.Context, saleID string) ([]string, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	touched := newIDSet()
	if err := clearInTx(ctx, tx, saleID, touched); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return touched.list(), nil
}

func clearInTx(ctx context.Context, tx *sqlx.Tx, saleID string, touched *idSet) error {
	for _, query := range []string{clearProductsQuery, clearVariationsQuery} {
		var ids []string
		if err := tx.SelectContext(ctx, &ids, query, saleID); err != nil {
			return fmt.Errorf("failed to clear sale: %w", err)
		}
		for _, id := range ids {
			touched.add(id)
		}
	}
	return nil
}

type idSet struct {
	seen  map[string]bool
	order []string
}

func newIDSet() *idSet {
	return &idSet{seen: map[string]bool{}}
}

func (s *idSet) add(id string) {
	if id == "" || s.seen[id] {
		return
	}
	s.seen[id] = true
	s.order = append(s.order, id)
}

func (s *idSet) list() []string {
	return s.order
}
