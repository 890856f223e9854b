package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/product/dto"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, title, slug, sku, stock_count, image, published, available,
            category_ids, upsell_ids, unit_price, sale_price, sale_from, sale_to,
            sale_id, created_at, updated_at
        )
        VALUES (
            :id, :title, :slug, :sku, :stock_count, :image, :published, :available,
            :category_ids, :upsell_ids, :unit_price, :sale_price, :sale_from, :sale_to,
            :sale_id, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, error) {
	var products []model.Product

	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil {
		if len(f.IDs) > 0 {
			conditions = append(conditions, "id = ANY(:ids)")
			args["ids"] = pq.Array(f.IDs)
		}
		if f.CategoryID != "" {
			conditions = append(conditions, ":category_id = ANY(category_ids)")
			args["category_id"] = f.CategoryID
		}
		if f.Published != nil {
			conditions = append(conditions, "published = :published")
			args["published"] = *f.Published
		}
		if len(f.SKUs) > 0 {
			conditions = append(conditions, "id IN (SELECT product_id FROM product_variations WHERE sku = ANY(:skus))")
			args["skus"] = pq.Array(f.SKUs)
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "created_at DESC"
	if f != nil && f.SortBy != "" {
		// Whitelisted to keep the ORDER BY out of user hands.
		switch f.SortBy {
		case "title":
			orderBy = "title"
		case "price":
			orderBy = "unit_price"
		default:
			orderBy = "created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &products, args)
	return products, err
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET title = :title,
            slug = :slug,
            sku = :sku,
            stock_count = :stock_count,
            image = :image,
            published = :published,
            available = :available,
            category_ids = :category_ids,
            upsell_ids = :upsell_ids,
            unit_price = :unit_price,
            sale_price = :sale_price,
            sale_from = :sale_from,
            sale_to = :sale_to,
            sale_id = :sale_id,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

func (r *PGRepository) CreateVariation(ctx context.Context, v *model.Variation) error {
	query := `
        INSERT INTO product_variations (
            id, product_id, sku, options, stock_count, is_default, image,
            unit_price, sale_price, sale_from, sale_to, sale_id, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :sku, :options, :stock_count, :is_default, :image,
            :unit_price, :sale_price, :sale_from, :sale_to, :sale_id, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, v)
	return err
}

func (r *PGRepository) UpdateVariation(ctx context.Context, v *model.Variation) error {
	query := `
        UPDATE product_variations
        SET sku = :sku,
            options = :options,
            stock_count = :stock_count,
            is_default = :is_default,
            image = :image,
            unit_price = :unit_price,
            sale_price = :sale_price,
            sale_from = :sale_from,
            sale_to = :sale_to,
            sale_id = :sale_id,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, v)
	return err
}

func (r *PGRepository) DeleteVariations(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM product_variations WHERE id = ANY($1)", pq.Array(ids))
	return err
}

func (r *PGRepository) FindVariations(ctx context.Context, f *dto.VariationFilters) ([]model.Variation, error) {
	var items []model.Variation

	conditions := []string{}
	args := map[string]interface{}{}

	if len(f.IDs) > 0 {
		conditions = append(conditions, "id = ANY(:ids)")
		args["ids"] = pq.Array(f.IDs)
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if len(f.ProductIDs) > 0 {
		conditions = append(conditions, "product_id = ANY(:product_ids)")
		args["product_ids"] = pq.Array(f.ProductIDs)
	}
	if len(f.SKUs) > 0 {
		conditions = append(conditions, "sku = ANY(:skus)")
		args["skus"] = pq.Array(f.SKUs)
	}
	if f.SaleID != "" {
		conditions = append(conditions, "sale_id = :sale_id")
		args["sale_id"] = f.SaleID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT * FROM product_variations" + whereClause + " ORDER BY created_at, id"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, err
}

func (r *PGRepository) FindVariationBySKU(ctx context.Context, sku string) (*model.Variation, error) {
	var v model.Variation
	err := r.DB.GetContext(ctx, &v, `SELECT * FROM product_variations WHERE sku = $1 LIMIT 1`, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *PGRepository) ListOptions(ctx context.Context) ([]model.ProductOption, error) {
	var options []model.ProductOption
	err := r.DB.SelectContext(ctx, &options, `SELECT * FROM product_options ORDER BY type, name`)
	return options, err
}

func (r *PGRepository) CreateOption(ctx context.Context, o *model.ProductOption) error {
	_, err := r.DB.NamedExecContext(ctx, `INSERT INTO product_options (id, type, name) VALUES (:id, :type, :name)`, o)
	return err
}

// RecordAction bumps one of the day's counters, creating the row on first use.
func (r *PGRepository) RecordAction(ctx context.Context, productID string, day int, kind model.ActionKind) error {
	var column string
	switch kind {
	case model.ActionAddedToCart, model.ActionPurchased:
		column = string(kind)
	default:
		return fmt.Errorf("unknown product action %q", kind)
	}
	query := fmt.Sprintf(`
        INSERT INTO product_actions (product_id, day, %[1]s)
        VALUES ($1, $2, 1)
        ON CONFLICT (product_id, day)
        DO UPDATE SET %[1]s = product_actions.%[1]s + 1
    `, column)
	_, err := r.DB.ExecContext(ctx, query, productID, day)
	return err
}
