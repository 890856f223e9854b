package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-cartridge/internal/category/dto"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (
            id, parent_id, title, sort_order, options, sale_id, price_min, price_max,
            combined, created_at, updated_at
        )
        VALUES (
            :id, :parent_id, :title, :sort_order, :options, :sale_id, :price_min, :price_max,
            :combined, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	query := `SELECT * FROM categories WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, error) {
	var categories []model.Category

	conditions := []string{}
	args := map[string]interface{}{}

	if f != nil {
		if len(f.IDs) > 0 {
			conditions = append(conditions, "id = ANY(:ids)")
			args["ids"] = pq.Array(f.IDs)
		}
		if f.ParentID != nil {
			if *f.ParentID == "" {
				conditions = append(conditions, "parent_id IS NULL")
			} else {
				conditions = append(conditions, "parent_id = :parent_id")
				args["parent_id"] = *f.ParentID
			}
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT * FROM categories" + whereClause + " ORDER BY sort_order ASC, title ASC"

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &categories, args)
	return categories, err
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            title = :title,
            sort_order = :sort_order,
            options = :options,
            sale_id = :sale_id,
            price_min = :price_min,
            price_max = :price_max,
            combined = :combined,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

// Delete leaves child categories in place; the foreign key sets their
// parent to NULL.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}
