package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List returns the distinct categories of active products, sorted by name.
func (r *CategoryRepo) List(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT DISTINCT category
	  FROM products
	  WHERE active = 1 AND category <> ''
	  ORDER BY category
	`)
	return out, err
}
