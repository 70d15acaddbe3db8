package repos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cocolabs/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Price       decimal.Decimal `db:"price"`
	Image       string          `db:"image"`
	Category    string          `db:"category"`
	Tags        string          `db:"tags"`
	Description string          `db:"description"`
}

func (r productRow) toDomain() domain.Product {
	var tags []string
	for _, t := range strings.Split(r.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return domain.Product{
		ID: r.ID, Name: r.Name, Price: r.Price, Image: r.Image,
		Category: r.Category, Tags: tags, Description: r.Description,
	}
}

const productCols = `id, name, price, image, category, tags, description`

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, `SELECT `+productCols+` FROM products WHERE id = ? AND active = 1`, id)
	if err != nil {
		return domain.Product{}, err
	}
	return row.toDomain(), nil
}

// ByIDs returns the active products among ids, keyed by id.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productCols+` FROM products WHERE active = 1 AND id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.toDomain()
	}
	return out, nil
}

// Search lists active products, optionally filtered by a keyword and category.
func (r *ProductRepo) Search(ctx context.Context, q, category string, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?)`
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like, like)
	}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}
	args = append(args, limit, offset)

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE `+where+`
	  ORDER BY id
	  LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProductRepo) RecordView(ctx context.Context, userID string, productID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO product_views(user_id, product_id, viewed_at) VALUES(?, ?, ?)`,
		userID, productID, formatTime(time.Now()))
	return err
}

// ViewedProductIDs returns the distinct products a user looked at, most recent first.
func (r *ProductRepo) ViewedProductIDs(ctx context.Context, userID string) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT product_id FROM product_views
		WHERE user_id = ?
		GROUP BY product_id
		ORDER BY MAX(viewed_at) DESC
	`, userID)
	return ids, err
}
