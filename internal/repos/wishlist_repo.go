package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cocolabs/internal/domain"
)

type WishlistRepo struct{ db *sqlx.DB }

func NewWishlistRepo(db *sqlx.DB) *WishlistRepo { return &WishlistRepo{db: db} }

// Ensure returns the user's wishlist id, creating the wishlist when missing.
func (r *WishlistRepo) Ensure(ctx context.Context, userID, newID string) (string, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlists(id, user_id, created_at) VALUES(?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, newID, userID, formatTime(time.Now())); err != nil {
		return "", err
	}
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM wishlists WHERE user_id = ?`, userID)
	return id, err
}

// Add inserts a product into the wishlist; ErrDuplicate when it is already there.
func (r *WishlistRepo) Add(ctx context.Context, wishlistID, itemID string, productID int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
	  INSERT INTO wishlist_items(id, wishlist_id, product_id, created_at)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(wishlist_id, product_id) DO NOTHING
	`, itemID, wishlistID, productID, formatTime(at))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicate
	}
	return nil
}

// RemoveForUser deletes an item only if it sits in userID's wishlist.
// It returns sql.ErrNoRows otherwise.
func (r *WishlistRepo) RemoveForUser(ctx context.Context, userID, itemID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM wishlist_items
		WHERE id = ? AND wishlist_id IN (SELECT id FROM wishlists WHERE user_id = ?)
	`, itemID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type wishlistRow struct {
	ID          string              `db:"id"`
	ProductID   int64               `db:"product_id"`
	Name        sql.NullString      `db:"name"`
	Price       decimal.NullDecimal `db:"price"`
	Image       sql.NullString      `db:"image"`
	Description sql.NullString      `db:"description"`
	CreatedAt   string              `db:"created_at"`
}

// ListForUser returns the user's wishlist, newest first, with catalog details.
func (r *WishlistRepo) ListForUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	var rows []wishlistRow
	err := r.db.SelectContext(ctx, &rows, `
	  SELECT wi.id, wi.product_id, p.name, p.price, p.image, p.description, wi.created_at
	  FROM wishlists w
	  JOIN wishlist_items wi ON wi.wishlist_id = w.id
	  LEFT JOIN products p ON p.id = wi.product_id
	  WHERE w.user_id = ?
	  ORDER BY wi.created_at DESC
	`, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	out := make([]domain.WishlistItem, 0, len(rows))
	for _, row := range rows {
		it := domain.WishlistItem{ID: row.ID, ProductID: row.ProductID, CreatedAt: parseTime(row.CreatedAt)}
		if row.Name.Valid {
			it.Name, it.Price, it.Image, it.Description = row.Name.String, row.Price.Decimal, row.Image.String, row.Description.String
		} else {
			ph := domain.PlaceholderProduct(row.ProductID)
			it.Name, it.Price, it.Image, it.Description = ph.Name, ph.Price, ph.Image, ph.Description
		}
		out = append(out, it)
	}
	return out, nil
}
