package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"cocolabs/internal/cart"
)

// CartStateRepo persists serialized carts in the cart_states table.
// It satisfies cart.Storage.
type CartStateRepo struct{ db *sqlx.DB }

func NewCartStateRepo(db *sqlx.DB) *CartStateRepo { return &CartStateRepo{db: db} }

func (r *CartStateRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var data string
	err := r.db.GetContext(ctx, &data, `SELECT data FROM cart_states WHERE cart_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (r *CartStateRepo) Set(ctx context.Context, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_states(cart_key, data, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(cart_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, key, string(data), formatTime(time.Now()))
	return err
}
