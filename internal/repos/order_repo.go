package repos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cocolabs/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	ShippingFee   decimal.Decimal `db:"shipping_fee"`
	Tax           decimal.Decimal `db:"tax"`
	Total         decimal.Decimal `db:"total"`
	ShippingInfo  string          `db:"shipping_info"`
	PaymentMethod string          `db:"payment_method"`
	PaymentID     string          `db:"payment_id"`
	Status        string          `db:"status"`
	CreatedAt     string          `db:"created_at"`
	UpdatedAt     string          `db:"updated_at"`
}

type orderItemRow struct {
	ID        string          `db:"id"`
	OrderID   string          `db:"order_id"`
	ProductID int64           `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
	Name      string          `db:"name"`
	Image     string          `db:"image"`
}

// Create inserts the order header and its lines in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	info, err := json.Marshal(o.ShippingInfo)
	if err != nil {
		return fmt.Errorf("encode shipping info: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, user_id, subtotal, shipping_fee, tax, total, shipping_info, payment_method, payment_id, status, created_at, updated_at)
	  VALUES
	    (?,  ?,       ?,        ?,            ?,   ?,     ?,             ?,              ?,          ?,      ?,          ?)
	`, o.ID, o.UserID, o.Subtotal.StringFixed(2), o.ShippingFee.StringFixed(2), o.Tax.StringFixed(2), o.Total.StringFixed(2),
		string(info), o.PaymentMethod, o.PaymentID, o.Status, formatTime(o.CreatedAt), formatTime(o.UpdatedAt)); err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(id, order_id, product_id, quantity, price)
		  VALUES(?, ?, ?, ?, ?)
		`, it.ID, o.ID, it.ProductID, it.Quantity, it.Price.StringFixed(2)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByUser returns the user's orders newest first, lines joined with catalog
// name and image where the product still exists.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, subtotal, shipping_fee, tax, total, shipping_info, payment_method, payment_id, status, created_at, updated_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, o := range rows {
		ids = append(ids, o.ID)
	}
	query, args, err := sqlx.In(`
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		       COALESCE(p.name, '') AS name, COALESCE(p.image, '') AS image
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id IN (?)
		ORDER BY oi.rowid
	`, ids)
	if err != nil {
		return nil, err
	}
	var items []orderItemRow
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	byOrder := map[string][]domain.OrderItem{}
	for _, it := range items {
		name, image := it.Name, it.Image
		if name == "" {
			ph := domain.PlaceholderProduct(it.ProductID)
			name, image = ph.Name, ph.Image
		}
		byOrder[it.OrderID] = append(byOrder[it.OrderID], domain.OrderItem{
			ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price, Name: name, Image: image,
		})
	}

	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o := domain.Order{
			ID: row.ID, UserID: row.UserID,
			Subtotal: row.Subtotal, ShippingFee: row.ShippingFee, Tax: row.Tax, Total: row.Total,
			PaymentMethod: row.PaymentMethod, PaymentID: row.PaymentID, Status: row.Status,
			CreatedAt: parseTime(row.CreatedAt), UpdatedAt: parseTime(row.UpdatedAt),
			Items: byOrder[row.ID],
		}
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}
		if err := json.Unmarshal([]byte(row.ShippingInfo), &o.ShippingInfo); err != nil {
			return nil, fmt.Errorf("decode shipping info for %s: %w", row.ID, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// PurchasedProductIDs returns every distinct product the user has ordered.
func (r *OrderRepo) PurchasedProductIDs(ctx context.Context, userID string) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT oi.product_id
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.user_id = ?
		ORDER BY oi.product_id
	`, userID)
	return ids, err
}
