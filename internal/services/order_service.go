package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cocolabs/internal/domain"
	"cocolabs/internal/repos"
	"cocolabs/internal/validate"
)

var (
	ShippingFee = decimal.RequireFromString("10.00")
	TaxRate     = decimal.RequireFromString("0.08")
)

// Totals is the server-side price breakdown of an order.
type Totals struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// ComputeTotals prices lines at catalog prices: flat shipping plus tax on the
// subtotal, rounded to cents.
func ComputeTotals(items []domain.OrderItem) Totals {
	sub := decimal.Zero
	for _, it := range items {
		sub = sub.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	sub = sub.Round(2)
	tax := sub.Mul(TaxRate).Round(2)
	return Totals{Subtotal: sub, ShippingFee: ShippingFee, Tax: tax, Total: sub.Add(ShippingFee).Add(tax)}
}

type OrderService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
}

func NewOrderService(orders *repos.OrderRepo, prods *repos.ProductRepo) *OrderService {
	return &OrderService{Orders: orders, Prods: prods}
}

func (s *OrderService) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

// Price resolves lines against the current catalog, merging repeated product
// ids, and totals them. An unknown product is a validation error.
func (s *OrderService) Price(ctx context.Context, lines []validate.OrderLineInput) ([]domain.OrderItem, Totals, error) {
	ids := make([]int64, 0, len(lines))
	for _, it := range lines {
		ids = append(ids, it.ID)
	}
	catalog, err := s.Prods.ByIDs(ctx, ids)
	if err != nil {
		return nil, Totals{}, err
	}

	// merge repeated product ids into one line
	var items []domain.OrderItem
	index := map[int64]int{}
	for _, it := range lines {
		p, ok := catalog[it.ID]
		if !ok {
			return nil, Totals{}, &validate.Error{Field: "items.id", Msg: fmt.Sprintf("unknown product %d", it.ID)}
		}
		if i, seen := index[it.ID]; seen {
			items[i].Quantity += it.Quantity
			continue
		}
		index[it.ID] = len(items)
		items = append(items, domain.OrderItem{
			ID: uuid.NewString(), ProductID: p.ID, Quantity: it.Quantity, Price: p.Price, Name: p.Name, Image: p.Image,
		})
	}
	return items, ComputeTotals(items), nil
}

// Place prices the order from the catalog and stores it. The client's total,
// when given, is only compared; mismatch reports whether it disagreed.
func (s *OrderService) Place(ctx context.Context, userID string, in validate.OrderInput) (order *domain.Order, mismatch bool, err error) {
	items, t, err := s.Price(ctx, in.Items)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	sh := in.ShippingInfo
	o := &domain.Order{
		ID:       uuid.NewString(),
		UserID:   userID,
		Items:    items,
		Subtotal: t.Subtotal, ShippingFee: t.ShippingFee, Tax: t.Tax, Total: t.Total,
		ShippingInfo: domain.ShippingInfo{
			FirstName: sh.FirstName, LastName: sh.LastName, Email: sh.Email, Address: sh.Address,
			City: sh.City, State: sh.State, ZipCode: sh.ZipCode, Country: sh.Country, Phone: sh.Phone,
		},
		PaymentMethod: in.PaymentMethod,
		PaymentID:     in.PaymentID,
		Status:        domain.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, false, err
	}
	return o, in.Total != nil && !in.Total.Equal(o.Total), nil
}
