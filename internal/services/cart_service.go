package services

import (
	"context"

	"cocolabs/internal/cart"
	"cocolabs/internal/domain"
	"cocolabs/internal/repos"
	"cocolabs/internal/validate"
)

// CartService runs cart actions for a browser session against the cart Store.
type CartService struct {
	Store  *cart.Store
	Prods  *repos.ProductRepo
	Orders *OrderService
}

func NewCartService(store *cart.Store, prods *repos.ProductRepo, orders *OrderService) *CartService {
	return &CartService{Store: store, Prods: prods, Orders: orders}
}

func (s *CartService) View(ctx context.Context, sid string) (cart.State, error) {
	return s.Store.Load(ctx, cart.Key(sid))
}

// Add puts qty units of a catalog product in the cart at the current catalog price.
func (s *CartService) Add(ctx context.Context, sid string, productID int64, qty int) (cart.State, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		if repos.IsNotFound(err) {
			return cart.State{}, ErrNotFound
		}
		return cart.State{}, err
	}
	item := cart.Item{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}
	return s.Store.Dispatch(ctx, cart.Key(sid), cart.AddItem(item, qty))
}

// Update sets a line's quantity; zero or less removes the line.
func (s *CartService) Update(ctx context.Context, sid string, productID int64, qty int) (cart.State, error) {
	return s.Store.Dispatch(ctx, cart.Key(sid), cart.UpdateQuantity(productID, qty))
}

func (s *CartService) Remove(ctx context.Context, sid string, productID int64) (cart.State, error) {
	return s.Store.Dispatch(ctx, cart.Key(sid), cart.RemoveItem(productID))
}

func (s *CartService) Clear(ctx context.Context, sid string) (cart.State, error) {
	return s.Store.Dispatch(ctx, cart.Key(sid), cart.Clear())
}

func (s *CartService) SetOpen(ctx context.Context, sid string, open bool) (cart.State, error) {
	a := cart.Close()
	if open {
		a = cart.Open()
	}
	return s.Store.Dispatch(ctx, cart.Key(sid), a)
}

// Quote prices the session's cart the way Checkout will charge it: current
// catalog prices, shipping and tax.
func (s *CartService) Quote(ctx context.Context, sid string) (cart.State, []domain.OrderItem, Totals, error) {
	st, err := s.View(ctx, sid)
	if err != nil {
		return cart.State{}, nil, Totals{}, err
	}
	if st.Empty() {
		return st, nil, ComputeTotals(nil), nil
	}
	items, t, err := s.Orders.Price(ctx, cartLines(st))
	if err != nil {
		return st, nil, Totals{}, err
	}
	return st, items, t, nil
}

func cartLines(st cart.State) []validate.OrderLineInput {
	lines := make([]validate.OrderLineInput, 0, len(st.Items))
	for _, it := range st.Items {
		lines = append(lines, validate.OrderLineInput{ID: it.ID, Quantity: it.Quantity})
	}
	return lines
}

// Checkout places an order for the session's cart and clears it.
// An empty cart yields ErrEmptyCart and creates nothing. The cart stays locked
// from read to clear, so a repeated submit cannot order the same cart twice.
func (s *CartService) Checkout(ctx context.Context, sid, userID string, in validate.CheckoutInput) (*domain.Order, error) {
	var order *domain.Order
	err := s.Store.Consume(ctx, cart.Key(sid), func(st cart.State) error {
		if st.Empty() {
			return ErrEmptyCart
		}
		req := in.Order(cartLines(st))
		if err := req.Validate(); err != nil {
			return err
		}
		o, _, err := s.Orders.Place(ctx, userID, req)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
