// Package cart holds the shopping basket as a value: a State, the Actions that
// change it, and Reduce, which applies one to the other without side effects.
package cart

import "github.com/shopspring/decimal"

// MaxQuantity is the most units a single line can hold. Larger quantities are
// clamped so the basket always stays orderable.
const MaxQuantity = 1000

// Item is one line in the basket. ID is the product id.
type Item struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price × quantity for the line.
func (it Item) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// State is the whole basket. TotalItems and TotalPrice are always derived from
// Items; IsOpen is presentation state and carries no business meaning.
type State struct {
	Items      []Item          `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	IsOpen     bool            `json:"isOpen"`
}

// Empty reports whether the basket has no lines.
func (s State) Empty() bool { return len(s.Items) == 0 }

type actionType int

const (
	actAdd actionType = iota + 1
	actRemove
	actUpdateQty
	actClear
	actOpen
	actClose
	actRestore
)

// Action is a single basket transition. Build one with the constructors below.
type Action struct {
	typ      actionType
	item     Item
	id       int64
	quantity int
	snapshot State
}

// AddItem merges item into the basket; a quantity below 1 counts as 1 and the
// merged line is capped at MaxQuantity.
func AddItem(item Item, quantity int) Action {
	return Action{typ: actAdd, item: item, quantity: quantity}
}

func RemoveItem(id int64) Action { return Action{typ: actRemove, id: id} }

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func UpdateQuantity(id int64, quantity int) Action {
	return Action{typ: actUpdateQty, id: id, quantity: quantity}
}

func Clear() Action { return Action{typ: actClear} }
func Open() Action  { return Action{typ: actOpen} }
func Close() Action { return Action{typ: actClose} }

// Restore rebuilds a basket from a persisted snapshot. Quantities are taken as
// stored, not replayed through AddItem.
func Restore(snapshot State) Action { return Action{typ: actRestore, snapshot: snapshot} }

// Reduce returns the state that results from applying a to s. s is not modified.
func Reduce(s State, a Action) State {
	switch a.typ {
	case actAdd:
		qty := a.quantity
		if qty < 1 {
			qty = 1
		}
		items := clone(s.Items)
		found := false
		for i := range items {
			if items[i].ID == a.item.ID {
				items[i].Quantity = capQuantity(items[i].Quantity + qty)
				found = true
				break
			}
		}
		if !found {
			it := a.item
			it.Quantity = capQuantity(qty)
			items = append(items, it)
		}
		next := withItems(s, items)
		next.IsOpen = true
		return next

	case actRemove:
		items := make([]Item, 0, len(s.Items))
		for _, it := range s.Items {
			if it.ID != a.id {
				items = append(items, it)
			}
		}
		return withItems(s, items)

	case actUpdateQty:
		if a.quantity < 1 {
			return Reduce(s, RemoveItem(a.id))
		}
		items := clone(s.Items)
		for i := range items {
			if items[i].ID == a.id {
				items[i].Quantity = capQuantity(a.quantity)
			}
		}
		return withItems(s, items)

	case actClear:
		return withItems(State{IsOpen: s.IsOpen}, nil)

	case actOpen:
		s.Items = clone(s.Items)
		s.IsOpen = true
		return s

	case actClose:
		s.Items = clone(s.Items)
		s.IsOpen = false
		return s

	case actRestore:
		var items []Item
		index := map[int64]int{}
		for _, it := range a.snapshot.Items {
			if it.Quantity < 1 {
				continue
			}
			if i, ok := index[it.ID]; ok {
				items[i].Quantity = capQuantity(items[i].Quantity + it.Quantity)
				continue
			}
			index[it.ID] = len(items)
			it.Quantity = capQuantity(it.Quantity)
			items = append(items, it)
		}
		return withItems(State{IsOpen: a.snapshot.IsOpen}, items)
	}
	return s
}

func capQuantity(n int) int {
	if n > MaxQuantity {
		return MaxQuantity
	}
	return n
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func withItems(s State, items []Item) State {
	if items == nil {
		items = []Item{}
	}
	s.Items = items
	s.TotalItems = 0
	s.TotalPrice = decimal.Zero
	for _, it := range items {
		s.TotalItems += it.Quantity
		s.TotalPrice = s.TotalPrice.Add(it.Subtotal())
	}
	return s
}
