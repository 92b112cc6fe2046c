// Package cart owns the per-session mapping from menu item id to requested
// quantity.
//
// A Store is deliberately unsynchronized: it belongs to exactly one owner
// (a session) and every caller is expected to hold that owner's lock.
// Invariant: every stored quantity is a positive integer; reaching zero
// deletes the key.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/food-storefront/internal/catalog"
)

// PriceLookup resolves unit prices. *catalog.Catalog satisfies it.
type PriceLookup interface {
	PriceOf(id string) (decimal.Decimal, bool)
}

// Menu is the catalog view needed to list cart lines in menu order.
type Menu interface {
	PriceLookup
	Items() []catalog.MenuItem
}

// Line is one resolved cart entry.
type Line struct {
	Item     catalog.MenuItem
	Quantity int
}

// Total is unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Store struct {
	quantities map[string]int
}

func NewStore() *Store {
	return &Store{quantities: make(map[string]int)}
}

// AddItem increments id by one, inserting it at one. Ids unknown to the
// catalog are accepted; pricing ignores them.
func (s *Store) AddItem(id string) {
	s.quantities[id]++
}

// RemoveItem decrements id by one and deletes it at zero. Absent ids are a
// no-op.
func (s *Store) RemoveItem(id string) {
	q, ok := s.quantities[id]
	if !ok {
		return
	}
	if q <= 1 {
		delete(s.quantities, id)
		return
	}
	s.quantities[id] = q - 1
}

// SetQuantity stores n for id; n <= 0 removes the entry.
func (s *Store) SetQuantity(id string, n int) {
	if n <= 0 {
		delete(s.quantities, id)
		return
	}
	s.quantities[id] = n
}

// Quantity returns the stored quantity, zero when absent.
func (s *Store) Quantity(id string) int {
	return s.quantities[id]
}

// TotalItemCount sums every quantity, including ids the catalog does not
// know. It drives the cart badge.
func (s *Store) TotalItemCount() int {
	n := 0
	for _, q := range s.quantities {
		n += q
	}
	return n
}

// TotalAmount sums price times quantity. Unknown ids contribute zero.
func (s *Store) TotalAmount(prices PriceLookup) decimal.Decimal {
	total := decimal.Zero
	for id, q := range s.quantities {
		price, ok := prices.PriceOf(id)
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(q))))
	}
	return total
}

// LineItems lists entries the menu recognizes, in menu order.
func (s *Store) LineItems(menu Menu) []Line {
	lines := make([]Line, 0, len(s.quantities))
	if len(s.quantities) == 0 {
		return lines
	}
	for _, it := range menu.Items() {
		if q := s.quantities[it.ID]; q > 0 {
			lines = append(lines, Line{Item: it, Quantity: q})
		}
	}
	return lines
}

// Len is the number of distinct ids in the cart.
func (s *Store) Len() int { return len(s.quantities) }

func (s *Store) IsEmpty() bool { return len(s.quantities) == 0 }

// Clear empties the cart.
func (s *Store) Clear() {
	s.quantities = make(map[string]int)
}

// Snapshot copies the current quantities.
func (s *Store) Snapshot() map[string]int {
	out := make(map[string]int, len(s.quantities))
	for id, q := range s.quantities {
		out[id] = q
	}
	return out
}

// Restore replaces the contents with snap, dropping non-positive entries.
func (s *Store) Restore(snap map[string]int) {
	s.quantities = make(map[string]int, len(snap))
	for id, q := range snap {
		if q > 0 {
			s.quantities[id] = q
		}
	}
}
