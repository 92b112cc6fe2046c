package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyID       = errors.New("catalog: menu item id is required")
	ErrDuplicateID   = errors.New("catalog: duplicate menu item id")
	ErrNegativePrice = errors.New("catalog: menu item price is negative")
)

// Catalog is an immutable, ordered set of menu items indexed by id.
type Catalog struct {
	items []MenuItem
	index map[string]int
}

// New validates items and builds a Catalog preserving their order.
func New(items []MenuItem) (*Catalog, error) {
	c := &Catalog{
		items: make([]MenuItem, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			return nil, fmt.Errorf("%w (name %q)", ErrEmptyID, it.Name)
		}
		if _, dup := c.index[it.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ErrNegativePrice, it.ID)
		}
		c.index[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

// Item returns the menu item with the given id.
func (c *Catalog) Item(id string) (MenuItem, bool) {
	i, ok := c.index[id]
	if !ok {
		return MenuItem{}, false
	}
	return c.items[i], true
}

// PriceOf returns the unit price of id.
func (c *Catalog) PriceOf(id string) (decimal.Decimal, bool) {
	it, ok := c.Item(id)
	return it.Price, ok
}

// NameOf returns the display name of id.
func (c *Catalog) NameOf(id string) (string, bool) {
	it, ok := c.Item(id)
	return it.Name, ok
}

// Items returns every item in catalog order. The slice is a copy.
func (c *Catalog) Items() []MenuItem {
	out := make([]MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Filter returns the items of one category in catalog order. An empty
// category or AllCategories returns everything.
func (c *Catalog) Filter(category string) []MenuItem {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, AllCategories) {
		return c.Items()
	}
	out := make([]MenuItem, 0)
	for _, it := range c.items {
		if strings.EqualFold(it.Category, category) {
			out = append(out, it)
		}
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, it := range c.items {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	return out
}
