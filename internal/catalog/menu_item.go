// Package catalog holds the read-only menu the storefront sells from.
//
// The catalog is supplied from outside the cart engine (a JSON file, the
// embedded default menu, or a cached copy of either) and never mutated once
// loaded. Cart and checkout code only ever ask it two questions: what does
// an item cost and what is it called.
package catalog

import "github.com/shopspring/decimal"

// AllCategories is the pseudo-category that disables filtering.
const AllCategories = "All"

// MenuItem is one orderable dish.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
}
