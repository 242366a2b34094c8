package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products on the menu.
type Category string

const (
	CategorySnack   Category = "LANCHE"
	CategorySide    Category = "ACOMPANHAMENTO"
	CategoryDrink   Category = "BEBIDA"
	CategoryDessert Category = "SOBREMESA"
)

var categories = map[Category]struct{}{
	CategorySnack:   {},
	CategorySide:    {},
	CategoryDrink:   {},
	CategoryDessert: {},
}

// ParseCategory normalises s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := categories[c]
	return c, ok
}

// Product is an item that can be ordered.
type Product struct {
	ID          string          `json:"id"`
	Description string          `json:"descricao"`
	Value       decimal.Decimal `json:"valor"`
	Category    Category        `json:"categoria"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductRequest is the payload for creating or editing a product.
type ProductRequest struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"descricao"`
	Value       decimal.Decimal `json:"valor"`
	Category    string          `json:"categoria"`
}
