package domain

import "strings"

// Category is the pastry kind a product is listed under.
type Category string

const (
	CategoryCake   Category = "Cake"
	CategoryCookie Category = "Cookie"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryCake, CategoryCookie}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the known categories, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Categories {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// Product is one catalog item. Price is stored formatted, e.g. "₱20.00".
type Product struct {
	ID          int64    `json:"id" csv:"id"`
	Name        string   `json:"name" csv:"name"`
	Category    Category `json:"category" csv:"category"`
	Price       string   `json:"price" csv:"price"`
	Description string   `json:"description" csv:"description"`
	Image       string   `json:"image" csv:"-"`
	Stock       int      `json:"stock" csv:"stock"`
}

// ProductDraft is a not-yet-committed product collected by the add form.
// Price holds unformatted numeric text. A nil Stock means unspecified.
type ProductDraft struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

// Complete reports whether the draft carries the fields required to add it.
func (d ProductDraft) Complete() bool {
	return d.Name != "" && d.Price != "" && d.Description != ""
}
