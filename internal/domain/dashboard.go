package domain

import "strings"

// Tab is a top-level dashboard section.
type Tab string

const (
	TabProduct  Tab = "Product"
	TabAccounts Tab = "Accounts"
	TabOrders   Tab = "Orders"
)

var Tabs = []Tab{TabProduct, TabAccounts, TabOrders}

func ParseTab(s string) (Tab, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Tabs {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// CategoryFilter narrows the product list. AllProducts disables category filtering.
type CategoryFilter string

const AllProducts CategoryFilter = "All Products"

// Match reports whether a product of category c passes the filter.
func (f CategoryFilter) Match(c Category) bool {
	return f == AllProducts || Category(f) == c
}

// ParseCategoryFilter accepts "All Products" or a known category. An empty
// string means AllProducts.
func ParseCategoryFilter(s string) (CategoryFilter, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(AllProducts)) {
		return AllProducts, true
	}
	c, ok := ParseCategory(s)
	if !ok {
		return "", false
	}
	return CategoryFilter(c), true
}
