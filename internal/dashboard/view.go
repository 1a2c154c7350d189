package dashboard

import (
	"github.com/alchepastry/pastryadmin/internal/addform"
	"github.com/alchepastry/pastryadmin/internal/domain"
)

// Section is the placeholder content of a tab without its own tooling yet.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var placeholderSections = map[domain.Tab]Section{
	domain.TabAccounts: {Title: "Manage Accounts", Body: "Account management content goes here..."},
	domain.TabOrders:   {Title: "Manage Orders", Body: "Order management content goes here..."},
}

// View is everything a renderer needs to draw the dashboard. It is derived
// fresh on every call.
type View struct {
	Tab             domain.Tab            `json:"tab"`
	Filter          domain.CategoryFilter `json:"filter"`
	Query           string                `json:"query"`
	Title           string                `json:"title,omitempty"`
	Products        []domain.Product      `json:"products"`
	Selected        *domain.Product       `json:"selected,omitempty"`
	Edit            *domain.Product       `json:"edit,omitempty"`
	EditConfirmOpen bool                  `json:"edit_confirm_open"`
	AddForm         *addform.State        `json:"add_form,omitempty"`
	Account         *Account              `json:"account,omitempty"`
	Section         *Section              `json:"section,omitempty"`
}

// View derives the current view. The product list is shown on the Product
// tab while nothing is selected; the detail view replaces it otherwise.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Tab:             c.tab,
		Filter:          c.filter,
		Query:           c.query,
		Products:        []domain.Product{},
		EditConfirmOpen: c.editConfirm,
	}
	if c.accountVisible {
		acc := c.account
		v.Account = &acc
	}
	if s, ok := placeholderSections[c.tab]; ok {
		v.Section = &s
	}
	if c.tab != domain.TabProduct {
		return v
	}

	if p, ok := c.selected(); ok {
		v.Selected = &p
		if c.edit != nil {
			draft := *c.edit
			v.Edit = &draft
		}
		return v
	}

	v.Title = "Product List"
	if products := c.catalog.Filter(c.filter, c.query); products != nil {
		v.Products = products
	}
	if c.addForm != nil {
		st := c.addForm.State()
		v.AddForm = &st
	}
	return v
}
