package dashboard

import (
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/alchepastry/pastryadmin/internal/addform"
	"github.com/alchepastry/pastryadmin/internal/catalog"
	"github.com/alchepastry/pastryadmin/internal/domain"
)

// ErrInvalidField is returned for edit patches that cannot be applied.
var ErrInvalidField = errors.New("invalid edit field")

// maxPriceLen bounds edited price text, matching the add form.
const maxPriceLen = 64

// Catalog is the store the controller mediates access to.
type Catalog interface {
	Add(draft domain.ProductDraft) (domain.Product, bool)
	UpdateStock(id int64, stock int) bool
	Update(edited domain.Product) bool
	Delete(id int64) bool
	Get(id int64) (domain.Product, bool)
	Filter(filter domain.CategoryFilter, query string) []domain.Product
	Currency() string
}

// Account is the identity shown in the account detail panel.
type Account struct {
	User  string `json:"user"`
	Email string `json:"email"`
}

// Controller owns the UI selection state of one dashboard session and turns
// user intents into catalog operations. Its methods run one at a time.
type Controller struct {
	mu      sync.Mutex
	catalog Catalog
	decoder addform.ImageDecoder
	account Account

	tab            domain.Tab
	filter         domain.CategoryFilter
	query          string
	selectedID     int64
	hasSelection   bool
	edit           *domain.Product
	editConfirm    bool
	addForm        *addform.Form
	accountVisible bool
}

func NewController(cat Catalog, decoder addform.ImageDecoder, account Account) *Controller {
	return &Controller{
		catalog: cat,
		decoder: decoder,
		account: account,
		tab:     domain.TabProduct,
		filter:  domain.AllProducts,
	}
}

// SwitchTab changes the active tab from the header buttons. The product
// selection is left as is.
func (c *Controller) SwitchTab(tab domain.Tab) {
	c.mu.Lock()
	c.tab = tab
	c.mu.Unlock()
}

// GoHome is the logo action: back to the product list with nothing selected
// or being edited.
func (c *Controller) GoHome() {
	c.mu.Lock()
	c.tab = domain.TabProduct
	c.clearSelection()
	c.edit = nil
	c.editConfirm = false
	c.mu.Unlock()
}

func (c *Controller) SetCategoryFilter(f domain.CategoryFilter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

func (c *Controller) SetSearchQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *Controller) ToggleAccountPanel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountVisible = !c.accountVisible
	return c.accountVisible
}

// Select focuses product id for the detail view, replacing any previous
// selection. Unknown ids are ignored.
func (c *Controller) Select(id int64) bool {
	if _, ok := c.catalog.Get(id); !ok {
		return false
	}
	c.mu.Lock()
	c.selectedID = id
	c.hasSelection = true
	c.mu.Unlock()
	return true
}

// Back leaves the detail view.
func (c *Controller) Back() {
	c.mu.Lock()
	c.clearSelection()
	c.mu.Unlock()
}

func (c *Controller) clearSelection() {
	c.selectedID = 0
	c.hasSelection = false
}

// selected resolves the selection against the live catalog. Caller holds mu.
func (c *Controller) selected() (domain.Product, bool) {
	if !c.hasSelection {
		return domain.Product{}, false
	}
	return c.catalog.Get(c.selectedID)
}

// BeginEdit copies the selected product into the edit draft, holding its
// price as unformatted numeric text.
func (c *Controller) BeginEdit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.selected()
	if !ok {
		return false
	}
	p.Price = catalog.StripPrice(c.catalog.Currency(), p.Price)
	c.edit = &p
	return true
}

type editPatch struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Price       *string `json:"price"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Stock       *int    `json:"stock"`
}

// PatchEdit applies loosely typed field changes to the edit draft. It returns
// false when no edit is in progress.
func (c *Controller) PatchEdit(fields map[string]interface{}) (bool, error) {
	var patch editPatch
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &patch,
	})
	if err != nil {
		return false, errors.Wrap(err, "create edit decoder")
	}
	if err := dec.Decode(fields); err != nil {
		return false, errors.Wrap(ErrInvalidField, err.Error())
	}

	if patch.Price != nil && len(*patch.Price) > maxPriceLen {
		return false, errors.Wrapf(ErrInvalidField, "price longer than %d characters", maxPriceLen)
	}

	var category domain.Category
	if patch.Category != nil {
		var ok bool
		if category, ok = domain.ParseCategory(*patch.Category); !ok {
			return false, errors.Wrapf(ErrInvalidField, "unknown category %q", *patch.Category)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return false, nil
	}
	draft := *c.edit
	if patch.Name != nil {
		draft.Name = *patch.Name
	}
	if patch.Category != nil {
		draft.Category = category
	}
	if patch.Price != nil {
		draft.Price = *patch.Price
	}
	if patch.Description != nil {
		draft.Description = *patch.Description
	}
	if patch.Image != nil {
		draft.Image = *patch.Image
	}
	if patch.Stock != nil {
		draft.Stock = clampStock(*patch.Stock)
	}
	c.edit = &draft
	return true, nil
}

// EditDraft returns a copy of the edit draft.
func (c *Controller) EditDraft() (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return domain.Product{}, false
	}
	return *c.edit, true
}

// RequestEditConfirm opens the update confirmation popup.
func (c *Controller) RequestEditConfirm() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return false
	}
	c.editConfirm = true
	return true
}

func (c *Controller) CancelEditConfirm() {
	c.mu.Lock()
	c.editConfirm = false
	c.mu.Unlock()
}

// ConfirmEdit commits the draft to the catalog once the popup is open. On
// success the draft and popup are cleared.
func (c *Controller) ConfirmEdit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil || !c.editConfirm {
		return false
	}
	edited := *c.edit
	edited.Price = catalog.FormatPrice(c.catalog.Currency(), edited.Price)
	if !c.catalog.Update(edited) {
		return false
	}
	c.edit = nil
	c.editConfirm = false
	return true
}

// CancelEdit discards the draft without touching the catalog.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.edit = nil
	c.editConfirm = false
	c.mu.Unlock()
}

// Delete removes product id immediately and always clears the selection.
// An edit draft of the removed product is discarded with it.
func (c *Controller) Delete(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok := c.catalog.Delete(id)
	c.clearSelection()
	if ok && c.edit != nil && c.edit.ID == id {
		c.edit = nil
		c.editConfirm = false
	}
	return ok
}

// SetStock is the interactive stock control. Values below the control's
// minimum of zero are raised to zero before reaching the catalog.
func (c *Controller) SetStock(id int64, stock int) bool {
	return c.catalog.UpdateStock(id, clampStock(stock))
}

func clampStock(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// OpenAddForm shows the add form, starting a fresh draft if none is open.
func (c *Controller) OpenAddForm() *addform.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.addForm == nil {
		c.addForm = addform.New(c.decoder)
	}
	return c.addForm
}

// AddForm returns the open add form.
func (c *Controller) AddForm() (*addform.Form, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addForm, c.addForm != nil
}

// DismissAddForm closes the add form and discards its draft.
func (c *Controller) DismissAddForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismissAddForm()
}

func (c *Controller) dismissAddForm() {
	if c.addForm != nil {
		c.addForm.Dismiss()
		c.addForm = nil
	}
}

// SubmitAdd confirms the add form and hands its draft to the catalog. An
// accepted draft closes the form; a rejected one leaves it open.
func (c *Controller) SubmitAdd() (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.addForm == nil {
		return domain.Product{}, false
	}
	draft, ok := c.addForm.Confirm()
	if !ok {
		return domain.Product{}, false
	}
	p, ok := c.catalog.Add(draft)
	if !ok {
		return domain.Product{}, false
	}
	c.dismissAddForm()
	return p, true
}

// Close releases session resources.
func (c *Controller) Close() {
	c.DismissAddForm()
}
