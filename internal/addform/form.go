package addform

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/alchepastry/pastryadmin/internal/domain"
	"github.com/alchepastry/pastryadmin/internal/imaging"
)

// ImageDecoder is the asynchronous image-to-reference capability the form
// relies on.
type ImageDecoder interface {
	Submit(data []byte, cb imaging.Callback) error
}

// Form holds an add-product draft in isolation from the live catalog.
// Its methods are safe to call while an image decode completes.
type Form struct {
	mu          sync.Mutex
	decoder     ImageDecoder
	draft       domain.ProductDraft
	confirmOpen bool
	closed      bool
	imageGen    uint64
	pendingGen  uint64
}

// State is a snapshot of the form for rendering.
type State struct {
	Draft        domain.ProductDraft `json:"draft"`
	ConfirmOpen  bool                `json:"confirm_open"`
	ImagePending bool                `json:"image_pending"`
}

func New(decoder ImageDecoder) *Form {
	return &Form{
		decoder: decoder,
		draft:   domain.ProductDraft{Category: domain.CategoryCake},
	}
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Draft:        f.draft,
		ConfirmOpen:  f.confirmOpen,
		ImagePending: f.pendingGen != 0,
	}
}

func (f *Form) Draft() domain.ProductDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *Form) SetName(name string) {
	f.mu.Lock()
	f.draft.Name = name
	f.mu.Unlock()
}

func (f *Form) SetDescription(desc string) {
	f.mu.Lock()
	f.draft.Description = desc
	f.mu.Unlock()
}

// SetCategory reports false and leaves the draft unchanged for unknown categories.
func (f *Form) SetCategory(c domain.Category) bool {
	if !c.Valid() {
		return false
	}
	f.mu.Lock()
	f.draft.Category = c
	f.mu.Unlock()
	return true
}

// InputPrice applies a keystroke to the price field and returns the masked value.
func (f *Form) InputPrice(raw string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Price = MaskPrice(f.draft.Price, raw)
	return f.draft.Price
}

// BlurPrice reformats the price when the field loses focus.
func (f *Form) BlurPrice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Price = BlurPrice(f.draft.Price)
	return f.draft.Price
}

// SelectImage starts converting data into the draft image. Empty data means
// no file was chosen and does nothing. Only the most recent selection can
// land in the draft, and nothing lands after Dismiss.
func (f *Form) SelectImage(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.imageGen++
	gen := f.imageGen
	f.pendingGen = gen
	f.mu.Unlock()

	err := f.decoder.Submit(data, func(ref string, err error) {
		f.completeImage(gen, ref, err)
	})
	if err != nil {
		f.mu.Lock()
		if f.pendingGen == gen {
			f.pendingGen = 0
		}
		f.mu.Unlock()
		return errors.Wrap(err, "select image")
	}
	return nil
}

func (f *Form) completeImage(gen uint64, ref string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.imageGen {
		zap.L().Debug("discarding stale image decode", zap.Uint64("gen", gen))
		return
	}
	f.pendingGen = 0
	if err != nil {
		zap.L().Debug("image decode failed", zap.Error(err))
		return
	}
	f.draft.Image = ref
}

// RequestConfirm opens the yes/no confirmation.
func (f *Form) RequestConfirm() {
	f.mu.Lock()
	f.confirmOpen = true
	f.mu.Unlock()
}

// CancelConfirm closes the confirmation without emitting the draft.
func (f *Form) CancelConfirm() {
	f.mu.Lock()
	f.confirmOpen = false
	f.mu.Unlock()
}

// Confirm returns the draft with residual non-numeric price characters
// removed. It returns false unless the confirmation is open.
// The form stays open; the caller closes it once the draft is accepted.
func (f *Form) Confirm() (domain.ProductDraft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.confirmOpen || f.closed {
		return domain.ProductDraft{}, false
	}
	d := f.draft
	d.Price = keepPriceChars(d.Price)
	return d, true
}

// Dismiss discards the draft. Pending image decodes are ignored when they finish.
func (f *Form) Dismiss() {
	f.mu.Lock()
	f.closed = true
	f.confirmOpen = false
	f.pendingGen = 0
	f.draft = domain.ProductDraft{Category: domain.CategoryCake}
	f.mu.Unlock()
}

func (f *Form) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
