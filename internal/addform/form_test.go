package addform

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchepastry/pastryadmin/internal/domain"
	"github.com/alchepastry/pastryadmin/internal/imaging"
)

// manualDecoder parks callbacks until the test completes them, in any order.
type manualDecoder struct {
	mu      sync.Mutex
	pending []imaging.Callback
	fail    error
}

func (d *manualDecoder) Submit(data []byte, cb imaging.Callback) error {
	if d.fail != nil {
		return d.fail
	}
	d.mu.Lock()
	d.pending = append(d.pending, cb)
	d.mu.Unlock()
	return nil
}

func (d *manualDecoder) complete(i int, ref string, err error) {
	d.mu.Lock()
	cb := d.pending[i]
	d.mu.Unlock()
	cb(ref, err)
}

func TestNewFormDefaults(t *testing.T) {
	f := New(&manualDecoder{})
	d := f.Draft()
	assert.Equal(t, domain.CategoryCake, d.Category)
	assert.Empty(t, d.Name)
	assert.Empty(t, d.Image)
	assert.Nil(t, d.Stock)
}

func TestFormFields(t *testing.T) {
	f := New(&manualDecoder{})
	f.SetName("Brownie")
	f.SetDescription("Fudgy")
	assert.True(t, f.SetCategory(domain.CategoryCookie))
	assert.False(t, f.SetCategory("Pie"))
	assert.Equal(t, "3", f.InputPrice("3"))
	assert.Equal(t, "3.00", f.BlurPrice())

	d := f.Draft()
	assert.Equal(t, "Brownie", d.Name)
	assert.Equal(t, "Fudgy", d.Description)
	assert.Equal(t, domain.CategoryCookie, d.Category)
	assert.Equal(t, "3.00", d.Price)
}

func TestInputPriceRejectsSecondDecimalPoint(t *testing.T) {
	f := New(&manualDecoder{})
	f.InputPrice("4.5")
	assert.Equal(t, "4.5", f.InputPrice("4.5."))
}

func TestConfirmRequiresOpenPopup(t *testing.T) {
	f := New(&manualDecoder{})
	f.SetName("Brownie")
	_, ok := f.Confirm()
	assert.False(t, ok)

	f.RequestConfirm()
	assert.True(t, f.State().ConfirmOpen)
	f.CancelConfirm()
	_, ok = f.Confirm()
	assert.False(t, ok)

	f.RequestConfirm()
	d, ok := f.Confirm()
	require.True(t, ok)
	assert.Equal(t, "Brownie", d.Name)
}

func TestConfirmStripsNonNumericPrice(t *testing.T) {
	f := New(&manualDecoder{})
	f.mu.Lock()
	f.draft.Price = "₱ 12.50"
	f.mu.Unlock()
	f.RequestConfirm()
	d, ok := f.Confirm()
	require.True(t, ok)
	assert.Equal(t, "12.50", d.Price)
}

func TestSelectImageLastSelectionWins(t *testing.T) {
	dec := &manualDecoder{}
	f := New(dec)
	require.NoError(t, f.SelectImage([]byte("first")))
	require.NoError(t, f.SelectImage([]byte("second")))
	assert.True(t, f.State().ImagePending)

	// second finishes first, then the stale first completion arrives
	dec.complete(1, "data:image/png;base64,SECOND", nil)
	dec.complete(0, "data:image/png;base64,FIRST", nil)

	assert.Equal(t, "data:image/png;base64,SECOND", f.Draft().Image)
	assert.False(t, f.State().ImagePending)
}

func TestSelectImageIgnoredAfterDismiss(t *testing.T) {
	dec := &manualDecoder{}
	f := New(dec)
	require.NoError(t, f.SelectImage([]byte("img")))
	f.Dismiss()
	dec.complete(0, "data:image/png;base64,LATE", nil)

	assert.True(t, f.Closed())
	assert.Empty(t, f.Draft().Image)
}

func TestSelectImageEmptyAndFailures(t *testing.T) {
	dec := &manualDecoder{}
	f := New(dec)
	require.NoError(t, f.SelectImage(nil))
	assert.Empty(t, dec.pending)

	require.NoError(t, f.SelectImage([]byte("broken")))
	dec.complete(0, "", imaging.ErrNotImage)
	assert.Empty(t, f.Draft().Image)
	assert.False(t, f.State().ImagePending)

	dec.fail = errors.New("pool closed")
	assert.Error(t, f.SelectImage([]byte("x")))
	assert.False(t, f.State().ImagePending)
}

func TestSelectImageWithRealDecoder(t *testing.T) {
	dec, err := imaging.NewDecoder(1, 0)
	require.NoError(t, err)
	defer dec.Release()

	f := New(dec)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.NoError(t, f.SelectImage(png))
	require.Eventually(t, func() bool {
		return !f.State().ImagePending
	}, 2*time.Second, time.Millisecond)
	assert.Contains(t, f.Draft().Image, "data:image/png;base64,")
}

func TestDismissDiscardsDraft(t *testing.T) {
	f := New(&manualDecoder{})
	f.SetName("Brownie")
	f.RequestConfirm()
	f.Dismiss()
	assert.Empty(t, f.Draft().Name)
	_, ok := f.Confirm()
	assert.False(t, ok)
}
