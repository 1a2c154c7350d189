package imaging

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrEmpty    = errors.New("image data is empty")
	ErrTooLarge = errors.New("image exceeds size limit")
	ErrNotImage = errors.New("data is not an image")
)

// Callback receives the outcome of one submitted decode. It is called exactly
// once per Submit that returned nil.
type Callback func(ref string, err error)

// Decoder turns uploaded image bytes into self-contained data URLs on a
// bounded worker pool.
type Decoder struct {
	pool     *ants.Pool
	maxBytes int64
}

// NewDecoder starts a pool of workers goroutines. maxBytes <= 0 disables the
// size check.
func NewDecoder(workers int, maxBytes int64) (*Decoder, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		zap.S().Errorf("image decode panic: %v", p)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create image decode pool")
	}
	return &Decoder{pool: pool, maxBytes: maxBytes}, nil
}

// Encode returns data as a data URL. The MIME type is sniffed from content.
func (d *Decoder) Encode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return "", ErrTooLarge
	}
	mt := mimetype.Detect(data)
	mime := mt.String()
	if !strings.HasPrefix(mime, "image/") {
		return "", errors.Wrapf(ErrNotImage, "detected %s", mime)
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Submit encodes data asynchronously and hands the result to cb.
func (d *Decoder) Submit(data []byte, cb Callback) error {
	buf := append([]byte(nil), data...)
	err := d.pool.Submit(func() {
		ref, err := d.Encode(buf)
		cb(ref, err)
	})
	if err != nil {
		return errors.Wrap(err, "submit image decode")
	}
	return nil
}

// Running reports the number of in-flight decodes.
func (d *Decoder) Running() int {
	return d.pool.Running()
}

// Release stops accepting work and frees the pool.
func (d *Decoder) Release() {
	d.pool.Release()
}
