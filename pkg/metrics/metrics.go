package metrics

import (
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Gauge names sampled by the application jobs.
const (
	ProcessCPUUse     = "pastryadmin_cpuuse"
	ProcessMemUse     = "pastryadmin_memuse"
	CatalogProducts   = "catalog_products"
	CatalogStockTotal = "catalog_stock_total"
	CatalogOutOfStock = "catalog_out_of_stock"
	DashboardSessions = "dashboard_sessions"
	CatalogMutations  = "catalog_mutations"
	ImageDecodes      = "image_decodes_running"
)

// Point is one recorded sample. Timestamp is in unix milliseconds.
type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Recorder keeps gauge series in an in-memory time series store.
type Recorder struct {
	storage tstorage.Storage
	mu      sync.Mutex
	counter map[string]int64
	last    map[string]int64
	closed  bool
}

func New(retention time.Duration) (*Recorder, error) {
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Milliseconds),
	}
	if retention > 0 {
		opts = append(opts, tstorage.WithRetention(retention))
	}
	storage, err := tstorage.NewStorage(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "open metrics storage")
	}
	return &Recorder{
		storage: storage,
		counter: make(map[string]int64),
		last:    make(map[string]int64),
	}, nil
}

// SetGauge records value for name at the current time.
func (r *Recorder) SetGauge(name string, value int64) {
	r.insert(name, float64(value), time.Now())
}

// Incr adds delta to the running counter name and records the new total.
func (r *Recorder) Incr(name string, delta int64) int64 {
	r.mu.Lock()
	r.counter[name] += delta
	v := r.counter[name]
	r.mu.Unlock()
	r.insert(name, float64(v), time.Now())
	return v
}

func (r *Recorder) insert(name string, value float64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	// the storage only returns points in strictly increasing time order
	ts := at.UnixMilli()
	if prev, seen := r.last[name]; seen && ts <= prev {
		ts = prev + 1
	}
	r.last[name] = ts
	err := r.storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: ts, Value: value},
	}})
	if err != nil {
		zap.L().Debug("metrics insert failed", zap.String("metric", name), zap.Error(err))
	}
}

// Series returns the points of name recorded in [since, until). A series
// without points yields an empty slice.
func (r *Recorder) Series(name string, since, until time.Time) ([]Point, error) {
	points, err := r.storage.Select(name, nil, since.UnixMilli(), until.UnixMilli())
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return []Point{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", name)
	}
	out := make([]Point, 0, len(points))
	for _, p := range points {
		out = append(out, Point{Timestamp: p.Timestamp, Value: p.Value})
	}
	return out, nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()
	return r.storage.Close()
}
