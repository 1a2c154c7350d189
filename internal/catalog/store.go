package catalog

import (
	"strings"
	"sync"

	EventBus "github.com/asaskevich/EventBus"
	"github.com/google/btree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alchepastry/pastryadmin/internal/domain"
)

const (
	DefaultCurrency      = "₱"
	DefaultFallbackImage = "/images/image1.jpg"
)

// Store is the authoritative, ordered product collection. Every mutation
// builds a new slice and swaps it in, so readers see either the state before
// or after a mutation and never a partial one.
type Store struct {
	mu            sync.RWMutex
	products      []domain.Product
	index         *btree.BTreeG[indexEntry]
	lastID        int64
	currency      string
	fallbackImage string
	bus           EventBus.Bus
}

type Option func(*Store)

func WithCurrency(currency string) Option {
	return func(s *Store) {
		if currency != "" {
			s.currency = currency
		}
	}
}

func WithFallbackImage(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.fallbackImage = path
		}
	}
}

// WithBus publishes change events on bus after each applied mutation.
func WithBus(bus EventBus.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithProducts preloads the collection. Ids are taken as given.
func WithProducts(products []domain.Product) Option {
	return func(s *Store) {
		s.products = append([]domain.Product(nil), products...)
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		currency:      DefaultCurrency,
		fallbackImage: DefaultFallbackImage,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.swap(s.products)
	for _, p := range s.products {
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}
	return s
}

func (s *Store) Currency() string {
	return s.currency
}

// swap installs next as the live collection. Caller holds mu for writing,
// or is the constructor.
func (s *Store) swap(next []domain.Product) {
	ids := make([]int64, len(next))
	for i, p := range next {
		ids[i] = p.ID
	}
	s.products = next
	s.index = buildIndex(ids)
}

func (s *Store) publish(ev Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ev.Topic, ev)
}

// Add normalizes draft into a product and appends it. It returns false and
// leaves the collection untouched when name, price or description is empty.
func (s *Store) Add(draft domain.ProductDraft) (domain.Product, bool) {
	if !draft.Complete() {
		return domain.Product{}, false
	}

	s.mu.Lock()
	s.lastID++
	p := domain.Product{
		ID:          s.lastID,
		Name:        draft.Name,
		Category:    draft.Category,
		Price:       FormatPrice(s.currency, draft.Price),
		Description: draft.Description,
		Image:       draft.Image,
	}
	if !p.Category.Valid() {
		p.Category = domain.CategoryCake
	}
	if p.Image == "" {
		p.Image = s.fallbackImage
	}
	if draft.Stock != nil {
		p.Stock = *draft.Stock
	}
	next := make([]domain.Product, len(s.products), len(s.products)+1)
	copy(next, s.products)
	s.swap(append(next, p))
	size := len(s.products)
	s.mu.Unlock()

	s.publish(Event{Topic: TopicAdded, Product: p, Size: size})
	return p, true
}

// UpdateStock sets the stock of product id. The value is not bounds checked.
func (s *Store) UpdateStock(id int64, stock int) bool {
	s.mu.Lock()
	entry, ok := s.index.Get(indexEntry{id: id})
	if !ok {
		s.mu.Unlock()
		return false
	}
	prev := s.products[entry.pos]
	next := append([]domain.Product(nil), s.products...)
	next[entry.pos].Stock = stock
	updated := next[entry.pos]
	s.swap(next)
	size := len(next)
	s.mu.Unlock()

	s.publish(Event{Topic: TopicStock, Product: updated, Previous: &prev, Size: size})
	return true
}

// Update replaces the product whose id matches edited.ID with edited.
func (s *Store) Update(edited domain.Product) bool {
	s.mu.Lock()
	entry, ok := s.index.Get(indexEntry{id: edited.ID})
	if !ok {
		s.mu.Unlock()
		return false
	}
	prev := s.products[entry.pos]
	next := append([]domain.Product(nil), s.products...)
	next[entry.pos] = edited
	s.swap(next)
	size := len(next)
	s.mu.Unlock()

	s.publish(Event{Topic: TopicUpdated, Product: edited, Previous: &prev, Size: size})
	return true
}

// Delete removes product id, preserving the order of the rest.
func (s *Store) Delete(id int64) bool {
	s.mu.Lock()
	entry, ok := s.index.Get(indexEntry{id: id})
	if !ok {
		s.mu.Unlock()
		return false
	}
	removed := s.products[entry.pos]
	next := make([]domain.Product, 0, len(s.products)-1)
	next = append(next, s.products[:entry.pos]...)
	next = append(next, s.products[entry.pos+1:]...)
	s.swap(next)
	size := len(next)
	s.mu.Unlock()

	s.publish(Event{Topic: TopicDeleted, Product: removed, Previous: &removed, Size: size})
	return true
}

// Get returns a copy of product id.
func (s *Store) Get(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.index.Get(indexEntry{id: id})
	if !ok {
		return domain.Product{}, false
	}
	return s.products[entry.pos], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...)
}

// Filter returns, in insertion order, the products passing the category
// filter whose names contain query, ignoring case.
func (s *Store) Filter(filter domain.CategoryFilter, query string) []domain.Product {
	if filter == "" {
		filter = domain.AllProducts
	}
	lower := cases.Lower(language.Und)
	q := lower.String(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !filter.Match(p.Category) {
			continue
		}
		if q != "" && !strings.Contains(lower.String(p.Name), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
