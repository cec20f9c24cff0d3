package store

import (
	"errors"

	"shopfront/internal/domain"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

// CatalogStore defines data access for the shop catalog. The catalog lives in
// process memory for the lifetime of the storefront; the interface keeps the
// same shape a SQL-backed implementation would have.
//
// Implementations are not safe for concurrent use on their own; the service
// layer serializes access.
type CatalogStore interface {
	// List returns item snapshots in insertion order.
	List() []domain.Item
	// Get returns a snapshot of one item.
	Get(id string) (domain.Item, error)
	// UpdateStock overwrites an item's current and initial stock counts.
	UpdateStock(id string, currentStock, initialStock int) error
}

type catalogStore struct {
	order []string
	items map[string]*domain.Item
}

// NewCatalogStore creates an in-memory catalog seeded with the given items.
// Later items with a duplicate id overwrite earlier ones in place.
func NewCatalogStore(seed []domain.Item) CatalogStore {
	s := &catalogStore{
		items: make(map[string]*domain.Item, len(seed)),
	}
	for _, it := range seed {
		item := it
		if _, exists := s.items[item.ID]; !exists {
			s.order = append(s.order, item.ID)
		}
		s.items[item.ID] = &item
	}
	return s
}

func (s *catalogStore) List() []domain.Item {
	out := make([]domain.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

func (s *catalogStore) Get(id string) (domain.Item, error) {
	item, exists := s.items[id]
	if !exists {
		return domain.Item{}, ErrItemNotFound
	}
	return *item, nil
}

func (s *catalogStore) UpdateStock(id string, currentStock, initialStock int) error {
	item, exists := s.items[id]
	if !exists {
		return ErrItemNotFound
	}
	item.CurrentStock = currentStock
	item.InitialStock = initialStock
	return nil
}
