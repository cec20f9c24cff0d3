package store

import (
	"errors"

	"github.com/google/uuid"

	"shopfront/internal/domain"
)

var (
	ErrReceiptNotFound = errors.New("receipt not found")
)

// OrderStore is the append-only archive of checkout receipts.
type OrderStore interface {
	// Append archives a receipt and returns its sequential order number,
	// starting from 1.
	Append(r domain.Receipt) int
	// Recent returns up to limit receipts, most recent first. A limit of 0 or
	// less returns the full history.
	Recent(limit int) []domain.Receipt
	// Get returns one archived receipt by id.
	Get(id uuid.UUID) (domain.Receipt, error)
}

type orderStore struct {
	receipts []domain.Receipt
}

// NewOrderStore creates an empty in-memory order history.
func NewOrderStore() OrderStore {
	return &orderStore{}
}

func (s *orderStore) Append(r domain.Receipt) int {
	r.Number = len(s.receipts) + 1
	s.receipts = append(s.receipts, r)
	return r.Number
}

func (s *orderStore) Recent(limit int) []domain.Receipt {
	n := len(s.receipts)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.Receipt, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.receipts[i])
	}
	return out
}

func (s *orderStore) Get(id uuid.UUID) (domain.Receipt, error) {
	for _, r := range s.receipts {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Receipt{}, ErrReceiptNotFound
}
