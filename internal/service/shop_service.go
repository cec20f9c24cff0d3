package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopfront/internal/domain"
	"shopfront/internal/pricing"
	"shopfront/internal/store"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNegativeRestock = errors.New("restock units must not be negative")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrReceiptNotFound = errors.New("receipt not found")
)

// Rates holds the compulsory checkout charges. The service charge applies to
// the subtotal; tax applies to subtotal plus service charge.
type Rates struct {
	ServiceCharge decimal.Decimal
	Tax           decimal.Decimal
}

// DefaultRates returns the compulsory 10% service charge and 9% tax.
func DefaultRates() Rates {
	return Rates{
		ServiceCharge: decimal.NewFromFloat(0.10),
		Tax:           decimal.NewFromFloat(0.09),
	}
}

// CartSummary is the open cart plus its running totals, computed with the
// same order of operations checkout uses.
type CartSummary struct {
	Lines         []domain.CartLine
	Subtotal      decimal.Decimal
	ServiceCharge decimal.Decimal
	Tax           decimal.Decimal
	GrandTotal    decimal.Decimal
}

// ShopService defines the storefront business operations shared by the
// customer and cashier surfaces.
type ShopService interface {
	CatalogView(ctx context.Context) []domain.PricedItem
	AddToCart(ctx context.Context, itemID string, quantity int) (*domain.CartLine, error)
	CartView(ctx context.Context) CartSummary
	ClearCart(ctx context.Context)
	Checkout(ctx context.Context) (*domain.Receipt, error)
	Restock(ctx context.Context, itemID string, units int) (domain.Item, error)
	OrderHistory(ctx context.Context, limit int) []domain.Receipt
	Receipt(ctx context.Context, id uuid.UUID) (domain.Receipt, error)
}

type shopService struct {
	// One mutex over catalog, cart and history: a locked price must never be
	// computed against a stale catalog average, and checkout's
	// read-decrement-archive must be atomic.
	mu sync.Mutex

	catalog store.CatalogStore
	orders  store.OrderStore
	cart    []domain.CartLine
	tiers   pricing.TierTable
	rates   Rates
}

// NewShopService creates a new instance of ShopService over the given stores.
func NewShopService(catalog store.CatalogStore, orders store.OrderStore, tiers pricing.TierTable, rates Rates) ShopService {
	return &shopService{
		catalog: catalog,
		orders:  orders,
		tiers:   tiers,
		rates:   rates,
	}
}

// CatalogView returns the catalog in insertion order with each item's current
// effective price. Prices are computed fresh on every call.
func (s *shopService) CatalogView(ctx context.Context) []domain.PricedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.catalog.List()
	avg := pricing.AverageRemainingRatio(items)

	view := make([]domain.PricedItem, 0, len(items))
	for _, it := range items {
		view = append(view, domain.PricedItem{
			Item:           it,
			EffectivePrice: pricing.EffectiveUnitPrice(it, avg, s.tiers),
		})
	}
	return view
}

// AddToCart appends a cart line with the item's effective price locked at
// this instant. The quantity is clamped down to the item's current stock; a
// clamp to zero is a no-op and returns a nil line. Stock is not decremented
// here: the cart reserves nothing until checkout.
func (s *shopService) AddToCart(ctx context.Context, itemID string, quantity int) (*domain.CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.catalog.Get(itemID)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	if quantity > item.CurrentStock {
		quantity = item.CurrentStock
	}
	if quantity == 0 {
		return nil, nil
	}

	avg := pricing.AverageRemainingRatio(s.catalog.List())
	line := domain.CartLine{
		ItemID:    item.ID,
		ItemName:  item.Name,
		UnitPrice: pricing.EffectiveUnitPrice(item, avg, s.tiers),
		Quantity:  quantity,
	}
	s.cart = append(s.cart, line)
	return &line, nil
}

// CartView returns the open cart and its running totals.
func (s *shopService) CartView(ctx context.Context) CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summarize()
}

// ClearCart empties the open cart. Stock is untouched because the cart never
// reserved any.
func (s *shopService) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

// Checkout finalizes the open cart into an archived receipt. Each line's
// quantity is deducted from catalog stock, floored at zero, and the cart is
// reset to empty. Checkout of an empty cart returns ErrEmptyCart and changes
// nothing.
func (s *shopService) Checkout(ctx context.Context) (*domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return nil, ErrEmptyCart
	}

	for _, line := range s.cart {
		item, err := s.catalog.Get(line.ItemID)
		if err != nil {
			// The catalog is fixed at seed time, so lines always resolve.
			continue
		}
		remaining := item.CurrentStock - line.Quantity
		if remaining < 0 {
			remaining = 0
		}
		if err := s.catalog.UpdateStock(item.ID, remaining, item.InitialStock); err != nil {
			return nil, fmt.Errorf("failed to deduct stock for %s: %w", item.ID, err)
		}
	}

	summary := s.summarize()
	receipt := domain.Receipt{
		ID:            uuid.New(),
		Lines:         summary.Lines,
		Subtotal:      summary.Subtotal,
		ServiceCharge: summary.ServiceCharge,
		Tax:           summary.Tax,
		GrandTotal:    summary.GrandTotal,
		CreatedAt:     time.Now().UTC(),
	}
	receipt.Number = s.orders.Append(receipt)

	s.cart = nil
	return &receipt, nil
}

// Restock adds units to an item's current stock and raises its initial stock
// by the same amount, rebasing the scarcity baseline for the fresh supply.
func (s *shopService) Restock(ctx context.Context, itemID string, units int) (domain.Item, error) {
	if units < 0 {
		return domain.Item{}, ErrNegativeRestock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.catalog.Get(itemID)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return domain.Item{}, ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("failed to load item: %w", err)
	}

	item.CurrentStock += units
	item.InitialStock += units
	if err := s.catalog.UpdateStock(item.ID, item.CurrentStock, item.InitialStock); err != nil {
		return domain.Item{}, fmt.Errorf("failed to restock %s: %w", item.ID, err)
	}
	return item, nil
}

// OrderHistory returns up to limit archived receipts, most recent first.
func (s *shopService) OrderHistory(ctx context.Context, limit int) []domain.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.Recent(limit)
}

// Receipt returns one archived receipt by id.
func (s *shopService) Receipt(ctx context.Context, id uuid.UUID) (domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	receipt, err := s.orders.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrReceiptNotFound) {
			return domain.Receipt{}, ErrReceiptNotFound
		}
		return domain.Receipt{}, fmt.Errorf("failed to load receipt: %w", err)
	}
	return receipt, nil
}

// summarize computes the cart totals. The order of operations is fixed:
// service charge on the subtotal, then tax on subtotal plus service charge,
// each rounded to cents on its own. The grand total is the sum of the already
// rounded parts and is not re-rounded. Caller must hold s.mu.
func (s *shopService) summarize() CartSummary {
	lines := make([]domain.CartLine, len(s.cart))
	copy(lines, s.cart)

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	serviceCharge := subtotal.Mul(s.rates.ServiceCharge).Round(2)
	taxable := subtotal.Add(serviceCharge)
	tax := taxable.Mul(s.rates.Tax).Round(2)

	return CartSummary{
		Lines:         lines,
		Subtotal:      subtotal,
		ServiceCharge: serviceCharge,
		Tax:           tax,
		GrandTotal:    taxable.Add(tax),
	}
}
