package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item represents one catalog entry.
//
// InitialStock is the denominator for the scarcity calculation. Restocking
// raises CurrentStock and InitialStock together, so freshly added units reset
// the scarcity baseline instead of refilling against the old one.
type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	BasePrice    decimal.Decimal `json:"base_price"`
	InitialStock int             `json:"initial_stock"`
	CurrentStock int             `json:"current_stock"`
}

// PricedItem is an Item together with its current effective unit price.
type PricedItem struct {
	Item
	EffectivePrice decimal.Decimal `json:"effective_price"`
}

// CartLine is one line the customer has added to the open cart.
//
// UnitPrice is locked at add time and never recomputed: the cart total must
// not change when later activity depletes stock further.
type CartLine struct {
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns UnitPrice * Quantity for this line.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Receipt is the immutable archival record of one completed checkout.
type Receipt struct {
	ID            uuid.UUID       `json:"id"`
	Number        int             `json:"number"`
	Lines         []CartLine      `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Tax           decimal.Decimal `json:"tax"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	CreatedAt     time.Time       `json:"created_at"`
}
