// Package pricing implements the scarcity-based dynamic pricing engine.
//
// Each item has a remaining ratio (current stock over initial stock). Items
// that are more depleted than the catalog average get a larger markup on
// their base price, looked up from an ordered tier table. All functions are
// pure; the caller decides when to snapshot the catalog.
package pricing

import (
	"github.com/shopspring/decimal"

	"shopfront/internal/domain"
)

// Tier maps a scarcity delta range to a markup rate. UpperBound is inclusive;
// a nil UpperBound means the tier is open-ended and catches everything above
// the previous tier.
type Tier struct {
	UpperBound *float64
	Rate       float64
}

// TierTable is an ordered list of tiers, evaluated first match wins.
type TierTable []Tier

func bound(v float64) *float64 { return &v }

// DefaultTiers returns the stock markup table: 5% for items at or below
// average depletion, rising to 20% for items far scarcer than average.
func DefaultTiers() TierTable {
	return TierTable{
		{UpperBound: bound(0.00), Rate: 0.05},
		{UpperBound: bound(0.10), Rate: 0.08},
		{UpperBound: bound(0.20), Rate: 0.12},
		{UpperBound: bound(0.30), Rate: 0.17},
		{UpperBound: nil, Rate: 0.20},
	}
}

// RemainingRatio returns the fraction of an item's initial stock still unsold,
// in [0,1]. An item that was never stocked has ratio 0.
func RemainingRatio(item domain.Item) float64 {
	if item.InitialStock <= 0 {
		return 0
	}
	r := float64(item.CurrentStock) / float64(item.InitialStock)
	if r < 0 {
		return 0
	}
	return r
}

// AverageRemainingRatio returns the arithmetic mean of RemainingRatio over
// the catalog. An empty catalog averages to 0. The average is recomputed on
// every pricing query so stock changes take effect immediately.
func AverageRemainingRatio(items []domain.Item) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += RemainingRatio(it)
	}
	return sum / float64(len(items))
}

// ScarcityDelta returns avgRatio minus the item's own remaining ratio.
// Positive means the item is more depleted than the catalog average.
func ScarcityDelta(item domain.Item, avgRatio float64) float64 {
	return avgRatio - RemainingRatio(item)
}

// MarkupFor returns the markup rate for a scarcity delta. Boundary values
// belong to the lower tier: a delta of exactly 0.10 matches the tier whose
// inclusive upper bound is 0.10.
func (t TierTable) MarkupFor(delta float64) float64 {
	for _, tier := range t {
		if tier.UpperBound == nil || delta <= *tier.UpperBound {
			return tier.Rate
		}
	}
	if len(t) == 0 {
		return 0
	}
	// All bounds exceeded and no open-ended tier: the last tier catches it.
	return t[len(t)-1].Rate
}

// EffectiveUnitPrice returns base_price * (1 + markup), rounded half-up to
// two decimal places. Rounding happens here and nowhere earlier.
func EffectiveUnitPrice(item domain.Item, avgRatio float64, tiers TierTable) decimal.Decimal {
	markup := tiers.MarkupFor(ScarcityDelta(item, avgRatio))
	return item.BasePrice.Mul(decimal.NewFromFloat(1 + markup)).Round(2)
}
