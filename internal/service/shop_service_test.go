package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/domain"
	"shopfront/internal/pricing"
	"shopfront/internal/store"
)

func newTestShop(t *testing.T, items []domain.Item, tiers pricing.TierTable) (ShopService, store.CatalogStore) {
	t.Helper()
	catalog := store.NewCatalogStore(items)
	if tiers == nil {
		tiers = pricing.DefaultTiers()
	}
	return NewShopService(catalog, store.NewOrderStore(), tiers, DefaultRates()), catalog
}

// flatTiers removes the markup entirely so checkout arithmetic can be
// asserted against round figures.
func flatTiers() pricing.TierTable {
	return pricing.TierTable{{UpperBound: nil, Rate: 0}}
}

func twoItemCatalog() []domain.Item {
	return []domain.Item{
		{ID: "a", Name: "Full Item", BasePrice: decimal.NewFromInt(15), InitialStock: 10, CurrentStock: 10},
		{ID: "b", Name: "Empty Item", BasePrice: decimal.NewFromInt(20), InitialStock: 10, CurrentStock: 0},
	}
}

func TestCatalogView_PricesPerCurrentScarcity(t *testing.T) {
	svc, _ := newTestShop(t, twoItemCatalog(), nil)

	view := svc.CatalogView(context.Background())
	require.Len(t, view, 2)

	// avg ratio 0.5: the full item pays 5%, the sold-out one 20%
	assert.Equal(t, "15.75", view[0].EffectivePrice.StringFixed(2))
	assert.Equal(t, "24.00", view[1].EffectivePrice.StringFixed(2))
}

func TestAddToCart_LocksPriceAndLeavesStockAlone(t *testing.T) {
	svc, catalog := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	line, err := svc.AddToCart(ctx, "a", 3)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "15.75", line.UnitPrice.StringFixed(2))
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "Full Item", line.ItemName)

	// Adding reserves nothing
	item, err := catalog.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 10, item.CurrentStock)
}

func TestAddToCart_Validation(t *testing.T) {
	svc, _ := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "a", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddToCart(ctx, "a", -4)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddToCart(ctx, "ghost", 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestAddToCart_ClampsToAvailableStock(t *testing.T) {
	svc, _ := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	line, err := svc.AddToCart(ctx, "a", 99)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 10, line.Quantity)
}

func TestAddToCart_SoldOutIsNoOpNotError(t *testing.T) {
	svc, _ := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	line, err := svc.AddToCart(ctx, "b", 2)
	require.NoError(t, err)
	assert.Nil(t, line)

	assert.Empty(t, svc.CartView(ctx).Lines)
}

func TestAddToCart_PriceLockSurvivesLaterCatalogChanges(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Name: "A", BasePrice: decimal.NewFromInt(15), InitialStock: 10, CurrentStock: 10},
		{ID: "c", Name: "C", BasePrice: decimal.NewFromInt(20), InitialStock: 10, CurrentStock: 5},
	}
	svc, _ := newTestShop(t, items, nil)
	ctx := context.Background()

	// avg ratio 0.75, c's delta 0.25: 17% markup
	first, err := svc.AddToCart(ctx, "c", 1)
	require.NoError(t, err)
	assert.Equal(t, "23.40", first.UnitPrice.StringFixed(2))

	// Restocking c lifts its ratio to 0.75 and the average to 0.875; its
	// delta drops to 0.125, so a fresh add prices at 12%...
	_, err = svc.Restock(ctx, "c", 10)
	require.NoError(t, err)

	second, err := svc.AddToCart(ctx, "c", 1)
	require.NoError(t, err)
	assert.Equal(t, "22.40", second.UnitPrice.StringFixed(2))

	// ...while the earlier line keeps its locked price.
	lines := svc.CartView(ctx).Lines
	require.Len(t, lines, 2)
	assert.Equal(t, "23.40", lines[0].UnitPrice.StringFixed(2))
}

// Service charge applies to the subtotal, and tax applies to subtotal plus
// service charge. For a subtotal of 100 that is 10.00 service, 9.90 tax and
// a 119.90 grand total.
func TestCheckout_OrderOfOperations(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Name: "A", BasePrice: decimal.NewFromInt(50), InitialStock: 10, CurrentStock: 10},
	}
	svc, _ := newTestShop(t, items, flatTiers())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "a", 2)
	require.NoError(t, err)

	receipt, err := svc.Checkout(ctx)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.Equal(t, "100.00", receipt.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", receipt.ServiceCharge.StringFixed(2))
	assert.Equal(t, "9.90", receipt.Tax.StringFixed(2))
	assert.Equal(t, "119.90", receipt.GrandTotal.StringFixed(2))
}

func TestCheckout_DecrementsStockAndClearsCart(t *testing.T) {
	svc, catalog := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "a", 4)
	require.NoError(t, err)

	receipt, err := svc.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.Number)

	item, err := catalog.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 6, item.CurrentStock)
	assert.Equal(t, 10, item.InitialStock)

	assert.Empty(t, svc.CartView(ctx).Lines)
}

// The cart reserves nothing, so two adds can together exceed available stock.
// Checkout floors the decrement at zero instead of rejecting.
func TestCheckout_FloorsStockAtZero(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Name: "A", BasePrice: decimal.NewFromInt(10), InitialStock: 5, CurrentStock: 5},
	}
	svc, catalog := newTestShop(t, items, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		line, err := svc.AddToCart(ctx, "a", 5)
		require.NoError(t, err)
		require.NotNil(t, line)
		assert.Equal(t, 5, line.Quantity)
	}

	receipt, err := svc.Checkout(ctx)
	require.NoError(t, err)
	require.Len(t, receipt.Lines, 2)

	item, err := catalog.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 0, item.CurrentStock)
}

func TestCheckout_EmptyCartChangesNothing(t *testing.T) {
	svc, catalog := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	_, err := svc.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyCart)

	assert.Empty(t, svc.OrderHistory(ctx, 0))
	item, err := catalog.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 10, item.CurrentStock)
}

func TestClearCart_DoesNotRestoreStock(t *testing.T) {
	svc, catalog := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "a", 3)
	require.NoError(t, err)

	svc.ClearCart(ctx)
	assert.Empty(t, svc.CartView(ctx).Lines)

	// Stock was never touched in the first place
	item, err := catalog.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 10, item.CurrentStock)
}

func TestRestock_RaisesBothStockCounts(t *testing.T) {
	svc, _ := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	item, err := svc.Restock(ctx, "b", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, item.CurrentStock)
	assert.Equal(t, 20, item.InitialStock)

	_, err = svc.Restock(ctx, "b", -1)
	assert.ErrorIs(t, err, ErrNegativeRestock)

	_, err = svc.Restock(ctx, "ghost", 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

// Restocking an untouched item leaves its own ratio alone but moves the
// catalog average, which shifts every other item's markup.
func TestRestock_ShiftsOtherItemsMarkups(t *testing.T) {
	svc, _ := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	before := svc.CatalogView(ctx)
	// b is sold out: r=0 against avg 0.5 means delta 0.5 and 20% markup
	assert.Equal(t, "24.00", before[1].EffectivePrice.StringFixed(2))

	// Restock b: its ratio becomes 0.5, avg becomes 0.75, so b's delta drops
	// to 0.25 and its markup to 17%.
	_, err := svc.Restock(ctx, "b", 10)
	require.NoError(t, err)

	after := svc.CatalogView(ctx)
	assert.Equal(t, "23.40", after[1].EffectivePrice.StringFixed(2))
}

func TestRestock_UntouchedItemRatioIsStable(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Name: "A", BasePrice: decimal.NewFromInt(15), InitialStock: 10, CurrentStock: 10},
	}
	svc, catalog := newTestShop(t, items, nil)
	ctx := context.Background()

	before, err := catalog.Get("a")
	require.NoError(t, err)
	ratioBefore := pricing.RemainingRatio(before)

	_, err = svc.Restock(ctx, "a", 25)
	require.NoError(t, err)

	after, err := catalog.Get("a")
	require.NoError(t, err)
	assert.InDelta(t, ratioBefore, pricing.RemainingRatio(after), 1e-12)
}

func TestOrderHistory_MostRecentFirst(t *testing.T) {
	svc, _ := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.AddToCart(ctx, "a", 1)
		require.NoError(t, err)
		_, err = svc.Checkout(ctx)
		require.NoError(t, err)
	}

	history := svc.OrderHistory(ctx, 2)
	require.Len(t, history, 2)
	assert.Equal(t, 3, history[0].Number)
	assert.Equal(t, 2, history[1].Number)
}

// The cart preview uses the same order of operations as checkout.
func TestCartView_RunningTotalsMatchCheckoutMath(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Name: "A", BasePrice: decimal.NewFromInt(50), InitialStock: 10, CurrentStock: 10},
	}
	svc, _ := newTestShop(t, items, flatTiers())
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "a", 2)
	require.NoError(t, err)

	summary := svc.CartView(ctx)
	assert.Equal(t, "100.00", summary.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", summary.ServiceCharge.StringFixed(2))
	assert.Equal(t, "9.90", summary.Tax.StringFixed(2))
	assert.Equal(t, "119.90", summary.GrandTotal.StringFixed(2))
}

func TestReceipt_Lookup(t *testing.T) {
	svc, _ := newTestShop(t, twoItemCatalog(), nil)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "a", 1)
	require.NoError(t, err)
	receipt, err := svc.Checkout(ctx)
	require.NoError(t, err)

	found, err := svc.Receipt(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.Number, found.Number)
	assert.True(t, found.GrandTotal.Equal(receipt.GrandTotal))
}
