// Package pricing computes order totals from order lines and the discount
// rules active at computation time. The engine is pure: it reads through
// the catalog and discount interfaces and never persists anything.
package pricing

import (
	"context"
	"time"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// CatalogReader supplies the base prices of menu items.
type CatalogReader interface {
	MenuItemsByIDs(ctx context.Context, ids []int64) ([]models.MenuItem, error)
}

// DiscountReader supplies the discount rules relevant to pricing.
// RulesForMenuItem returns the applicability rules linked to one item,
// joined with their parent discount. ActiveOrderDiscounts returns the
// discounts with no item linkage that apply to the order subtotal.
type DiscountReader interface {
	RulesForMenuItem(ctx context.Context, menuItemID int64, now time.Time) ([]models.ItemDiscount, error)
	ActiveOrderDiscounts(ctx context.Context, now time.Time) ([]models.Discount, error)
}

// Engine computes order totals.
type Engine struct {
	catalog   CatalogReader
	discounts DiscountReader
	now       func() time.Time
}

// New creates a pricing engine over the given readers.
func New(catalog CatalogReader, discounts DiscountReader) *Engine {
	return &Engine{
		catalog:   catalog,
		discounts: discounts,
		now:       time.Now,
	}
}

// ComputeTotal derives the total price for the given lines.
//
// Per line, each matching rule is applied to the running unit price in
// fetch order, so later rules compound on the already-discounted price.
// The unit price is not clamped at zero: misconfigured rule sets can drive
// it negative, and the engine preserves that rather than hiding it.
// A second pass applies every active order-level discount to the subtotal.
func (e *Engine) ComputeTotal(ctx context.Context, lines []models.OrderLine) (float64, error) {
	if len(lines) == 0 {
		return 0, nil
	}

	now := e.now()

	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if !seen[line.MenuItemID] {
			seen[line.MenuItemID] = true
			ids = append(ids, line.MenuItemID)
		}
	}

	items, err := e.catalog.MenuItemsByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	priceByID := make(map[int64]float64, len(items))
	for _, item := range items {
		priceByID[item.ID] = item.Price
	}

	var total float64
	for _, line := range lines {
		basePrice, ok := priceByID[line.MenuItemID]
		if !ok {
			return 0, apperrors.NotFound("menu item %d not found", line.MenuItemID)
		}

		rules, err := e.discounts.RulesForMenuItem(ctx, line.MenuItemID, now)
		if err != nil {
			return 0, err
		}

		unitPrice := basePrice
		for _, d := range rules {
			if !ruleApplies(&d, line.Quantity, basePrice, now) {
				continue
			}
			unitPrice = apply(unitPrice, d.Discount.Type, d.Discount.Value)
		}

		total += unitPrice * float64(line.Quantity)
	}

	orderDiscounts, err := e.discounts.ActiveOrderDiscounts(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, d := range orderDiscounts {
		if !d.Active || !d.InWindow(now) {
			continue
		}
		total = apply(total, d.Type, d.Value)
	}

	return total, nil
}

// ruleApplies checks the gates of one rule against one line: the parent
// discount must be active and in window, the rule's own window must
// contain now, and the minimum-quantity and minimum-amount thresholds are
// checked against the line's quantity and pre-discount amount.
func ruleApplies(d *models.ItemDiscount, quantity int, basePrice float64, now time.Time) bool {
	if !d.Discount.Active || !d.Discount.InWindow(now) {
		return false
	}
	if !d.Rule.InWindow(now) {
		return false
	}
	if d.Rule.MinQuantity != nil && quantity < *d.Rule.MinQuantity {
		return false
	}
	if d.Rule.MinAmount != nil && basePrice*float64(quantity) < *d.Rule.MinAmount {
		return false
	}
	return true
}

func apply(price float64, discountType models.DiscountType, value float64) float64 {
	switch discountType {
	case models.DiscountPercentage:
		return price - price*(value/100)
	case models.DiscountFixedAmount:
		return price - value
	default:
		return price
	}
}
