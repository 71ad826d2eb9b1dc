package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

type fakeCatalog struct {
	items map[int64]models.MenuItem
}

func (f *fakeCatalog) MenuItemsByIDs(_ context.Context, ids []int64) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeDiscounts struct {
	rules          map[int64][]models.ItemDiscount
	orderDiscounts []models.Discount
}

func (f *fakeDiscounts) RulesForMenuItem(_ context.Context, menuItemID int64, _ time.Time) ([]models.ItemDiscount, error) {
	return f.rules[menuItemID], nil
}

func (f *fakeDiscounts) ActiveOrderDiscounts(_ context.Context, _ time.Time) ([]models.Discount, error) {
	return f.orderDiscounts, nil
}

func newEngine(catalog *fakeCatalog, discounts *fakeDiscounts, now time.Time) *Engine {
	e := New(catalog, discounts)
	e.now = func() time.Time { return now }
	return e
}

func itemDiscount(discountType models.DiscountType, value float64, active bool) models.ItemDiscount {
	return models.ItemDiscount{
		Discount: models.Discount{Type: discountType, Value: value, Active: active},
	}
}

func TestComputeTotal(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	earlier := now.Add(-24 * time.Hour)
	later := now.Add(24 * time.Hour)

	tests := []struct {
		name      string
		items     map[int64]models.MenuItem
		rules     map[int64][]models.ItemDiscount
		lines     []models.OrderLine
		wantTotal float64
	}{
		{
			name:      "no discounts",
			items:     map[int64]models.MenuItem{1: {ID: 1, Price: 12.50}},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 2}},
			wantTotal: 25.00,
		},
		{
			name:  "percentage discount",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 10.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {itemDiscount(models.DiscountPercentage, 20, true)},
			},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 3}},
			wantTotal: 24.00,
		},
		{
			name:  "fixed amount discount",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 10.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {itemDiscount(models.DiscountFixedAmount, 3.00, true)},
			},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 2}},
			wantTotal: 14.00,
		},
		{
			name:  "inactive discount ignored",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 10.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {itemDiscount(models.DiscountPercentage, 50, false)},
			},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 1}},
			wantTotal: 10.00,
		},
		{
			name:  "expired discount ignored",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 10.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {{Discount: models.Discount{Type: models.DiscountPercentage, Value: 50, Active: true, StartsAt: &past, EndsAt: &earlier}}},
			},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 1}},
			wantTotal: 10.00,
		},
		{
			name:  "future discount ignored",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 10.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {{Discount: models.Discount{Type: models.DiscountPercentage, Value: 50, Active: true, StartsAt: &later}}},
			},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 1}},
			wantTotal: 10.00,
		},
		{
			name:  "rules compound in fetch order",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 100.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {
					itemDiscount(models.DiscountPercentage, 10, true),
					itemDiscount(models.DiscountFixedAmount, 5.00, true),
				},
			},
			lines: []models.OrderLine{{MenuItemID: 1, Quantity: 1}},
			// 100 -> 90 -> 85
			wantTotal: 85.00,
		},
		{
			name:  "over-discounting goes negative without clamping",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 5.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {itemDiscount(models.DiscountFixedAmount, 8.00, true)},
			},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 2}},
			wantTotal: -6.00,
		},
		{
			name:  "min quantity gate",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 10.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {{
					Discount: models.Discount{Type: models.DiscountPercentage, Value: 50, Active: true},
					Rule:     models.DiscountRule{MinQuantity: intPtr(3)},
				}},
			},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 2}},
			wantTotal: 20.00,
		},
		{
			name:  "min amount gate met",
			items: map[int64]models.MenuItem{1: {ID: 1, Price: 10.00}},
			rules: map[int64][]models.ItemDiscount{
				1: {{
					Discount: models.Discount{Type: models.DiscountPercentage, Value: 10, Active: true},
					Rule:     models.DiscountRule{MinAmount: floatPtr(20.00)},
				}},
			},
			lines:     []models.OrderLine{{MenuItemID: 1, Quantity: 2}},
			wantTotal: 18.00,
		},
		{
			name: "multiple lines accumulate",
			items: map[int64]models.MenuItem{
				1: {ID: 1, Price: 10.00},
				2: {ID: 2, Price: 4.50},
			},
			rules: map[int64][]models.ItemDiscount{
				1: {itemDiscount(models.DiscountPercentage, 20, true)},
			},
			lines: []models.OrderLine{
				{MenuItemID: 1, Quantity: 3},
				{MenuItemID: 2, Quantity: 2},
			},
			wantTotal: 33.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(&fakeCatalog{items: tt.items}, &fakeDiscounts{rules: tt.rules}, now)
			total, err := engine.ComputeTotal(context.Background(), tt.lines)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantTotal, total, 1e-9)
		})
	}
}

func TestComputeTotalOrderLevelDiscounts(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-24 * time.Hour)

	catalog := &fakeCatalog{items: map[int64]models.MenuItem{1: {ID: 1, Price: 50.00}}}
	discounts := &fakeDiscounts{
		orderDiscounts: []models.Discount{
			{Type: models.DiscountPercentage, Value: 10, Active: true},
			{Type: models.DiscountFixedAmount, Value: 5.00, Active: true},
			{Type: models.DiscountPercentage, Value: 50, Active: false},
			{Type: models.DiscountPercentage, Value: 50, Active: true, EndsAt: &earlier},
		},
	}

	engine := newEngine(catalog, discounts, now)
	total, err := engine.ComputeTotal(context.Background(), []models.OrderLine{{MenuItemID: 1, Quantity: 2}})
	require.NoError(t, err)
	// 100 -> 90 after 10%, -> 85 after fixed 5; inactive and expired skipped.
	assert.InDelta(t, 85.00, total, 1e-9)
}

func TestComputeTotalUnknownItem(t *testing.T) {
	engine := newEngine(&fakeCatalog{items: map[int64]models.MenuItem{}}, &fakeDiscounts{}, time.Now())
	_, err := engine.ComputeTotal(context.Background(), []models.OrderLine{{MenuItemID: 99, Quantity: 1}})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestComputeTotalEmptyLines(t *testing.T) {
	engine := newEngine(&fakeCatalog{}, &fakeDiscounts{}, time.Now())
	total, err := engine.ComputeTotal(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
