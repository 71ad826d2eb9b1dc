package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
)

func TestOrderStatusMutable(t *testing.T) {
	assert.True(t, OrderPending.Mutable())

	for _, status := range []OrderStatus{
		OrderConfirmed, OrderPreparing, OrderOutForDelivery, OrderDelivered, OrderCancelled,
	} {
		assert.False(t, status.Mutable(), string(status))
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("OUT_FOR_DELIVERY")
	require.NoError(t, err)
	assert.Equal(t, OrderOutForDelivery, status)

	_, err = ParseOrderStatus("SHIPPED")
	assert.True(t, apperrors.IsValidation(err))
}

func TestParseRestaurantStatus(t *testing.T) {
	status, err := ParseRestaurantStatus("BLOCKED")
	require.NoError(t, err)
	assert.Equal(t, RestaurantBlocked, status)

	_, err = ParseRestaurantStatus("CLOSED")
	assert.True(t, apperrors.IsValidation(err))
}

func TestParseDiscountType(t *testing.T) {
	dt, err := ParseDiscountType("FIXED_AMOUNT")
	require.NoError(t, err)
	assert.Equal(t, DiscountFixedAmount, dt)

	_, err = ParseDiscountType("BOGOF")
	assert.True(t, apperrors.IsValidation(err))
}

func TestParseCustomerType(t *testing.T) {
	ct, err := ParseCustomerType("VIP")
	require.NoError(t, err)
	assert.Equal(t, CustomerVIP, ct)

	_, err = ParseCustomerType("GOLD")
	assert.True(t, apperrors.IsValidation(err))
}

func TestDiscountWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	open := Discount{}
	assert.True(t, open.InWindow(now), "missing bounds leave the window open")

	active := Discount{StartsAt: &before, EndsAt: &after}
	assert.True(t, active.InWindow(now))

	expired := Discount{EndsAt: &before}
	assert.False(t, expired.InWindow(now))

	future := Discount{StartsAt: &after}
	assert.False(t, future.InWindow(now))
}

func TestDiscountRuleWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)

	rule := DiscountRule{EndsAt: &before}
	assert.False(t, rule.InWindow(now))

	assert.True(t, (&DiscountRule{}).InWindow(now))
}
