package models

import "github.com/eyabmansour/pfe-licence-api/internal/apperrors"

// OrderStatus represents the lifecycle status of an order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderConfirmed      OrderStatus = "CONFIRMED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// ParseOrderStatus rejects unknown status values at the boundary.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return OrderStatus(s), nil
	default:
		return "", apperrors.Validation("unknown order status %q", s)
	}
}

// Mutable reports whether line items may still be added, removed or updated.
// Only PENDING orders are mutable.
func (s OrderStatus) Mutable() bool {
	return s == OrderPending
}

// RestaurantStatus represents the approval workflow status of a restaurant
// and of its most recent request. The two are kept equal by every transition.
type RestaurantStatus string

const (
	RestaurantPending  RestaurantStatus = "PENDING"
	RestaurantApproved RestaurantStatus = "APPROVED"
	RestaurantRejected RestaurantStatus = "REJECTED"
	RestaurantBlocked  RestaurantStatus = "BLOCKED"
)

// ParseRestaurantStatus rejects unknown status values at the boundary.
func ParseRestaurantStatus(s string) (RestaurantStatus, error) {
	switch RestaurantStatus(s) {
	case RestaurantPending, RestaurantApproved, RestaurantRejected, RestaurantBlocked:
		return RestaurantStatus(s), nil
	default:
		return "", apperrors.Validation("unknown restaurant status %q", s)
	}
}

// DiscountType distinguishes percentage discounts from fixed amounts.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "PERCENTAGE"
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

// ParseDiscountType rejects unknown discount types at the boundary.
func ParseDiscountType(s string) (DiscountType, error) {
	switch DiscountType(s) {
	case DiscountPercentage, DiscountFixedAmount:
		return DiscountType(s), nil
	default:
		return "", apperrors.Validation("unknown discount type %q", s)
	}
}

// CustomerType restricts a discount rule to a class of customers.
type CustomerType string

const (
	CustomerNew     CustomerType = "NEW"
	CustomerRegular CustomerType = "REGULAR"
	CustomerVIP     CustomerType = "VIP"
)

// ParseCustomerType rejects unknown customer types at the boundary.
func ParseCustomerType(s string) (CustomerType, error) {
	switch CustomerType(s) {
	case CustomerNew, CustomerRegular, CustomerVIP:
		return CustomerType(s), nil
	default:
		return "", apperrors.Validation("unknown customer type %q", s)
	}
}

// RoleCode identifies a user's role.
type RoleCode string

const (
	RoleClient         RoleCode = "CLIENT"
	RoleRestaurateur   RoleCode = "RESTAURATEUR"
	RoleDeliveryPerson RoleCode = "DELIVERY_PERSON"
	RoleAdministrator  RoleCode = "ADMINISTRATOR"
)

// Payment status values. Payment status is tracked independently of the
// order status and is a free-form field at the data layer.
const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
	PaymentFailed  = "Failed"
)
