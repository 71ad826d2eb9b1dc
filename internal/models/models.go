package models

import "time"

// User is the identity read model the core needs for ownership and role
// checks. Registration, passwords and sessions live outside this service.
type User struct {
	ID       int64    `json:"id" db:"id"`
	Username string   `json:"username" db:"username"`
	Email    string   `json:"email" db:"email"`
	Role     RoleCode `json:"role" db:"role_code"`
}

// MenuItem is one orderable item of a restaurant's catalog.
type MenuItem struct {
	ID           int64   `json:"id" db:"id"`
	RestaurantID int64   `json:"restaurant_id" db:"restaurant_id"`
	Name         string  `json:"name" db:"name"`
	Description  *string `json:"description,omitempty" db:"description"`
	Price        float64 `json:"price" db:"price"`
}

// OrderLine is one (menu item, quantity) entry within an order.
// Quantity is always >= 1; a line is removed entirely, never kept at zero.
type OrderLine struct {
	ID         int64 `json:"id,omitempty" db:"id"`
	OrderID    int64 `json:"order_id,omitempty" db:"order_id"`
	MenuItemID int64 `json:"menu_item_id" db:"menu_item_id"`
	Quantity   int   `json:"quantity" db:"quantity"`
}

// Order is a customer order against one restaurant. TotalPrice is derived
// from the lines and the active discounts and is recomputed after every
// committed mutation.
type Order struct {
	ID                   int64       `json:"id" db:"id"`
	UserID               int64       `json:"user_id" db:"user_id"`
	RestaurantID         int64       `json:"restaurant_id" db:"restaurant_id"`
	Lines                []OrderLine `json:"items"`
	TotalPrice           float64     `json:"total_price" db:"total_price"`
	Status               OrderStatus `json:"status" db:"status"`
	DeliveryAddress      *string     `json:"delivery_address,omitempty" db:"delivery_address"`
	DeliveryInstructions *string     `json:"delivery_instructions,omitempty" db:"delivery_instructions"`
	DeliveryMethod       *string     `json:"delivery_method,omitempty" db:"delivery_method"`
	CustomerNotes        *string     `json:"customer_notes,omitempty" db:"customer_notes"`
	DiscountCode         *string     `json:"discount_code,omitempty" db:"discount_code"`
	PaymentStatus        string      `json:"payment_status" db:"payment_status"`
	PaymentMethod        *string     `json:"payment_method,omitempty" db:"payment_method"`
	CreatedAt            time.Time   `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at,omitempty" db:"updated_at"`
}

// Discount is a promotional rule. A discount applies to a menu item only
// through an explicit DiscountRule row; a discount with no rules is an
// order-level discount applied to the order subtotal.
type Discount struct {
	ID           int64        `json:"id" db:"id"`
	RestaurantID *int64       `json:"restaurant_id,omitempty" db:"restaurant_id"`
	Name         string       `json:"name" db:"name"`
	Description  *string      `json:"description,omitempty" db:"description"`
	Type         DiscountType `json:"type" db:"type"`
	Value        float64      `json:"value" db:"value"`
	StartsAt     *time.Time   `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt       *time.Time   `json:"ends_at,omitempty" db:"ends_at"`
	Active       bool         `json:"is_active" db:"is_active"`
	CreatedAt    time.Time    `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at,omitempty" db:"updated_at"`
}

// InWindow reports whether the discount's validity window contains now.
// A missing bound leaves that side open.
func (d *Discount) InWindow(now time.Time) bool {
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		return false
	}
	return true
}

// DiscountRule links a discount to one menu item, with optional
// minimum-quantity, minimum-amount, customer-type and window gating.
type DiscountRule struct {
	ID           int64         `json:"id,omitempty" db:"id"`
	DiscountID   int64         `json:"discount_id" db:"discount_id"`
	MenuItemID   int64         `json:"menu_item_id" db:"menu_item_id"`
	MinQuantity  *int          `json:"min_quantity,omitempty" db:"min_quantity"`
	MinAmount    *float64      `json:"min_amount,omitempty" db:"min_amount"`
	CustomerType *CustomerType `json:"customer_type,omitempty" db:"customer_type"`
	StartsAt     *time.Time    `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt       *time.Time    `json:"ends_at,omitempty" db:"ends_at"`
}

// InWindow reports whether the rule's own validity window contains now.
func (r *DiscountRule) InWindow(now time.Time) bool {
	if r.StartsAt != nil && now.Before(*r.StartsAt) {
		return false
	}
	if r.EndsAt != nil && now.After(*r.EndsAt) {
		return false
	}
	return true
}

// ItemDiscount joins a discount to one of its applicability rules; it is
// the read model the pricing engine consumes per menu item.
type ItemDiscount struct {
	Discount Discount     `json:"discount"`
	Rule     DiscountRule `json:"rule"`
}

// Restaurant is a restaurant profile moving through the approval workflow.
type Restaurant struct {
	ID          int64            `json:"id" db:"id"`
	OwnerID     int64            `json:"owner_id" db:"owner_id"`
	Name        string           `json:"name" db:"name"`
	Address     string           `json:"address" db:"address"`
	CuisineType string           `json:"cuisine_type" db:"cuisine_type"`
	Description *string          `json:"description,omitempty" db:"description"`
	Status      RestaurantStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at,omitempty" db:"updated_at"`
}

// RestaurantRequest is one approval request for a restaurant. Its status
// mirrors the restaurant's status after every workflow transition.
type RestaurantRequest struct {
	ID           int64            `json:"id" db:"id"`
	RestaurantID int64            `json:"restaurant_id" db:"restaurant_id"`
	Status       RestaurantStatus `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at,omitempty" db:"updated_at"`
}
