// Package discounts manages promotional discounts and their applicability
// rules. Rules gate a discount to specific menu items with optional
// minimum-quantity, minimum-amount, customer-type and window conditions.
package discounts

import (
	"context"
	"time"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// Repository persists discounts together with their rules. SaveRules
// replaces a discount's rule set atomically.
type Repository interface {
	CreateDiscount(ctx context.Context, discount *models.Discount, rules []models.DiscountRule) error
	GetDiscount(ctx context.Context, id int64) (*models.Discount, []models.DiscountRule, error)
	UpdateDiscount(ctx context.Context, discount *models.Discount, rules []models.DiscountRule) error
	DeleteDiscount(ctx context.Context, id int64) error
	ListDiscounts(ctx context.Context, restaurantID *int64) ([]models.Discount, error)
	RulesForMenuItem(ctx context.Context, menuItemID int64, now time.Time) ([]models.ItemDiscount, error)
	ActiveOrderDiscounts(ctx context.Context, now time.Time) ([]models.Discount, error)
}

// Catalog lists a restaurant's menu, used for bulk rule materialization.
type Catalog interface {
	ListMenuItems(ctx context.Context, restaurantID int64) ([]models.MenuItem, error)
}

// Invalidator drops cached discount reads after a write. A nil
// Invalidator disables invalidation.
type Invalidator interface {
	InvalidateDiscounts(ctx context.Context) error
}

// RuleInput carries caller-supplied rule fields for one menu item.
type RuleInput struct {
	MenuItemID   int64                `json:"menu_item_id"`
	MinQuantity  *int                 `json:"min_quantity,omitempty"`
	MinAmount    *float64             `json:"min_amount,omitempty"`
	CustomerType *models.CustomerType `json:"customer_type,omitempty"`
	StartsAt     *time.Time           `json:"starts_at,omitempty"`
	EndsAt       *time.Time           `json:"ends_at,omitempty"`
}

// DiscountInput carries caller-supplied discount fields.
type DiscountInput struct {
	RestaurantID *int64              `json:"restaurant_id,omitempty"`
	Name         string              `json:"name"`
	Description  *string             `json:"description,omitempty"`
	Type         models.DiscountType `json:"type"`
	Value        float64             `json:"value"`
	StartsAt     *time.Time          `json:"starts_at,omitempty"`
	EndsAt       *time.Time          `json:"ends_at,omitempty"`
	Active       *bool               `json:"is_active,omitempty"`
	Rules        []RuleInput         `json:"rules,omitempty"`
}

// Service manages discounts and rules.
type Service struct {
	repo    Repository
	catalog Catalog
	cache   Invalidator
	logger  *logger.Logger
}

// NewService creates a discount manager. cache may be nil.
func NewService(repo Repository, catalog Catalog, cache Invalidator, log *logger.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, cache: cache, logger: log}
}

func validateDiscount(in DiscountInput) error {
	if in.Name == "" {
		return apperrors.Validation("discount name is required")
	}
	if _, err := models.ParseDiscountType(string(in.Type)); err != nil {
		return err
	}
	if in.Value < 0 {
		return apperrors.Validation("discount value must not be negative")
	}
	if in.Type == models.DiscountPercentage && in.Value > 100 {
		return apperrors.Validation("percentage discount must not exceed 100")
	}
	if err := validateWindow(in.StartsAt, in.EndsAt); err != nil {
		return err
	}
	for _, rule := range in.Rules {
		if rule.MenuItemID <= 0 {
			return apperrors.Validation("rule menu_item_id must be positive")
		}
		if rule.MinQuantity != nil && *rule.MinQuantity < 1 {
			return apperrors.Validation("rule min_quantity must be at least 1")
		}
		if rule.MinAmount != nil && *rule.MinAmount < 0 {
			return apperrors.Validation("rule min_amount must not be negative")
		}
		if rule.CustomerType != nil {
			if _, err := models.ParseCustomerType(string(*rule.CustomerType)); err != nil {
				return err
			}
		}
		if err := validateWindow(rule.StartsAt, rule.EndsAt); err != nil {
			return err
		}
	}
	return nil
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return apperrors.Validation("validity window must start before it ends")
	}
	return nil
}

func buildRules(inputs []RuleInput) []models.DiscountRule {
	rules := make([]models.DiscountRule, 0, len(inputs))
	for _, in := range inputs {
		rules = append(rules, models.DiscountRule{
			MenuItemID:   in.MenuItemID,
			MinQuantity:  in.MinQuantity,
			MinAmount:    in.MinAmount,
			CustomerType: in.CustomerType,
			StartsAt:     in.StartsAt,
			EndsAt:       in.EndsAt,
		})
	}
	return rules
}

// CreateDiscount validates and stores a discount with its rules.
func (s *Service) CreateDiscount(ctx context.Context, in DiscountInput) (*models.Discount, error) {
	if err := validateDiscount(in); err != nil {
		return nil, err
	}

	discount := &models.Discount{
		RestaurantID: in.RestaurantID,
		Name:         in.Name,
		Description:  in.Description,
		Type:         in.Type,
		Value:        in.Value,
		StartsAt:     in.StartsAt,
		EndsAt:       in.EndsAt,
		Active:       true,
	}
	if in.Active != nil {
		discount.Active = *in.Active
	}

	if err := s.repo.CreateDiscount(ctx, discount, buildRules(in.Rules)); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("discount_created", "Discount created", "", map[string]interface{}{
		"discount_id": discount.ID,
		"type":        string(discount.Type),
		"value":       discount.Value,
		"rules":       len(in.Rules),
	})
	return discount, nil
}

// UpdateDiscount validates and rewrites a discount; its rule set is
// replaced with the supplied one.
func (s *Service) UpdateDiscount(ctx context.Context, id int64, in DiscountInput) (*models.Discount, error) {
	if err := validateDiscount(in); err != nil {
		return nil, err
	}

	existing, _, err := s.repo.GetDiscount(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.RestaurantID = in.RestaurantID
	existing.Name = in.Name
	existing.Description = in.Description
	existing.Type = in.Type
	existing.Value = in.Value
	existing.StartsAt = in.StartsAt
	existing.EndsAt = in.EndsAt
	if in.Active != nil {
		existing.Active = *in.Active
	}

	if err := s.repo.UpdateDiscount(ctx, existing, buildRules(in.Rules)); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return existing, nil
}

// DeleteDiscount removes a discount and its rules.
func (s *Service) DeleteDiscount(ctx context.Context, id int64) error {
	if err := s.repo.DeleteDiscount(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// GetDiscount loads one discount with its rules.
func (s *Service) GetDiscount(ctx context.Context, id int64) (*models.Discount, []models.DiscountRule, error) {
	return s.repo.GetDiscount(ctx, id)
}

// ListDiscounts returns discounts, optionally scoped to one restaurant.
func (s *Service) ListDiscounts(ctx context.Context, restaurantID *int64) ([]models.Discount, error) {
	return s.repo.ListDiscounts(ctx, restaurantID)
}

// ApplyToRestaurant materializes one rule per menu item of the
// restaurant, so the discount covers the whole menu. Existing rules are
// replaced.
func (s *Service) ApplyToRestaurant(ctx context.Context, discountID, restaurantID int64) (*models.Discount, error) {
	discount, _, err := s.repo.GetDiscount(ctx, discountID)
	if err != nil {
		return nil, err
	}

	items, err := s.catalog.ListMenuItems(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.Validation("restaurant %d has no menu items to discount", restaurantID)
	}

	rules := make([]models.DiscountRule, 0, len(items))
	for _, item := range items {
		rules = append(rules, models.DiscountRule{
			DiscountID: discountID,
			MenuItemID: item.ID,
		})
	}

	discount.RestaurantID = &restaurantID
	if err := s.repo.UpdateDiscount(ctx, discount, rules); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("discount_applied_to_restaurant", "Discount applied to whole menu", "", map[string]interface{}{
		"discount_id":   discountID,
		"restaurant_id": restaurantID,
		"menu_items":    len(items),
	})
	return discount, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDiscounts(ctx); err != nil {
		s.logger.Error("cache_invalidate_failed", "Failed to invalidate discount cache", "", err, nil)
	}
}
