// Package catalog manages restaurant menus. Its read side feeds order
// validation and pricing; its write side is owner-scoped item management.
package catalog

import (
	"context"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// Repository persists menu items.
type Repository interface {
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id int64) error
	ListMenuItems(ctx context.Context, restaurantID int64) ([]models.MenuItem, error)
	MenuItemsByIDs(ctx context.Context, ids []int64) ([]models.MenuItem, error)
}

// Restaurants resolves restaurant ownership for write authorization.
type Restaurants interface {
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
}

// ItemInput carries caller-supplied menu item fields.
type ItemInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// Service manages menu items.
type Service struct {
	repo        Repository
	restaurants Restaurants
}

// NewService creates a catalog manager.
func NewService(repo Repository, restaurants Restaurants) *Service {
	return &Service{repo: repo, restaurants: restaurants}
}

func validateItem(in ItemInput) error {
	if in.Name == "" {
		return apperrors.Validation("menu item name is required")
	}
	if in.Price < 0 {
		return apperrors.Validation("menu item price must not be negative")
	}
	return nil
}

func (s *Service) authorizeOwner(ctx context.Context, restaurantID, callerID int64) error {
	restaurant, err := s.restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return err
	}
	if restaurant.OwnerID != callerID {
		return apperrors.Forbidden("you do not have permission to manage this restaurant's menu")
	}
	return nil
}

// CreateMenuItem adds an item to the caller's restaurant menu.
func (s *Service) CreateMenuItem(ctx context.Context, restaurantID, callerID int64, in ItemInput) (*models.MenuItem, error) {
	if err := validateItem(in); err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, restaurantID, callerID); err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		RestaurantID: restaurantID,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateMenuItem rewrites an item on the caller's restaurant menu.
func (s *Service) UpdateMenuItem(ctx context.Context, itemID, callerID int64, in ItemInput) (*models.MenuItem, error) {
	if err := validateItem(in); err != nil {
		return nil, err
	}

	item, err := s.repo.GetMenuItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, item.RestaurantID, callerID); err != nil {
		return nil, err
	}

	item.Name = in.Name
	item.Description = in.Description
	item.Price = in.Price
	if err := s.repo.UpdateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteMenuItem removes an item from the caller's restaurant menu.
func (s *Service) DeleteMenuItem(ctx context.Context, itemID, callerID int64) error {
	item, err := s.repo.GetMenuItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(ctx, item.RestaurantID, callerID); err != nil {
		return err
	}
	return s.repo.DeleteMenuItem(ctx, itemID)
}

// GetMenuItem loads one item.
func (s *Service) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	return s.repo.GetMenuItem(ctx, id)
}

// ListMenuItems returns a restaurant's menu.
func (s *Service) ListMenuItems(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	return s.repo.ListMenuItems(ctx, restaurantID)
}

// MenuItemsByIDs resolves items in bulk for pricing and order validation.
func (s *Service) MenuItemsByIDs(ctx context.Context, ids []int64) ([]models.MenuItem, error) {
	return s.repo.MenuItemsByIDs(ctx, ids)
}
