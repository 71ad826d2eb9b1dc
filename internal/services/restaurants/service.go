// Package restaurants owns the restaurant approval workflow: registration,
// approval requests and the status transition table. Every transition
// writes the request and its restaurant atomically so their statuses never
// diverge.
package restaurants

import (
	"context"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// Repository persists restaurants and their approval requests.
// SubmitRequest and SetStatuses must commit their two writes as one
// transaction; missing rows come back as apperrors.NotFound.
type Repository interface {
	CreateRestaurant(ctx context.Context, restaurant *models.Restaurant) error
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, restaurant *models.Restaurant) error
	DeleteRestaurant(ctx context.Context, id int64) error
	SubmitRequest(ctx context.Context, restaurantID int64) (*models.RestaurantRequest, error)
	GetRequest(ctx context.Context, id int64) (*models.RestaurantRequest, error)
	ListPendingRequests(ctx context.Context) ([]models.RestaurantRequest, error)
	SetStatuses(ctx context.Context, requestID, restaurantID int64, status models.RestaurantStatus) error
	FindApprovedOwned(ctx context.Context, ownerID, restaurantID int64) (*models.Restaurant, error)
	ListApproved(ctx context.Context, ownerID *int64) ([]models.Restaurant, error)
}

// Identity reads users and promotes restaurant owners.
type Identity interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	SetUserRole(ctx context.Context, id int64, role models.RoleCode) error
}

// Profile carries the caller-supplied restaurant fields.
type Profile struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	CuisineType string  `json:"cuisine_type"`
	Description *string `json:"description,omitempty"`
}

// Service is the restaurant workflow manager.
type Service struct {
	repo   Repository
	users  Identity
	logger *logger.Logger
}

// NewService creates a restaurant workflow manager.
func NewService(repo Repository, users Identity, log *logger.Logger) *Service {
	return &Service{repo: repo, users: users, logger: log}
}

// canTransition is the workflow table. Anything not listed here is an
// invalid transition:
//
//	PENDING  -> APPROVED, REJECTED
//	REJECTED -> APPROVED
//	APPROVED -> BLOCKED
func canTransition(from, to models.RestaurantStatus) bool {
	switch to {
	case models.RestaurantApproved:
		return from == models.RestaurantPending || from == models.RestaurantRejected
	case models.RestaurantRejected:
		return from == models.RestaurantPending
	case models.RestaurantBlocked:
		return from == models.RestaurantApproved
	default:
		return false
	}
}

// Register creates a restaurant in PENDING status and promotes the owner
// to RESTAURATEUR unless they are an administrator.
func (s *Service) Register(ctx context.Context, ownerID int64, profile Profile) (*models.Restaurant, error) {
	if profile.Name == "" {
		return nil, apperrors.Validation("restaurant name is required")
	}
	if profile.Address == "" {
		return nil, apperrors.Validation("restaurant address is required")
	}

	owner, err := s.users.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	restaurant := &models.Restaurant{
		OwnerID:     ownerID,
		Name:        profile.Name,
		Address:     profile.Address,
		CuisineType: profile.CuisineType,
		Description: profile.Description,
		Status:      models.RestaurantPending,
	}
	if err := s.repo.CreateRestaurant(ctx, restaurant); err != nil {
		return nil, err
	}

	if owner.Role != models.RoleAdministrator {
		if err := s.users.SetUserRole(ctx, ownerID, models.RoleRestaurateur); err != nil {
			return nil, err
		}
	}

	s.logger.Info("restaurant_registered", "Restaurant registered", "", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"owner_id":      ownerID,
	})

	return restaurant, nil
}

// SubmitRequest opens an approval request for the caller's restaurant and
// moves the restaurant to PENDING. Only the owner may submit.
func (s *Service) SubmitRequest(ctx context.Context, restaurantID, callerID int64) (*models.RestaurantRequest, error) {
	restaurant, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != callerID {
		return nil, apperrors.Forbidden("you do not have permission to submit a request for this restaurant")
	}

	return s.repo.SubmitRequest(ctx, restaurantID)
}

// UpdateStatus applies a workflow transition to a request and its linked
// restaurant. Transitions outside the table fail with InvalidTransition.
func (s *Service) UpdateStatus(ctx context.Context, requestID int64, newStatus models.RestaurantStatus) (*models.RestaurantRequest, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !canTransition(request.Status, newStatus) {
		return nil, apperrors.InvalidTransition("cannot move request from %s to %s", request.Status, newStatus)
	}

	if err := s.repo.SetStatuses(ctx, requestID, request.RestaurantID, newStatus); err != nil {
		return nil, err
	}
	request.Status = newStatus

	s.logger.Info("restaurant_status_changed", "Restaurant workflow transition applied", "", map[string]interface{}{
		"request_id":    requestID,
		"restaurant_id": request.RestaurantID,
		"status":        string(newStatus),
	})

	return request, nil
}

// SwitchRestaurant looks up an APPROVED restaurant owned by the caller,
// used to scope a restaurateur's active working context.
func (s *Service) SwitchRestaurant(ctx context.Context, callerID, restaurantID int64) (*models.Restaurant, error) {
	return s.repo.FindApprovedOwned(ctx, callerID, restaurantID)
}

// ListPendingRequests returns all requests awaiting review.
func (s *Service) ListPendingRequests(ctx context.Context) ([]models.RestaurantRequest, error) {
	return s.repo.ListPendingRequests(ctx)
}

// ListOwnedRestaurants returns the APPROVED restaurants the caller may
// work with: administrators see all, restaurateurs their own.
func (s *Service) ListOwnedRestaurants(ctx context.Context, callerID int64) ([]models.Restaurant, error) {
	user, err := s.users.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleAdministrator:
		return s.repo.ListApproved(ctx, nil)
	case models.RoleRestaurateur:
		return s.repo.ListApproved(ctx, &callerID)
	default:
		return nil, apperrors.Forbidden("user does not have permission to access restaurants")
	}
}

// UpdateRestaurant merges profile fields into the caller's restaurant.
func (s *Service) UpdateRestaurant(ctx context.Context, restaurantID, callerID int64, profile Profile) (*models.Restaurant, error) {
	restaurant, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != callerID {
		return nil, apperrors.Forbidden("you do not have permission to update this restaurant")
	}

	if profile.Name != "" {
		restaurant.Name = profile.Name
	}
	if profile.Address != "" {
		restaurant.Address = profile.Address
	}
	if profile.CuisineType != "" {
		restaurant.CuisineType = profile.CuisineType
	}
	if profile.Description != nil {
		restaurant.Description = profile.Description
	}

	if err := s.repo.UpdateRestaurant(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// DeleteRestaurant removes the caller's restaurant.
func (s *Service) DeleteRestaurant(ctx context.Context, restaurantID, callerID int64) error {
	restaurant, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return err
	}
	if restaurant.OwnerID != callerID {
		return apperrors.Forbidden("you do not have permission to delete this restaurant")
	}

	return s.repo.DeleteRestaurant(ctx, restaurantID)
}
