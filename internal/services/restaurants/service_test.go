package restaurants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

type fakeRepo struct {
	restaurants map[int64]*models.Restaurant
	requests    map[int64]*models.RestaurantRequest
	nextID      int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		restaurants: make(map[int64]*models.Restaurant),
		requests:    make(map[int64]*models.RestaurantRequest),
		nextID:      1,
	}
}

func (f *fakeRepo) CreateRestaurant(_ context.Context, r *models.Restaurant) error {
	r.ID = f.nextID
	f.nextID++
	copied := *r
	f.restaurants[r.ID] = &copied
	return nil
}

func (f *fakeRepo) GetRestaurant(_ context.Context, id int64) (*models.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, apperrors.NotFound("restaurant %d not found", id)
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRepo) UpdateRestaurant(_ context.Context, r *models.Restaurant) error {
	if _, ok := f.restaurants[r.ID]; !ok {
		return apperrors.NotFound("restaurant %d not found", r.ID)
	}
	copied := *r
	f.restaurants[r.ID] = &copied
	return nil
}

func (f *fakeRepo) DeleteRestaurant(_ context.Context, id int64) error {
	if _, ok := f.restaurants[id]; !ok {
		return apperrors.NotFound("restaurant %d not found", id)
	}
	delete(f.restaurants, id)
	return nil
}

func (f *fakeRepo) SubmitRequest(_ context.Context, restaurantID int64) (*models.RestaurantRequest, error) {
	r, ok := f.restaurants[restaurantID]
	if !ok {
		return nil, apperrors.NotFound("restaurant %d not found", restaurantID)
	}
	req := &models.RestaurantRequest{
		ID:           f.nextID,
		RestaurantID: restaurantID,
		Status:       models.RestaurantPending,
	}
	f.nextID++
	f.requests[req.ID] = req
	r.Status = models.RestaurantPending
	copied := *req
	return &copied, nil
}

func (f *fakeRepo) GetRequest(_ context.Context, id int64) (*models.RestaurantRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("restaurant request %d not found", id)
	}
	copied := *req
	return &copied, nil
}

func (f *fakeRepo) ListPendingRequests(_ context.Context) ([]models.RestaurantRequest, error) {
	var pending []models.RestaurantRequest
	for _, req := range f.requests {
		if req.Status == models.RestaurantPending {
			pending = append(pending, *req)
		}
	}
	return pending, nil
}

func (f *fakeRepo) SetStatuses(_ context.Context, requestID, restaurantID int64, status models.RestaurantStatus) error {
	req, ok := f.requests[requestID]
	if !ok {
		return apperrors.NotFound("restaurant request %d not found", requestID)
	}
	r, ok := f.restaurants[restaurantID]
	if !ok {
		return apperrors.NotFound("restaurant %d not found", restaurantID)
	}
	req.Status = status
	r.Status = status
	return nil
}

func (f *fakeRepo) FindApprovedOwned(_ context.Context, ownerID, restaurantID int64) (*models.Restaurant, error) {
	r, ok := f.restaurants[restaurantID]
	if !ok || r.OwnerID != ownerID || r.Status != models.RestaurantApproved {
		return nil, apperrors.NotFound("no approved restaurant %d owned by user %d", restaurantID, ownerID)
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRepo) ListApproved(_ context.Context, ownerID *int64) ([]models.Restaurant, error) {
	var out []models.Restaurant
	for _, r := range f.restaurants {
		if r.Status != models.RestaurantApproved {
			continue
		}
		if ownerID != nil && r.OwnerID != *ownerID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

type fakeIdentity struct {
	users map[int64]*models.User
}

func (f *fakeIdentity) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user %d not found", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeIdentity) SetUserRole(_ context.Context, id int64, role models.RoleCode) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.NotFound("user %d not found", id)
	}
	u.Role = role
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeIdentity) {
	repo := newFakeRepo()
	users := &fakeIdentity{users: map[int64]*models.User{
		1: {ID: 1, Username: "owner", Role: models.RoleClient},
		2: {ID: 2, Username: "admin", Role: models.RoleAdministrator},
		3: {ID: 3, Username: "other", Role: models.RoleClient},
	}}
	svc := NewService(repo, users, logger.New("restaurants-test"))
	return svc, repo, users
}

func register(t *testing.T, svc *Service, ownerID int64) *models.Restaurant {
	t.Helper()
	restaurant, err := svc.Register(context.Background(), ownerID, Profile{
		Name:        "Chez Test",
		Address:     "1 rue du Test",
		CuisineType: "tunisian",
	})
	require.NoError(t, err)
	return restaurant
}

func TestRegisterStartsPendingAndPromotesOwner(t *testing.T) {
	svc, _, users := newTestService()

	restaurant := register(t, svc, 1)

	assert.Equal(t, models.RestaurantPending, restaurant.Status)
	assert.Equal(t, models.RoleRestaurateur, users.users[1].Role)
}

func TestRegisterKeepsAdministratorRole(t *testing.T) {
	svc, _, users := newTestService()

	register(t, svc, 2)

	assert.Equal(t, models.RoleAdministrator, users.users[2].Role)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), 1, Profile{Address: "somewhere"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Register(context.Background(), 1, Profile{Name: "No Address"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestSubmitRequestOwnerOnly(t *testing.T) {
	svc, _, _ := newTestService()
	restaurant := register(t, svc, 1)

	_, err := svc.SubmitRequest(context.Background(), restaurant.ID, 3)
	assert.True(t, apperrors.IsForbidden(err))

	request, err := svc.SubmitRequest(context.Background(), restaurant.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RestaurantPending, request.Status)
}

func TestWorkflowTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.RestaurantStatus
		to      models.RestaurantStatus
		allowed bool
	}{
		{"pending to approved", models.RestaurantPending, models.RestaurantApproved, true},
		{"pending to rejected", models.RestaurantPending, models.RestaurantRejected, true},
		{"rejected to approved", models.RestaurantRejected, models.RestaurantApproved, true},
		{"approved to blocked", models.RestaurantApproved, models.RestaurantBlocked, true},
		{"approved to rejected", models.RestaurantApproved, models.RestaurantRejected, false},
		{"approved to pending", models.RestaurantApproved, models.RestaurantPending, false},
		{"rejected to blocked", models.RestaurantRejected, models.RestaurantBlocked, false},
		{"blocked to approved", models.RestaurantBlocked, models.RestaurantApproved, false},
		{"pending to blocked", models.RestaurantPending, models.RestaurantBlocked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			restaurant := register(t, svc, 1)
			request, err := svc.SubmitRequest(context.Background(), restaurant.ID, 1)
			require.NoError(t, err)

			repo.requests[request.ID].Status = tt.from
			repo.restaurants[restaurant.ID].Status = tt.from

			updated, err := svc.UpdateStatus(context.Background(), request.ID, tt.to)
			if !tt.allowed {
				require.Error(t, err)
				assert.True(t, apperrors.IsInvalidTransition(err))
				assert.Equal(t, tt.from, repo.requests[request.ID].Status)
				assert.Equal(t, tt.from, repo.restaurants[restaurant.ID].Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
			assert.Equal(t, repo.requests[request.ID].Status, repo.restaurants[restaurant.ID].Status)
		})
	}
}

func TestUpdateStatusUnknownRequest(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.UpdateStatus(context.Background(), 999, models.RestaurantApproved)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSwitchRestaurant(t *testing.T) {
	svc, repo, _ := newTestService()
	restaurant := register(t, svc, 1)

	_, err := svc.SwitchRestaurant(context.Background(), 1, restaurant.ID)
	assert.True(t, apperrors.IsNotFound(err), "pending restaurant is not switchable")

	repo.restaurants[restaurant.ID].Status = models.RestaurantApproved

	got, err := svc.SwitchRestaurant(context.Background(), 1, restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, restaurant.ID, got.ID)

	_, err = svc.SwitchRestaurant(context.Background(), 3, restaurant.ID)
	assert.True(t, apperrors.IsNotFound(err), "non-owner cannot switch")
}

func TestListOwnedRestaurants(t *testing.T) {
	svc, repo, _ := newTestService()
	mine := register(t, svc, 1)
	theirs := register(t, svc, 3)
	repo.restaurants[mine.ID].Status = models.RestaurantApproved
	repo.restaurants[theirs.ID].Status = models.RestaurantApproved

	owned, err := svc.ListOwnedRestaurants(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, mine.ID, owned[0].ID)

	all, err := svc.ListOwnedRestaurants(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListOwnedRestaurantsForbiddenForClients(t *testing.T) {
	svc, _, users := newTestService()
	users.users[1].Role = models.RoleClient

	_, err := svc.ListOwnedRestaurants(context.Background(), 1)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestUpdateRestaurantOwnerOnly(t *testing.T) {
	svc, _, _ := newTestService()
	restaurant := register(t, svc, 1)

	_, err := svc.UpdateRestaurant(context.Background(), restaurant.ID, 3, Profile{Name: "Hijacked"})
	assert.True(t, apperrors.IsForbidden(err))

	updated, err := svc.UpdateRestaurant(context.Background(), restaurant.ID, 1, Profile{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "1 rue du Test", updated.Address)
}

func TestDeleteRestaurantOwnerOnly(t *testing.T) {
	svc, repo, _ := newTestService()
	restaurant := register(t, svc, 1)

	err := svc.DeleteRestaurant(context.Background(), restaurant.ID, 3)
	assert.True(t, apperrors.IsForbidden(err))

	err = svc.DeleteRestaurant(context.Background(), restaurant.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, repo.restaurants)
}
