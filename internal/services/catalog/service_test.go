package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

type fakeRepo struct {
	items  map[int64]*models.MenuItem
	nextID int64
}

func (f *fakeRepo) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	item.ID = f.nextID
	f.nextID++
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeRepo) GetMenuItem(_ context.Context, id int64) (*models.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("menu item %d not found", id)
	}
	copied := *item
	return &copied, nil
}

func (f *fakeRepo) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return apperrors.NotFound("menu item %d not found", item.ID)
	}
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeRepo) DeleteMenuItem(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFound("menu item %d not found", id)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) ListMenuItems(_ context.Context, restaurantID int64) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, item := range f.items {
		if item.RestaurantID == restaurantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeRepo) MenuItemsByIDs(_ context.Context, ids []int64) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

type fakeRestaurants struct {
	restaurants map[int64]*models.Restaurant
}

func (f *fakeRestaurants) GetRestaurant(_ context.Context, id int64) (*models.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, apperrors.NotFound("restaurant %d not found", id)
	}
	copied := *r
	return &copied, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{items: make(map[int64]*models.MenuItem), nextID: 1}
	restaurants := &fakeRestaurants{restaurants: map[int64]*models.Restaurant{
		10: {ID: 10, OwnerID: 1, Status: models.RestaurantApproved},
	}}
	return NewService(repo, restaurants), repo
}

func TestCreateMenuItem(t *testing.T) {
	svc, repo := newTestService()

	item, err := svc.CreateMenuItem(context.Background(), 10, 1, ItemInput{Name: "Margherita", Price: 9.50})
	require.NoError(t, err)

	assert.Equal(t, int64(10), item.RestaurantID)
	assert.Len(t, repo.items, 1)
}

func TestCreateMenuItemRejectsNonOwner(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateMenuItem(context.Background(), 10, 2, ItemInput{Name: "Margherita", Price: 9.50})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCreateMenuItemValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateMenuItem(context.Background(), 10, 1, ItemInput{Price: 9.50})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.CreateMenuItem(context.Background(), 10, 1, ItemInput{Name: "Free lunch", Price: -1})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateMenuItem(t *testing.T) {
	svc, repo := newTestService()
	item, err := svc.CreateMenuItem(context.Background(), 10, 1, ItemInput{Name: "Margherita", Price: 9.50})
	require.NoError(t, err)

	_, err = svc.UpdateMenuItem(context.Background(), item.ID, 2, ItemInput{Name: "Hijacked", Price: 1})
	assert.True(t, apperrors.IsForbidden(err))

	updated, err := svc.UpdateMenuItem(context.Background(), item.ID, 1, ItemInput{Name: "Margherita", Price: 10.00})
	require.NoError(t, err)
	assert.Equal(t, 10.00, updated.Price)
	assert.Equal(t, 10.00, repo.items[item.ID].Price)
}

func TestDeleteMenuItem(t *testing.T) {
	svc, repo := newTestService()
	item, err := svc.CreateMenuItem(context.Background(), 10, 1, ItemInput{Name: "Margherita", Price: 9.50})
	require.NoError(t, err)

	err = svc.DeleteMenuItem(context.Background(), item.ID, 2)
	assert.True(t, apperrors.IsForbidden(err))

	require.NoError(t, svc.DeleteMenuItem(context.Background(), item.ID, 1))
	assert.Empty(t, repo.items)
}
