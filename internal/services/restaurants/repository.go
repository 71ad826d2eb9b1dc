package restaurants

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/database"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// PostgresRepository persists restaurants and approval requests.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a restaurant repository over the given pool.
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const restaurantColumns = `id, owner_id, name, address, cuisine_type, description, status, created_at, updated_at`

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	r := &models.Restaurant{}
	err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Address, &r.CuisineType,
		&r.Description, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateRestaurant inserts a restaurant.
func (r *PostgresRepository) CreateRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO restaurants (owner_id, name, address, cuisine_type, description, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		restaurant.OwnerID, restaurant.Name, restaurant.Address, restaurant.CuisineType,
		restaurant.Description, restaurant.Status,
	).Scan(&restaurant.ID, &restaurant.CreatedAt, &restaurant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}
	return nil
}

// GetRestaurant loads one restaurant.
func (r *PostgresRepository) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	restaurant, err := scanRestaurant(r.db.QueryRow(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant %d not found", id)
		}
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}
	return restaurant, nil
}

// UpdateRestaurant writes the restaurant's profile fields.
func (r *PostgresRepository) UpdateRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE restaurants SET name = $1, address = $2, cuisine_type = $3, description = $4,
			updated_at = NOW()
		 WHERE id = $5`,
		restaurant.Name, restaurant.Address, restaurant.CuisineType, restaurant.Description,
		restaurant.ID)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("restaurant %d not found", restaurant.ID)
	}
	return nil
}

// DeleteRestaurant removes a restaurant and its requests.
func (r *PostgresRepository) DeleteRestaurant(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM restaurant_requests WHERE restaurant_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete restaurant requests: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete restaurant: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("restaurant %d not found", id)
		}
		return nil
	})
}

// SubmitRequest creates a PENDING request and marks the restaurant PENDING
// in one transaction, keeping the two statuses equal.
func (r *PostgresRepository) SubmitRequest(ctx context.Context, restaurantID int64) (*models.RestaurantRequest, error) {
	request := &models.RestaurantRequest{
		RestaurantID: restaurantID,
		Status:       models.RestaurantPending,
	}

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO restaurant_requests (restaurant_id, status)
			 VALUES ($1, $2) RETURNING id, created_at, updated_at`,
			restaurantID, request.Status,
		).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert restaurant request: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE restaurants SET status = $1, updated_at = NOW() WHERE id = $2`,
			request.Status, restaurantID)
		if err != nil {
			return fmt.Errorf("failed to update restaurant status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("restaurant %d not found", restaurantID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// GetRequest loads one approval request.
func (r *PostgresRepository) GetRequest(ctx context.Context, id int64) (*models.RestaurantRequest, error) {
	request := &models.RestaurantRequest{}
	err := r.db.QueryRow(ctx,
		`SELECT id, restaurant_id, status, created_at, updated_at
		 FROM restaurant_requests WHERE id = $1`, id,
	).Scan(&request.ID, &request.RestaurantID, &request.Status, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant request %d not found", id)
		}
		return nil, fmt.Errorf("failed to load restaurant request: %w", err)
	}
	return request, nil
}

// ListPendingRequests returns all requests in PENDING status.
func (r *PostgresRepository) ListPendingRequests(ctx context.Context) ([]models.RestaurantRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, restaurant_id, status, created_at, updated_at
		 FROM restaurant_requests WHERE status = $1 ORDER BY created_at`,
		models.RestaurantPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []models.RestaurantRequest
	for rows.Next() {
		var req models.RestaurantRequest
		if err := rows.Scan(&req.ID, &req.RestaurantID, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// SetStatuses writes the same status to a request and its restaurant in
// one transaction. A crash cannot leave the two diverged.
func (r *PostgresRepository) SetStatuses(ctx context.Context, requestID, restaurantID int64, status models.RestaurantStatus) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE restaurant_requests SET status = $1, updated_at = NOW() WHERE id = $2`,
			status, requestID)
		if err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("restaurant request %d not found", requestID)
		}

		tag, err = tx.Exec(ctx,
			`UPDATE restaurants SET status = $1, updated_at = NOW() WHERE id = $2`,
			status, restaurantID)
		if err != nil {
			return fmt.Errorf("failed to update restaurant status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("restaurant %d not found", restaurantID)
		}
		return nil
	})
}

// FindApprovedOwned looks up an APPROVED restaurant owned by the caller.
func (r *PostgresRepository) FindApprovedOwned(ctx context.Context, ownerID, restaurantID int64) (*models.Restaurant, error) {
	restaurant, err := scanRestaurant(r.db.QueryRow(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants
		 WHERE id = $1 AND owner_id = $2 AND status = $3`,
		restaurantID, ownerID, models.RestaurantApproved))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("no approved restaurant %d owned by user %d", restaurantID, ownerID)
		}
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}
	return restaurant, nil
}

// ListApproved returns APPROVED restaurants, optionally scoped to an owner.
func (r *PostgresRepository) ListApproved(ctx context.Context, ownerID *int64) ([]models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE status = $1`
	args := []interface{}{models.RestaurantApproved}
	if ownerID != nil {
		query += ` AND owner_id = $2`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		var rest models.Restaurant
		if err := rows.Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Address, &rest.CuisineType,
			&rest.Description, &rest.Status, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}
