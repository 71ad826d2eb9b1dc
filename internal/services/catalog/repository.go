package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/database"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// PostgresRepository persists menu items.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a catalog repository over the given pool.
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateMenuItem inserts a menu item.
func (r *PostgresRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO menu_items (restaurant_id, name, description, price)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		item.RestaurantID, item.Name, item.Description, item.Price,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

// GetMenuItem loads one menu item.
func (r *PostgresRepository) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	err := r.db.QueryRow(ctx,
		`SELECT id, restaurant_id, name, description, price FROM menu_items WHERE id = $1`, id,
	).Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("menu item %d not found", id)
		}
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	return item, nil
}

// UpdateMenuItem rewrites a menu item.
func (r *PostgresRepository) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE menu_items SET name = $1, description = $2, price = $3 WHERE id = $4`,
		item.Name, item.Description, item.Price, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("menu item %d not found", item.ID)
	}
	return nil
}

// DeleteMenuItem removes a menu item and its discount rules.
func (r *PostgresRepository) DeleteMenuItem(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM discount_rules WHERE menu_item_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete item discount rules: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete menu item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("menu item %d not found", id)
		}
		return nil
	})
}

// ListMenuItems returns a restaurant's menu ordered by name.
func (r *PostgresRepository) ListMenuItems(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, restaurant_id, name, description, price
		 FROM menu_items WHERE restaurant_id = $1 ORDER BY name`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// MenuItemsByIDs resolves items in bulk. Missing ids are simply absent
// from the result; callers decide whether that is an error.
func (r *PostgresRepository) MenuItemsByIDs(ctx context.Context, ids []int64) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, restaurant_id, name, description, price FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]models.MenuItem, error) {
	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
