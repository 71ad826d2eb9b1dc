package discounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/database"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// PostgresRepository persists discounts and rules.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a discount repository over the given pool.
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const discountColumns = `id, restaurant_id, name, description, type, value,
	starts_at, ends_at, is_active, created_at, updated_at`

func insertRules(ctx context.Context, tx pgx.Tx, discountID int64, rules []models.DiscountRule) error {
	for i := range rules {
		rules[i].DiscountID = discountID
		err := tx.QueryRow(ctx,
			`INSERT INTO discount_rules
				(discount_id, menu_item_id, min_quantity, min_amount, customer_type, starts_at, ends_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			discountID, rules[i].MenuItemID, rules[i].MinQuantity, rules[i].MinAmount,
			rules[i].CustomerType, rules[i].StartsAt, rules[i].EndsAt,
		).Scan(&rules[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert discount rule: %w", err)
		}
	}
	return nil
}

// CreateDiscount inserts a discount and its rules in one transaction.
func (r *PostgresRepository) CreateDiscount(ctx context.Context, discount *models.Discount, rules []models.DiscountRule) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO discounts
				(restaurant_id, name, description, type, value, starts_at, ends_at, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at, updated_at`,
			discount.RestaurantID, discount.Name, discount.Description, discount.Type,
			discount.Value, discount.StartsAt, discount.EndsAt, discount.Active,
		).Scan(&discount.ID, &discount.CreatedAt, &discount.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert discount: %w", err)
		}
		return insertRules(ctx, tx, discount.ID, rules)
	})
}

// GetDiscount loads one discount with its rules.
func (r *PostgresRepository) GetDiscount(ctx context.Context, id int64) (*models.Discount, []models.DiscountRule, error) {
	discount := &models.Discount{}
	err := r.db.QueryRow(ctx,
		`SELECT `+discountColumns+` FROM discounts WHERE id = $1`, id,
	).Scan(&discount.ID, &discount.RestaurantID, &discount.Name, &discount.Description,
		&discount.Type, &discount.Value, &discount.StartsAt, &discount.EndsAt,
		&discount.Active, &discount.CreatedAt, &discount.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NotFound("discount %d not found", id)
		}
		return nil, nil, fmt.Errorf("failed to load discount: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, discount_id, menu_item_id, min_quantity, min_amount, customer_type, starts_at, ends_at
		 FROM discount_rules WHERE discount_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load discount rules: %w", err)
	}
	defer rows.Close()

	var rules []models.DiscountRule
	for rows.Next() {
		var rule models.DiscountRule
		if err := rows.Scan(&rule.ID, &rule.DiscountID, &rule.MenuItemID, &rule.MinQuantity,
			&rule.MinAmount, &rule.CustomerType, &rule.StartsAt, &rule.EndsAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan discount rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return discount, rules, rows.Err()
}

// UpdateDiscount rewrites a discount and replaces its rule set in one
// transaction.
func (r *PostgresRepository) UpdateDiscount(ctx context.Context, discount *models.Discount, rules []models.DiscountRule) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE discounts SET restaurant_id = $1, name = $2, description = $3, type = $4,
				value = $5, starts_at = $6, ends_at = $7, is_active = $8, updated_at = NOW()
			 WHERE id = $9`,
			discount.RestaurantID, discount.Name, discount.Description, discount.Type,
			discount.Value, discount.StartsAt, discount.EndsAt, discount.Active, discount.ID)
		if err != nil {
			return fmt.Errorf("failed to update discount: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("discount %d not found", discount.ID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM discount_rules WHERE discount_id = $1`, discount.ID); err != nil {
			return fmt.Errorf("failed to clear discount rules: %w", err)
		}
		return insertRules(ctx, tx, discount.ID, rules)
	})
}

// DeleteDiscount removes a discount and its rules.
func (r *PostgresRepository) DeleteDiscount(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM discount_rules WHERE discount_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete discount rules: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete discount: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("discount %d not found", id)
		}
		return nil
	})
}

// ListDiscounts returns discounts, optionally scoped to one restaurant.
func (r *PostgresRepository) ListDiscounts(ctx context.Context, restaurantID *int64) ([]models.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts`
	var args []interface{}
	if restaurantID != nil {
		query += ` WHERE restaurant_id = $1`
		args = append(args, *restaurantID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	defer rows.Close()

	var discounts []models.Discount
	for rows.Next() {
		var d models.Discount
		if err := rows.Scan(&d.ID, &d.RestaurantID, &d.Name, &d.Description, &d.Type,
			&d.Value, &d.StartsAt, &d.EndsAt, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

// RulesForMenuItem returns the rules linked to one menu item, each joined
// with its parent discount. Only active discounts whose discount window
// contains now are returned; rule-level gates are left to the caller.
func (r *PostgresRepository) RulesForMenuItem(ctx context.Context, menuItemID int64, now time.Time) ([]models.ItemDiscount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT d.id, d.restaurant_id, d.name, d.description, d.type, d.value,
			d.starts_at, d.ends_at, d.is_active, d.created_at, d.updated_at,
			r.id, r.discount_id, r.menu_item_id, r.min_quantity, r.min_amount,
			r.customer_type, r.starts_at, r.ends_at
		 FROM discount_rules r
		 JOIN discounts d ON d.id = r.discount_id
		 WHERE r.menu_item_id = $1
		   AND d.is_active
		   AND (d.starts_at IS NULL OR d.starts_at <= $2)
		   AND (d.ends_at IS NULL OR d.ends_at >= $2)
		 ORDER BY r.id`,
		menuItemID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load item discounts: %w", err)
	}
	defer rows.Close()

	var out []models.ItemDiscount
	for rows.Next() {
		var item models.ItemDiscount
		d := &item.Discount
		rule := &item.Rule
		if err := rows.Scan(&d.ID, &d.RestaurantID, &d.Name, &d.Description, &d.Type, &d.Value,
			&d.StartsAt, &d.EndsAt, &d.Active, &d.CreatedAt, &d.UpdatedAt,
			&rule.ID, &rule.DiscountID, &rule.MenuItemID, &rule.MinQuantity, &rule.MinAmount,
			&rule.CustomerType, &rule.StartsAt, &rule.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan item discount: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ActiveOrderDiscounts returns active discounts with no rules at all;
// these apply to the order subtotal.
func (r *PostgresRepository) ActiveOrderDiscounts(ctx context.Context, now time.Time) ([]models.Discount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+discountColumns+` FROM discounts d
		 WHERE d.is_active
		   AND (d.starts_at IS NULL OR d.starts_at <= $1)
		   AND (d.ends_at IS NULL OR d.ends_at >= $1)
		   AND NOT EXISTS (SELECT 1 FROM discount_rules r WHERE r.discount_id = d.id)
		 ORDER BY d.id`,
		now)
	if err != nil {
		return nil, fmt.Errorf("failed to load order discounts: %w", err)
	}
	defer rows.Close()

	var discounts []models.Discount
	for rows.Next() {
		var d models.Discount
		if err := rows.Scan(&d.ID, &d.RestaurantID, &d.Name, &d.Description, &d.Type,
			&d.Value, &d.StartsAt, &d.EndsAt, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}
