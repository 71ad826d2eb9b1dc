package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/database"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// PostgresRepository persists orders in PostgreSQL.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates an order repository over the given pool.
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrder inserts the order and its lines in one transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, restaurant_id, total_price, status, delivery_address,
				delivery_instructions, delivery_method, customer_notes, discount_code,
				payment_status, payment_method)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id, created_at, updated_at`,
			order.UserID, order.RestaurantID, order.TotalPrice, order.Status,
			order.DeliveryAddress, order.DeliveryInstructions, order.DeliveryMethod,
			order.CustomerNotes, order.DiscountCode, order.PaymentStatus, order.PaymentMethod,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			err := tx.QueryRow(ctx,
				`INSERT INTO order_lines (order_id, menu_item_id, quantity)
				 VALUES ($1, $2, $3) RETURNING id`,
				order.ID, order.Lines[i].MenuItemID, order.Lines[i].Quantity,
			).Scan(&order.Lines[i].ID)
			if err != nil {
				return fmt.Errorf("failed to insert order line: %w", err)
			}
		}
		return nil
	})
}

// GetOrder loads an order with its lines.
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, restaurant_id, total_price, status, delivery_address,
			delivery_instructions, delivery_method, customer_notes, discount_code,
			payment_status, payment_method, created_at, updated_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.RestaurantID, &order.TotalPrice, &order.Status,
		&order.DeliveryAddress, &order.DeliveryInstructions, &order.DeliveryMethod,
		&order.CustomerNotes, &order.DiscountCode, &order.PaymentStatus, &order.PaymentMethod,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order %d not found", id)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, menu_item_id, quantity
		 FROM order_lines WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// ReplaceLines swaps the order's lines for the given set and writes the
// recomputed total, all in one transaction.
func (r *PostgresRepository) ReplaceLines(ctx context.Context, orderID int64, lines []models.OrderLine, total float64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
			return fmt.Errorf("failed to clear order lines: %w", err)
		}

		for _, line := range lines {
			_, err := tx.Exec(ctx,
				`INSERT INTO order_lines (order_id, menu_item_id, quantity) VALUES ($1, $2, $3)`,
				orderID, line.MenuItemID, line.Quantity)
			if err != nil {
				return fmt.Errorf("failed to insert order line: %w", err)
			}
		}

		tag, err := tx.Exec(ctx,
			`UPDATE orders SET total_price = $1, updated_at = NOW() WHERE id = $2`,
			total, orderID)
		if err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("order %d not found", orderID)
		}
		return nil
	})
}

// UpdateDetails writes the order's mutable fields and total.
func (r *PostgresRepository) UpdateDetails(ctx context.Context, order *models.Order) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE orders SET total_price = $1, delivery_address = $2, delivery_instructions = $3,
			delivery_method = $4, customer_notes = $5, discount_code = $6, payment_method = $7,
			updated_at = NOW()
		 WHERE id = $8`,
		order.TotalPrice, order.DeliveryAddress, order.DeliveryInstructions,
		order.DeliveryMethod, order.CustomerNotes, order.DiscountCode, order.PaymentMethod,
		order.ID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order %d not found", order.ID)
	}
	return nil
}

// UpdateStatus writes the order status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order %d not found", orderID)
	}
	return nil
}

// UpdatePaymentStatus writes the payment status.
func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, orderID int64, status string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order %d not found", orderID)
	}
	return nil
}

// CountByUser counts the orders a user has placed.
func (r *PostgresRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
