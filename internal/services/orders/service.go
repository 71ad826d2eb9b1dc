// Package orders owns the order lifecycle: creation, line mutation while
// an order is PENDING, status and payment transitions, and the derived
// total price, which is recomputed through the pricing engine after every
// committed mutation.
package orders

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

// Repository persists orders and order lines. Implementations must commit
// line changes together with the recomputed total as one transaction and
// report missing rows as apperrors.NotFound.
type Repository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ReplaceLines(ctx context.Context, orderID int64, lines []models.OrderLine, total float64) error
	UpdateDetails(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, orderID int64, status string) error
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// Catalog reads menu items for order validation.
type Catalog interface {
	MenuItemsByIDs(ctx context.Context, ids []int64) ([]models.MenuItem, error)
}

// Identity reads users for existence checks.
type Identity interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Pricer derives the total price for a set of lines.
type Pricer interface {
	ComputeTotal(ctx context.Context, lines []models.OrderLine) (float64, error)
}

// EventPublisher delivers order lifecycle events to subscribers. Events
// are published after the mutation commits, never inside it.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

// LineInput is one requested (menu item, quantity) pair.
type LineInput struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// OrderDetails carries the mutable non-line fields of an order.
type OrderDetails struct {
	DeliveryAddress      *string `json:"delivery_address,omitempty"`
	DeliveryInstructions *string `json:"delivery_instructions,omitempty"`
	DeliveryMethod       *string `json:"delivery_method,omitempty"`
	CustomerNotes        *string `json:"customer_notes,omitempty"`
	DiscountCode         *string `json:"discount_code,omitempty"`
	PaymentMethod        *string `json:"payment_method,omitempty"`
}

// Service is the order lifecycle manager.
type Service struct {
	repo      Repository
	catalog   Catalog
	users     Identity
	pricer    Pricer
	publisher EventPublisher
	logger    *logger.Logger

	mu    sync.Mutex
	locks map[int64]*orderLock
}

// orderLock is one reference-counted entry in the keyed mutex. The last
// holder removes the entry, so the map never outgrows the set of orders
// being mutated right now.
type orderLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates an order lifecycle manager.
func NewService(repo Repository, catalog Catalog, users Identity, pricer Pricer, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		users:     users,
		pricer:    pricer,
		publisher: publisher,
		logger:    log,
		locks:     make(map[int64]*orderLock),
	}
}

// lockOrder serializes mutations per order id. Two concurrent item
// mutations on the same order would otherwise race on the
// read-recompute-write of the total.
func (s *Service) lockOrder(orderID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[orderID]
	if !ok {
		l = &orderLock{}
		s.locks[orderID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, orderID)
		}
		s.mu.Unlock()
	}
}

// CreateOrder validates the cart against the target restaurant's menu,
// derives the total and persists a PENDING order.
func (s *Service) CreateOrder(ctx context.Context, userID, restaurantID int64, lines []LineInput, details OrderDetails) (*models.Order, error) {
	merged, err := mergeLineInputs(lines)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.checkItemsBelong(ctx, restaurantID, merged); err != nil {
		return nil, err
	}

	total, err := s.pricer.ComputeTotal(ctx, merged)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:               userID,
		RestaurantID:         restaurantID,
		Lines:                merged,
		TotalPrice:           total,
		Status:               models.OrderPending,
		PaymentStatus:        models.PaymentPending,
		DeliveryAddress:      details.DeliveryAddress,
		DeliveryInstructions: details.DeliveryInstructions,
		DeliveryMethod:       details.DeliveryMethod,
		CustomerNotes:        details.CustomerNotes,
		DiscountCode:         details.DiscountCode,
		PaymentMethod:        details.PaymentMethod,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.emitEvent(ctx, models.EventOrderCreated, order)

	return order, nil
}

// AddItems adds lines to a PENDING order. A requested item that already
// has a line gets its quantity incremented; otherwise a new line is added.
func (s *Service) AddItems(ctx context.Context, orderID int64, lines []LineInput) (*models.Order, error) {
	requested, err := mergeLineInputs(lines)
	if err != nil {
		return nil, err
	}

	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.checkItemsBelong(ctx, order.RestaurantID, requested); err != nil {
		return nil, err
	}

	for _, req := range requested {
		existing := findLine(order.Lines, req.MenuItemID)
		if existing != nil {
			existing.Quantity += req.Quantity
		} else {
			order.Lines = append(order.Lines, models.OrderLine{
				OrderID:    orderID,
				MenuItemID: req.MenuItemID,
				Quantity:   req.Quantity,
			})
		}
	}

	return s.saveLines(ctx, order)
}

// RemoveItems decrements line quantities on a PENDING order. A line whose
// quantity drops to zero or below is deleted entirely; items with no
// matching line are ignored.
func (s *Service) RemoveItems(ctx context.Context, orderID int64, lines []LineInput) (*models.Order, error) {
	requested, err := mergeLineInputs(lines)
	if err != nil {
		return nil, err
	}

	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	kept := order.Lines[:0]
	for _, line := range order.Lines {
		if req := findLine(requested, line.MenuItemID); req != nil {
			line.Quantity -= req.Quantity
			if line.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, line)
	}
	order.Lines = kept

	return s.saveLines(ctx, order)
}

// UpdateOrder merges mutable fields into a PENDING order. The total is
// always re-derived from the current lines, never trusted from the caller.
func (s *Service) UpdateOrder(ctx context.Context, orderID int64, details OrderDetails) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	total, err := s.pricer.ComputeTotal(ctx, order.Lines)
	if err != nil {
		return nil, err
	}
	order.TotalPrice = total

	if details.DeliveryAddress != nil {
		order.DeliveryAddress = details.DeliveryAddress
	}
	if details.DeliveryInstructions != nil {
		order.DeliveryInstructions = details.DeliveryInstructions
	}
	if details.DeliveryMethod != nil {
		order.DeliveryMethod = details.DeliveryMethod
	}
	if details.CustomerNotes != nil {
		order.CustomerNotes = details.CustomerNotes
	}
	if details.DiscountCode != nil {
		order.DiscountCode = details.DiscountCode
	}
	if details.PaymentMethod != nil {
		order.PaymentMethod = details.PaymentMethod
	}

	if err := s.repo.UpdateDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order to a new fulfillment status. No transition
// table is enforced between fulfillment states; only the order's existence
// and the status value itself are checked.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.emitEvent(ctx, models.EventOrderStatusChanged, order)

	return order, nil
}

// UpdatePaymentStatus sets the payment status independent of order status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePaymentStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.PaymentStatus = status
	return order, nil
}

// GetOrder returns one order with its lines.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

// CountUserOrders returns the number of orders a user has placed.
func (s *Service) CountUserOrders(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

// mutableOrder loads an order and rejects item mutation after the order
// has left PENDING.
func (s *Service) mutableOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.Mutable() {
		return nil, apperrors.InvalidState("cannot modify an order that is currently %s",
			strings.ToLower(string(order.Status)))
	}
	return order, nil
}

// saveLines recomputes the total for the order's current lines and
// persists lines and total as one unit.
func (s *Service) saveLines(ctx context.Context, order *models.Order) (*models.Order, error) {
	total, err := s.pricer.ComputeTotal(ctx, order.Lines)
	if err != nil {
		return nil, err
	}
	order.TotalPrice = total

	if err := s.repo.ReplaceLines(ctx, order.ID, order.Lines, total); err != nil {
		return nil, err
	}
	return order, nil
}

// checkItemsBelong verifies every requested menu item exists and belongs
// to the given restaurant.
func (s *Service) checkItemsBelong(ctx context.Context, restaurantID int64, lines []models.OrderLine) error {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID)
	}

	items, err := s.catalog.MenuItemsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(items) != len(ids) {
		return apperrors.Validation("one or more items not found in the menu")
	}
	for _, item := range items {
		if item.RestaurantID != restaurantID {
			return apperrors.Validation("menu item %d does not belong to restaurant %d", item.ID, restaurantID)
		}
	}
	return nil
}

// emitEvent publishes an order event. Publish failures are logged, not
// returned: the mutation has already committed.
func (s *Service) emitEvent(ctx context.Context, eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := models.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event", "", err, map[string]interface{}{
			"event_type": eventType,
			"order_id":   order.ID,
		})
	}
}

// mergeLineInputs validates quantities and collapses duplicate menu item
// ids into one line, preserving first-seen order.
func mergeLineInputs(lines []LineInput) ([]models.OrderLine, error) {
	if len(lines) == 0 {
		return nil, apperrors.Validation("at least one item is required")
	}

	var merged []models.OrderLine
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if line.MenuItemID <= 0 {
			return nil, apperrors.Validation("menu item id must be positive")
		}
		if line.Quantity < 1 {
			return nil, apperrors.Validation("quantity must be at least 1 for menu item %d", line.MenuItemID)
		}
		if i, ok := index[line.MenuItemID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.MenuItemID] = len(merged)
		merged = append(merged, models.OrderLine{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
	}
	return merged, nil
}

func findLine(lines []models.OrderLine, menuItemID int64) *models.OrderLine {
	for i := range lines {
		if lines[i].MenuItemID == menuItemID {
			return &lines[i]
		}
	}
	return nil
}
