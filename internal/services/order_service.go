package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"
	"table_ordering/internal/statemachine"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	PaymentMethod string `json:"payment_method"`
	CustomerName  string `json:"customer_name" binding:"max=100"`
	CustomerPhone string `json:"customer_phone" binding:"max=20"`
	Notes         string `json:"notes"`
}

const defaultPaymentMethod = "pay_at_table"

// TaxPolicy computes the tax owed on an order subtotal.
type TaxPolicy interface {
	Tax(subtotal decimal.Decimal) decimal.Decimal
}

type ZeroTax struct{}

func (ZeroTax) Tax(decimal.Decimal) decimal.Decimal { return decimal.Zero }

// ItemHook runs inside the item transaction after order items change and
// before commit. Returning an error rolls the whole mutation back.
type ItemHook func(tx *gorm.DB, orderID uint) error

// ActiveOrders groups open orders by status for the staff board.
type ActiveOrders struct {
	Received   []models.Order `json:"received"`
	InProgress []models.Order `json:"in_progress"`
	Ready      []models.Order `json:"ready"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, venue *models.Venue, table *models.Table, lines []CartLine, input CheckoutInput) (*models.Order, error)
	RecalculateTotals(ctx context.Context, orderID uint) (*models.Order, error)
	SetItemQuantity(ctx context.Context, scope repository.Scope, orderID, productID uint, quantity int, notes string) (*models.Order, error)
	RemoveItem(ctx context.Context, scope repository.Scope, orderID, productID uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, scope repository.Scope, orderID uint, status string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, scope repository.Scope, orderID uint, status string) (*models.Order, error)
	UpdateStaffNotes(ctx context.Context, scope repository.Scope, orderID uint, notes string) (*models.Order, error)

	GetOrder(scope repository.Scope, id uint) (*models.Order, error)
	GetConfirmation(id uint) (*models.Order, error)
	ActiveOrders(scope repository.Scope) (*ActiveOrders, error)
	StatusHistory(scope repository.Scope, id uint) ([]models.OrderStatusHistory, error)
	ValidTransitions(status string) []models.OrderStatus
}

type OrderOption func(*orderService)

// WithClock replaces time.Now for order numbers and delivery stamps.
func WithClock(now func() time.Time) OrderOption {
	return func(s *orderService) { s.now = now }
}

func WithTaxPolicy(tax TaxPolicy) OrderOption {
	return func(s *orderService) { s.tax = tax }
}

// WithItemHook registers an additional hook run after the totals recompute.
func WithItemHook(hook ItemHook) OrderOption {
	return func(s *orderService) { s.hooks = append(s.hooks, hook) }
}

// WithOrderNumbers replaces the order number generator.
func WithOrderNumbers(fn func(slug string, at time.Time) string) OrderOption {
	return func(s *orderService) { s.orderNumber = fn }
}

type orderService struct {
	db            *gorm.DB
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	catalogRepo   repository.CatalogRepository
	policy        *statemachine.Policy

	tax         TaxPolicy
	now         func() time.Time
	orderNumber func(slug string, at time.Time) string
	hooks       []ItemHook
}

func NewOrderService(db *gorm.DB, orderRepo repository.OrderRepository, orderItemRepo repository.OrderItemRepository, catalogRepo repository.CatalogRepository, policy *statemachine.Policy, opts ...OrderOption) OrderService {
	s := &orderService{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		catalogRepo:   catalogRepo,
		policy:        policy,
		tax:           ZeroTax{},
		now:           time.Now,
		orderNumber:   OrderNumber,
	}
	if s.policy == nil {
		s.policy = statemachine.Permissive()
	}
	s.hooks = []ItemHook{s.recalculateTotals}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OrderNumber is the uppercased venue slug followed by the low six digits
// of the creation time in epoch seconds. Two orders for the same venue in
// the same second collide; the unique index rejects the second one.
func OrderNumber(slug string, at time.Time) string {
	return fmt.Sprintf("%s%06d", strings.ToUpper(slug), at.Unix()%1000000)
}

func (s *orderService) runItemHooks(tx *gorm.DB, orderID uint) error {
	for _, hook := range s.hooks {
		if err := hook(tx, orderID); err != nil {
			return err
		}
	}
	return nil
}

// recalculateTotals derives subtotal, tax and total from the persisted items.
func (s *orderService) recalculateTotals(tx *gorm.DB, orderID uint) error {
	items, err := s.orderItemRepo.WithTx(tx).GetByOrderID(orderID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	tax := s.tax.Tax(subtotal).Round(2)
	return s.orderRepo.WithTx(tx).UpdateFields(orderID, map[string]interface{}{
		"subtotal":     subtotal,
		"tax_amount":   tax,
		"total_amount": subtotal.Add(tax),
	})
}

func (s *orderService) CreateOrder(ctx context.Context, venue *models.Venue, table *models.Table, lines []CartLine, input CheckoutInput) (*models.Order, error) {
	if table.VenueID != venue.ID {
		return nil, validationError("table %s does not belong to %s", table.Number, venue.Name)
	}
	if !table.IsActive || !venue.IsActive {
		return nil, validationError("table %s is not accepting orders", table.Number)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	quantities := make(map[uint]int, len(lines))
	productIDs := make([]uint, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, validationError("quantity for %s must be at least 1", line.Product.Name)
		}
		if _, ok := quantities[line.Product.ID]; !ok {
			productIDs = append(productIDs, line.Product.ID)
		}
		quantities[line.Product.ID] += line.Quantity
	}

	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}
	order := &models.Order{
		VenueID:       venue.ID,
		TableID:       table.ID,
		OrderNumber:   s.orderNumber(venue.Slug, s.now()),
		Status:        string(models.OrderReceived),
		PaymentStatus: string(models.PaymentPending),
		PaymentMethod: paymentMethod,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		Notes:         input.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		catalog := s.catalogRepo.WithTx(tx)
		items := s.orderItemRepo.WithTx(tx)
		for _, productID := range productIDs {
			// Prices are read again here so the captured unit price is the one
			// current at commit, not whatever the cart saw.
			product, err := catalog.GetAvailableProduct(productID, venue.ID)
			if err != nil {
				return notFound("product", err)
			}
			item := &models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				UnitPrice: product.Price,
			}
			item.ApplyQuantity(quantities[productID])
			if err := items.Create(item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		return s.runItemHooks(tx, order.ID)
	})
	if err != nil {
		log.Printf("Order creation failed for %s table %s: %v", venue.Slug, table.Number, err)
		return nil, transactionError(err)
	}

	log.Printf("Order %s created for %s table %s", order.OrderNumber, venue.Slug, table.Number)
	return s.orderRepo.GetByID(order.ID)
}

func (s *orderService) RecalculateTotals(ctx context.Context, orderID uint) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.orderRepo.WithTx(tx).LockByID(orderID); err != nil {
			return notFound("order", err)
		}
		return s.recalculateTotals(tx, orderID)
	})
	if err != nil {
		return nil, transactionError(err)
	}
	return s.orderRepo.GetByID(orderID)
}

// mutateOrder locks the order row, applies fn and runs the item hooks when
// items changed, all in one transaction.
func (s *orderService) mutateOrder(ctx context.Context, scope repository.Scope, orderID uint, itemsChanged bool, fn func(tx *gorm.DB, order *models.Order) error) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).LockByID(orderID)
		if err != nil {
			return notFound("order", err)
		}
		if !scope.Allows(order.VenueID) {
			return fmt.Errorf("order %w", ErrNotFound)
		}
		if err := fn(tx, order); err != nil {
			return err
		}
		if itemsChanged {
			return s.runItemHooks(tx, order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, transactionError(err)
	}
	return s.orderRepo.GetByID(orderID)
}

// SetItemQuantity upserts the (order, product) line. A new line captures
// the product's current price; an existing line keeps its unit price.
func (s *orderService) SetItemQuantity(ctx context.Context, scope repository.Scope, orderID, productID uint, quantity int, notes string) (*models.Order, error) {
	if quantity < 1 {
		return nil, validationError("quantity must be at least 1")
	}
	return s.mutateOrder(ctx, scope, orderID, true, func(tx *gorm.DB, order *models.Order) error {
		items := s.orderItemRepo.WithTx(tx)
		item, err := items.GetByOrderAndProduct(order.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if item == nil {
			product, err := s.catalogRepo.WithTx(tx).GetAvailableProduct(productID, order.VenueID)
			if err != nil {
				return notFound("product", err)
			}
			item = &models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				UnitPrice: product.Price,
				Notes:     notes,
			}
			item.ApplyQuantity(quantity)
			return items.Create(item)
		}
		item.ApplyQuantity(quantity)
		if notes != "" {
			item.Notes = notes
		}
		return items.Update(item)
	})
}

func (s *orderService) RemoveItem(ctx context.Context, scope repository.Scope, orderID, productID uint) (*models.Order, error) {
	return s.mutateOrder(ctx, scope, orderID, true, func(tx *gorm.DB, order *models.Order) error {
		removed, err := s.orderItemRepo.WithTx(tx).Delete(order.ID, productID)
		if err != nil {
			return err
		}
		if removed == 0 {
			return fmt.Errorf("order item %w", ErrNotFound)
		}
		return nil
	})
}

// UpdateStatus applies the configured transition policy. Moving to
// delivered stamps delivered_at; leaving delivered keeps the stamp.
func (s *orderService) UpdateStatus(ctx context.Context, scope repository.Scope, orderID uint, status string) (*models.Order, error) {
	target := models.OrderStatus(status)
	if !target.Valid() {
		return nil, validationError("invalid status %q", status)
	}
	return s.mutateOrder(ctx, scope, orderID, false, func(tx *gorm.DB, order *models.Order) error {
		from := models.OrderStatus(order.Status)
		if err := s.policy.CanTransition(from, target); err != nil {
			return validationError("%v", err)
		}
		fields := map[string]interface{}{"status": status}
		if target == models.OrderDelivered {
			fields["delivered_at"] = s.now().UTC()
		}
		orders := s.orderRepo.WithTx(tx)
		if err := orders.UpdateFields(order.ID, fields); err != nil {
			return err
		}
		return orders.AddStatusHistory(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   status,
			ChangedBy:  scope.UserID,
		})
	})
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, scope repository.Scope, orderID uint, status string) (*models.Order, error) {
	if !models.PaymentStatus(status).Valid() {
		return nil, validationError("invalid payment status %q", status)
	}
	return s.mutateOrder(ctx, scope, orderID, false, func(tx *gorm.DB, order *models.Order) error {
		return s.orderRepo.WithTx(tx).UpdateFields(order.ID, map[string]interface{}{"payment_status": status})
	})
}

func (s *orderService) UpdateStaffNotes(ctx context.Context, scope repository.Scope, orderID uint, notes string) (*models.Order, error) {
	return s.mutateOrder(ctx, scope, orderID, false, func(tx *gorm.DB, order *models.Order) error {
		return s.orderRepo.WithTx(tx).UpdateFields(order.ID, map[string]interface{}{"staff_notes": notes})
	})
}

func (s *orderService) GetOrder(scope repository.Scope, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetScoped(scope, id)
	if err != nil {
		return nil, notFound("order", err)
	}
	return order, nil
}

func (s *orderService) GetConfirmation(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, notFound("order", err)
	}
	return order, nil
}

func (s *orderService) ActiveOrders(scope repository.Scope) (*ActiveOrders, error) {
	orders, err := s.orderRepo.ListByStatuses(scope, []string{
		string(models.OrderReceived),
		string(models.OrderInProgress),
		string(models.OrderReady),
	})
	if err != nil {
		return nil, err
	}

	active := &ActiveOrders{
		Received:   []models.Order{},
		InProgress: []models.Order{},
		Ready:      []models.Order{},
	}
	for _, order := range orders {
		switch models.OrderStatus(order.Status) {
		case models.OrderReceived:
			active.Received = append(active.Received, order)
		case models.OrderInProgress:
			active.InProgress = append(active.InProgress, order)
		case models.OrderReady:
			active.Ready = append(active.Ready, order)
		}
	}
	return active, nil
}

func (s *orderService) StatusHistory(scope repository.Scope, id uint) ([]models.OrderStatusHistory, error) {
	if _, err := s.GetOrder(scope, id); err != nil {
		return nil, err
	}
	return s.orderRepo.GetStatusHistory(id)
}

func (s *orderService) ValidTransitions(status string) []models.OrderStatus {
	return s.policy.ValidTransitionsFrom(models.OrderStatus(status))
}
