package services

import (
	"context"
	"log"

	"table_ordering/internal/models"
)

// CheckoutSummary is what the customer reviews before submitting.
type CheckoutSummary struct {
	Venue *models.Venue `json:"venue"`
	Table *models.Table `json:"table"`
	Cart  *CartView     `json:"cart"`
}

// CheckoutService turns a session cart into an order.
type CheckoutService interface {
	Summary(ctx context.Context, key CartKey) (*CheckoutSummary, error)
	Checkout(ctx context.Context, key CartKey, input CheckoutInput) (*models.Order, error)
}

type checkoutService struct {
	catalogService CatalogService
	cartService    CartService
	orderService   OrderService
}

func NewCheckoutService(catalogService CatalogService, cartService CartService, orderService OrderService) CheckoutService {
	return &checkoutService{
		catalogService: catalogService,
		cartService:    cartService,
		orderService:   orderService,
	}
}

func (s *checkoutService) Summary(ctx context.Context, key CartKey) (*CheckoutSummary, error) {
	venue, err := s.catalogService.GetVenueBySlug(key.VenueSlug)
	if err != nil {
		return nil, err
	}
	table, err := s.catalogService.GetTable(venue, key.TableNumber)
	if err != nil {
		return nil, err
	}
	cart, err := s.cartService.Materialize(ctx, key, venue)
	if err != nil {
		return nil, err
	}
	return &CheckoutSummary{Venue: venue, Table: table, Cart: cart}, nil
}

// Checkout creates the order from the materialized cart. The cart is only
// cleared once the order has been committed; on failure it is left intact
// so the customer can retry.
func (s *checkoutService) Checkout(ctx context.Context, key CartKey, input CheckoutInput) (*models.Order, error) {
	summary, err := s.Summary(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(summary.Cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	order, err := s.orderService.CreateOrder(ctx, summary.Venue, summary.Table, summary.Cart.Lines, input)
	if err != nil {
		return nil, err
	}

	if err := s.cartService.Clear(ctx, key); err != nil {
		log.Printf("Failed to clear cart %s after order %s: %v", key, order.OrderNumber, err)
	}
	return order, nil
}
