package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"table_ordering/internal/models"
	"table_ordering/internal/redis"
	"table_ordering/internal/repository"

	"github.com/shopspring/decimal"
)

// CartStore persists carts by key. *redis.Client implements it.
type CartStore interface {
	GetCart(ctx context.Context, key string) (*redis.CartData, error)
	UpdateCart(ctx context.Context, key string, ttl time.Duration, fn func(cart *redis.CartData) error) (*redis.CartData, error)
	DeleteCart(ctx context.Context, key string) error
}

// CartKey identifies one cart: a browsing session at one venue table.
type CartKey struct {
	SessionID   string
	VenueSlug   string
	TableNumber string
}

func (k CartKey) String() string {
	return k.SessionID + ":" + k.VenueSlug + ":" + k.TableNumber
}

type CartLine struct {
	Product   models.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	Lines []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type CartService interface {
	Add(ctx context.Context, key CartKey, venue *models.Venue, productID uint, quantity int) (int, error)
	SetQuantity(ctx context.Context, key CartKey, productID uint, quantity int) (int, error)
	Remove(ctx context.Context, key CartKey, productID uint) (int, error)
	Materialize(ctx context.Context, key CartKey, venue *models.Venue) (*CartView, error)
	Count(ctx context.Context, key CartKey) (int, error)
	Clear(ctx context.Context, key CartKey) error
}

type cartService struct {
	store       CartStore
	catalogRepo repository.CatalogRepository
	ttl         time.Duration
}

func NewCartService(store CartStore, catalogRepo repository.CatalogRepository, ttl time.Duration) CartService {
	return &cartService{
		store:       store,
		catalogRepo: catalogRepo,
		ttl:         ttl,
	}
}

// ParseQuantity converts a client supplied quantity into an int. A nil value
// yields def. Fractional or non-numeric values are rejected.
func ParseQuantity(value interface{}, def int) (int, error) {
	switch v := value.(type) {
	case nil:
		return def, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return 0, validationError("quantity must be a whole number")
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, validationError("quantity must be a whole number")
		}
		return n, nil
	default:
		return 0, validationError("quantity must be a whole number")
	}
}

func countEntries(cart *redis.CartData) int {
	total := 0
	for _, entry := range cart.Entries {
		total += entry.Quantity
	}
	return total
}

func (s *cartService) update(ctx context.Context, key CartKey, fn func(cart *redis.CartData)) (int, error) {
	cart, err := s.store.UpdateCart(ctx, key.String(), s.ttl, func(cart *redis.CartData) error {
		fn(cart)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return countEntries(cart), nil
}

// Add increments the product's quantity, creating the entry when absent.
func (s *cartService) Add(ctx context.Context, key CartKey, venue *models.Venue, productID uint, quantity int) (int, error) {
	if quantity < 1 {
		return 0, validationError("quantity must be at least 1")
	}
	if _, err := s.catalogRepo.GetAvailableProduct(productID, venue.ID); err != nil {
		return 0, notFound("product", err)
	}

	return s.update(ctx, key, func(cart *redis.CartData) {
		for i := range cart.Entries {
			if cart.Entries[i].ProductID == productID {
				cart.Entries[i].Quantity += quantity
				return
			}
		}
		cart.Entries = append(cart.Entries, redis.CartEntry{ProductID: productID, Quantity: quantity})
	})
}

// SetQuantity overwrites the entry's quantity; zero or less removes it.
func (s *cartService) SetQuantity(ctx context.Context, key CartKey, productID uint, quantity int) (int, error) {
	return s.update(ctx, key, func(cart *redis.CartData) {
		entries := cart.Entries[:0]
		found := false
		for _, entry := range cart.Entries {
			if entry.ProductID == productID {
				found = true
				if quantity <= 0 {
					continue
				}
				entry.Quantity = quantity
			}
			entries = append(entries, entry)
		}
		if !found && quantity > 0 {
			entries = append(entries, redis.CartEntry{ProductID: productID, Quantity: quantity})
		}
		cart.Entries = entries
	})
}

func (s *cartService) Remove(ctx context.Context, key CartKey, productID uint) (int, error) {
	return s.SetQuantity(ctx, key, productID, 0)
}

// Materialize resolves the cart against the venue catalog. Entries whose
// product no longer exists or is unavailable are dropped from the stored
// cart; entries added meanwhile are kept.
func (s *cartService) Materialize(ctx context.Context, key CartKey, venue *models.Venue) (*CartView, error) {
	cart, err := s.store.GetCart(ctx, key.String())
	if err != nil {
		return nil, err
	}
	view := &CartView{Lines: []CartLine{}, Total: decimal.Zero}
	if len(cart.Entries) == 0 {
		return view, nil
	}

	ids := make([]uint, 0, len(cart.Entries))
	for _, entry := range cart.Entries {
		ids = append(ids, entry.ProductID)
	}
	products, err := s.catalogRepo.GetAvailableProducts(venue.ID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	stale := make(map[uint]bool)
	for _, entry := range cart.Entries {
		product, ok := byID[entry.ProductID]
		if !ok || entry.Quantity < 1 {
			stale[entry.ProductID] = true
			continue
		}
		line := CartLine{
			Product:   product,
			Quantity:  entry.Quantity,
			LineTotal: product.Price.Mul(decimal.NewFromInt(int64(entry.Quantity))),
		}
		view.Lines = append(view.Lines, line)
		view.Total = view.Total.Add(line.LineTotal)
		view.Count += entry.Quantity
	}

	if len(stale) > 0 {
		log.Printf("Pruning %d unavailable cart entries for %s", len(stale), key)
		_, err := s.update(ctx, key, func(cart *redis.CartData) {
			kept := cart.Entries[:0]
			for _, entry := range cart.Entries {
				if stale[entry.ProductID] || entry.Quantity < 1 {
					continue
				}
				kept = append(kept, entry)
			}
			cart.Entries = kept
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save pruned cart: %w", err)
		}
	}
	return view, nil
}

func (s *cartService) Count(ctx context.Context, key CartKey) (int, error) {
	cart, err := s.store.GetCart(ctx, key.String())
	if err != nil {
		return 0, err
	}
	return countEntries(cart), nil
}

func (s *cartService) Clear(ctx context.Context, key CartKey) error {
	return s.store.DeleteCart(ctx, key.String())
}
