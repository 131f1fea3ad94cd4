package services

import (
	"testing"
	"time"

	"table_ordering/internal/models"
	"table_ordering/internal/redis"
	"table_ordering/internal/repository"
	"table_ordering/internal/statemachine"
	"table_ordering/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/gorm"
)

var adminScope = repository.Scope{UserID: 1, Role: string(models.Admin)}

type testEnv struct {
	db      *gorm.DB
	store   *redis.Client
	mr      *miniredis.Miniredis
	catalog *testutil.Catalog

	catalogRepo   repository.CatalogRepository
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	reportRepo    repository.ReportRepository

	catalogService  CatalogService
	cartService     CartService
	orderService    OrderService
	checkoutService CheckoutService
}

func newTestEnv(t *testing.T, opts ...OrderOption) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	store, mr := testutil.NewRedis(t)

	env := &testEnv{
		db:            db,
		store:         store,
		mr:            mr,
		catalog:       testutil.SeedCatalog(t, db, "test-club"),
		catalogRepo:   repository.NewCatalogRepository(db),
		orderRepo:     repository.NewOrderRepository(db),
		orderItemRepo: repository.NewOrderItemRepository(db),
		reportRepo:    repository.NewReportRepository(db),
	}
	env.catalogService = NewCatalogService(env.catalogRepo)
	env.cartService = NewCartService(store, env.catalogRepo, time.Hour)
	env.orderService = NewOrderService(db, env.orderRepo, env.orderItemRepo, env.catalogRepo, statemachine.Permissive(), opts...)
	env.checkoutService = NewCheckoutService(env.catalogService, env.cartService, env.orderService)
	return env
}

func (e *testEnv) venueScope(venueID uint) repository.Scope {
	return repository.Scope{UserID: 2, Role: string(models.Waiter), VenueID: &venueID}
}

func (e *testEnv) line(product *models.Product, quantity int) CartLine {
	return CartLine{Product: *product, Quantity: quantity}
}

func (e *testEnv) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

// fixedClock returns a clock that advances one second per call so every
// order gets a distinct number.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}
