package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"
	"table_ordering/internal/statemachine"
	"table_ordering/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createSampleOrder(t *testing.T, env *testEnv) *models.Order {
	t.Helper()
	order, err := env.orderService.CreateOrder(context.Background(), env.catalog.Venue, env.catalog.Table, []CartLine{
		env.line(env.catalog.Lager, 2),
		env.line(env.catalog.Coke, 1),
	}, CheckoutInput{})
	require.NoError(t, err)
	return order
}

func TestCreateOrderTotals(t *testing.T) {
	env := newTestEnv(t, WithClock(fixedClock(time.Unix(1760123456, 0))))

	order := createSampleOrder(t, env)

	assert.Equal(t, "TEST-CLUB123456", order.OrderNumber)
	assert.Equal(t, string(models.OrderReceived), order.Status)
	assert.Equal(t, string(models.PaymentPending), order.PaymentStatus)
	assert.Equal(t, "pay_at_table", order.PaymentMethod)
	assert.Equal(t, "65.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", order.TaxAmount.StringFixed(2))
	assert.Equal(t, "65.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "50.00", order.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "15.00", order.Items[1].TotalPrice.StringFixed(2))
	assert.Nil(t, order.DeliveredAt)
	assert.EqualValues(t, 2, env.countRows(t, &models.OrderItem{}))
}

func TestOrderNumber(t *testing.T) {
	assert.Equal(t, "CLUB000042", OrderNumber("club", time.Unix(3000042, 0)))
	assert.Equal(t, "VIP-LOUNGE999999", OrderNumber("vip-lounge", time.Unix(1999999, 0)))
}

func TestCreateOrderCapturesCurrentPrice(t *testing.T) {
	env := newTestEnv(t)
	stale := *env.catalog.Lager
	stale.Price = decimal.RequireFromString("20.00")

	order, err := env.orderService.CreateOrder(context.Background(), env.catalog.Venue, env.catalog.Table,
		[]CartLine{{Product: stale, Quantity: 1}}, CheckoutInput{PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, "25.00", order.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "card", order.PaymentMethod)

	require.NoError(t, env.db.Model(&models.Product{}).Where("id = ?", env.catalog.Lager.ID).
		Update("price", decimal.RequireFromString("30.00")).Error)

	reloaded, err := env.orderService.RecalculateTotals(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", reloaded.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "25.00", reloaded.TotalAmount.StringFixed(2))
}

func TestCreateOrderPreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := testutil.SeedCatalog(t, env.db, "other-bar")

	_, err := env.orderService.CreateOrder(ctx, env.catalog.Venue, env.catalog.Table, nil, CheckoutInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = env.orderService.CreateOrder(ctx, env.catalog.Venue, other.Table,
		[]CartLine{env.line(env.catalog.Lager, 1)}, CheckoutInput{})
	assert.ErrorIs(t, err, ErrValidation)

	inactive := *env.catalog.Table
	inactive.IsActive = false
	_, err = env.orderService.CreateOrder(ctx, env.catalog.Venue, &inactive,
		[]CartLine{env.line(env.catalog.Lager, 1)}, CheckoutInput{})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, env.countRows(t, &models.Order{}))
}

func TestCreateOrderRollsBackOnUnavailableProduct(t *testing.T) {
	env := newTestEnv(t)
	testutil.SetAvailable(t, env.db, env.catalog.Coke, false)

	_, err := env.orderService.CreateOrder(context.Background(), env.catalog.Venue, env.catalog.Table, []CartLine{
		env.line(env.catalog.Lager, 2),
		env.line(env.catalog.Coke, 1),
	}, CheckoutInput{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, env.countRows(t, &models.Order{}))
	assert.Zero(t, env.countRows(t, &models.OrderItem{}))
}

func TestCreateOrderNumberCollisionRollsBack(t *testing.T) {
	at := time.Unix(1760123456, 0)
	env := newTestEnv(t, WithClock(func() time.Time { return at }))

	first := createSampleOrder(t, env)

	_, err := env.orderService.CreateOrder(context.Background(), env.catalog.Venue, env.catalog.VIPTable,
		[]CartLine{env.line(env.catalog.Water, 3)}, CheckoutInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransaction)

	assert.EqualValues(t, 1, env.countRows(t, &models.Order{}))
	items, err := env.orderItemRepo.GetByOrderID(first.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.EqualValues(t, 2, env.countRows(t, &models.OrderItem{}))
}

func TestSetItemQuantityUpserts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createSampleOrder(t, env)

	updated, err := env.orderService.SetItemQuantity(ctx, adminScope, order.ID, env.catalog.Water.ID, 1, "no ice")
	require.NoError(t, err)
	assert.Len(t, updated.Items, 3)
	assert.Equal(t, "75.00", updated.TotalAmount.StringFixed(2))

	updated, err = env.orderService.SetItemQuantity(ctx, adminScope, order.ID, env.catalog.Water.ID, 4, "")
	require.NoError(t, err)
	assert.Len(t, updated.Items, 3)
	assert.Equal(t, "105.00", updated.TotalAmount.StringFixed(2))

	item, err := env.orderItemRepo.GetByOrderAndProduct(order.ID, env.catalog.Water.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
	assert.Equal(t, "40.00", item.TotalPrice.StringFixed(2))
	assert.Equal(t, "no ice", item.Notes)
}

func TestSetItemQuantityRejectsZero(t *testing.T) {
	env := newTestEnv(t)
	order := createSampleOrder(t, env)

	for _, q := range []int{0, -1} {
		_, err := env.orderService.SetItemQuantity(context.Background(), adminScope, order.ID, env.catalog.Lager.ID, q, "")
		assert.ErrorIs(t, err, ErrValidation)
	}

	item, err := env.orderItemRepo.GetByOrderAndProduct(order.ID, env.catalog.Lager.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestRemoveItemsToZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createSampleOrder(t, env)

	updated, err := env.orderService.RemoveItem(ctx, adminScope, order.ID, env.catalog.Lager.ID)
	require.NoError(t, err)
	assert.Equal(t, "15.00", updated.TotalAmount.StringFixed(2))

	updated, err = env.orderService.RemoveItem(ctx, adminScope, order.ID, env.catalog.Coke.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Items)
	assert.Equal(t, "0.00", updated.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", updated.TotalAmount.StringFixed(2))

	_, err = env.orderService.RemoveItem(ctx, adminScope, order.ID, env.catalog.Coke.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecalculateTotalsIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	order := createSampleOrder(t, env)

	for i := 0; i < 3; i++ {
		again, err := env.orderService.RecalculateTotals(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, "65.00", again.TotalAmount.StringFixed(2))
		assert.True(t, again.TotalAmount.Equal(again.Subtotal.Add(again.TaxAmount)))
	}

	_, err := env.orderService.RecalculateTotals(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

type flatRate struct{ rate decimal.Decimal }

func (f flatRate) Tax(subtotal decimal.Decimal) decimal.Decimal { return subtotal.Mul(f.rate) }

func TestTaxPolicy(t *testing.T) {
	env := newTestEnv(t, WithTaxPolicy(flatRate{rate: decimal.RequireFromString("0.15")}))

	order := createSampleOrder(t, env)
	assert.Equal(t, "65.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "9.75", order.TaxAmount.StringFixed(2))
	assert.Equal(t, "74.75", order.TotalAmount.StringFixed(2))
}

func TestItemHookFailureRollsBack(t *testing.T) {
	fail := false
	env := newTestEnv(t, WithItemHook(func(tx *gorm.DB, orderID uint) error {
		if fail {
			return errors.New("hook failed")
		}
		return nil
	}))
	order := createSampleOrder(t, env)

	fail = true
	_, err := env.orderService.SetItemQuantity(context.Background(), adminScope, order.ID, env.catalog.Lager.ID, 9, "")
	assert.ErrorIs(t, err, ErrTransaction)

	item, err := env.orderItemRepo.GetByOrderAndProduct(order.ID, env.catalog.Lager.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	reloaded, err := env.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "65.00", reloaded.TotalAmount.StringFixed(2))
}

func TestConcurrentSetItemQuantity(t *testing.T) {
	env := newTestEnv(t)
	order := createSampleOrder(t, env)

	updates := map[uint]int{
		env.catalog.Lager.ID: 3,
		env.catalog.Coke.ID:  4,
		env.catalog.Water.ID: 5,
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(updates))
	for productID, quantity := range updates {
		wg.Add(1)
		go func(productID uint, quantity int) {
			defer wg.Done()
			_, err := env.orderService.SetItemQuantity(context.Background(), adminScope, order.ID, productID, quantity, "")
			errs <- err
		}(productID, quantity)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	final, err := env.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	require.Len(t, final.Items, 3)
	sum := decimal.Zero
	for _, item := range final.Items {
		sum = sum.Add(item.TotalPrice)
	}
	// 3*25 + 4*15 + 5*10
	assert.Equal(t, "185.00", sum.StringFixed(2))
	assert.Equal(t, "185.00", final.Subtotal.StringFixed(2))
	assert.Equal(t, "185.00", final.TotalAmount.StringFixed(2))
}

func TestUpdateStatusDeliveredAtIsSticky(t *testing.T) {
	deliveredAt := time.Date(2026, 3, 14, 21, 30, 0, 0, time.UTC)
	env := newTestEnv(t, WithClock(func() time.Time { return deliveredAt }))
	ctx := context.Background()
	order := createSampleOrder(t, env)

	updated, err := env.orderService.UpdateStatus(ctx, adminScope, order.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, "delivered", updated.Status)
	require.NotNil(t, updated.DeliveredAt)
	assert.True(t, updated.DeliveredAt.Equal(deliveredAt))

	updated, err = env.orderService.UpdateStatus(ctx, adminScope, order.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.Status)
	require.NotNil(t, updated.DeliveredAt)
	assert.True(t, updated.DeliveredAt.Equal(deliveredAt))

	history, err := env.orderService.StatusHistory(adminScope, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "received", history[0].FromStatus)
	assert.Equal(t, "delivered", history[0].ToStatus)
	assert.Equal(t, "delivered", history[1].FromStatus)
	assert.Equal(t, "in_progress", history[1].ToStatus)
	assert.EqualValues(t, adminScope.UserID, history[1].ChangedBy)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	env := newTestEnv(t)
	order := createSampleOrder(t, env)

	_, err := env.orderService.UpdateStatus(context.Background(), adminScope, order.ID, "shipped")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.orderService.UpdateStatus(context.Background(), adminScope, 9999, "ready")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewOrderService(env.db, env.orderRepo, env.orderItemRepo, env.catalogRepo, statemachine.ForwardOnly())
	order := createSampleOrder(t, env)

	_, err := svc.UpdateStatus(ctx, adminScope, order.ID, "ready")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, adminScope, order.ID, "received")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(ctx, adminScope, order.ID, "delivered")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, adminScope, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, svc.ValidTransitions("delivered"))
}

func TestPaymentStatusAndNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := createSampleOrder(t, env)

	updated, err := env.orderService.UpdatePaymentStatus(ctx, adminScope, order.ID, "paid_at_table")
	require.NoError(t, err)
	assert.Equal(t, "paid_at_table", updated.PaymentStatus)
	assert.Equal(t, "received", updated.Status)

	_, err = env.orderService.UpdatePaymentStatus(ctx, adminScope, order.ID, "refunded")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err = env.orderService.UpdateStaffNotes(ctx, adminScope, order.ID, "regular, table by the bar")
	require.NoError(t, err)
	assert.Equal(t, "regular, table by the bar", updated.StaffNotes)
}

func TestOrderScopeHidesOtherVenues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := testutil.SeedCatalog(t, env.db, "other-bar")
	order := createSampleOrder(t, env)

	foreign := env.venueScope(other.Venue.ID)
	_, err := env.orderService.UpdateStatus(ctx, foreign, order.ID, "ready")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.orderService.GetOrder(foreign, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.orderService.SetItemQuantity(ctx, foreign, order.ID, env.catalog.Lager.ID, 5, "")
	assert.ErrorIs(t, err, ErrNotFound)

	unassigned := repository.Scope{UserID: 3, Role: string(models.Waiter)}
	_, err = env.orderService.GetOrder(unassigned, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	own := env.venueScope(env.catalog.Venue.ID)
	got, err := env.orderService.GetOrder(own, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestActiveOrdersGroupedByStatus(t *testing.T) {
	env := newTestEnv(t, WithClock(fixedClock(time.Unix(1760000000, 0))))
	ctx := context.Background()

	a := createSampleOrder(t, env)
	b := createSampleOrder(t, env)
	c := createSampleOrder(t, env)
	d := createSampleOrder(t, env)
	for id, status := range map[uint]string{b.ID: "in_progress", c.ID: "ready", d.ID: "delivered"} {
		_, err := env.orderService.UpdateStatus(ctx, adminScope, id, status)
		require.NoError(t, err)
	}

	active, err := env.orderService.ActiveOrders(env.venueScope(env.catalog.Venue.ID))
	require.NoError(t, err)
	require.Len(t, active.Received, 1)
	assert.Equal(t, a.ID, active.Received[0].ID)
	require.Len(t, active.InProgress, 1)
	assert.Equal(t, b.ID, active.InProgress[0].ID)
	require.Len(t, active.Ready, 1)
	assert.Equal(t, c.ID, active.Ready[0].ID)
	assert.True(t, strings.HasPrefix(a.OrderNumber, "TEST-CLUB"))
}
