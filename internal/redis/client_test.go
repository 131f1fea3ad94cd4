package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewFromClient(rdb), mr
}

func TestGetCartMissingReturnsEmpty(t *testing.T) {
	client, _ := newTestClient(t)

	cart, err := client.GetCart(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, cart.Entries)
}

func TestUpdateCartRoundTripAndTTL(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	entries := []CartEntry{{ProductID: 3, Quantity: 2}, {ProductID: 1, Quantity: 1}}
	cart, err := client.UpdateCart(ctx, "s1", time.Minute, func(cart *CartData) error {
		cart.Entries = append(cart.Entries, entries...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, entries, cart.Entries)

	got, err := client.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entries, got.Entries)
	assert.Equal(t, time.Minute, mr.TTL("cart:s1"))

	mr.FastForward(2 * time.Minute)
	got, err = client.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
}

func TestUpdateCartEmptyDeletesKey(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	_, err := client.UpdateCart(ctx, "s1", time.Minute, func(cart *CartData) error {
		cart.Entries = []CartEntry{{ProductID: 1, Quantity: 1}}
		return nil
	})
	require.NoError(t, err)
	require.True(t, mr.Exists("cart:s1"))

	_, err = client.UpdateCart(ctx, "s1", time.Minute, func(cart *CartData) error {
		cart.Entries = nil
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:s1"))
}

func TestUpdateCartRetriesOnConcurrentWrite(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	calls := 0
	cart, err := client.UpdateCart(ctx, "s1", time.Minute, func(cart *CartData) error {
		calls++
		if calls == 1 {
			// Another writer lands between our read and our write.
			require.NoError(t, mr.Set("cart:s1", `{"entries":[{"product_id":7,"quantity":4}]}`))
		}
		cart.Entries = append(cart.Entries, CartEntry{ProductID: 1, Quantity: 1})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []CartEntry{{ProductID: 7, Quantity: 4}, {ProductID: 1, Quantity: 1}}, cart.Entries)

	got, err := client.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, cart.Entries, got.Entries)
}

func TestUpdateCartFnErrorLeavesCart(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := client.UpdateCart(ctx, "s1", time.Minute, func(cart *CartData) error {
		cart.Entries = []CartEntry{{ProductID: 1, Quantity: 1}}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("cart:s1"))
}

func TestPing(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestGetCartCorruptPayload(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, mr.Set("cart:bad", "{not json"))

	_, err := client.GetCart(context.Background(), "bad")
	assert.Error(t, err)
}
